package blocklib

import "sync"

// statusBuffer is the per-subscriber channel depth. When a subscriber falls
// this far behind, the oldest buffered value is dropped so the publisher
// never blocks on a stuck consumer.
const statusBuffer = 16

// StatusPublisher is a single-slot broadcast of the orchestrator's current
// status. New subscribers immediately receive the most recent value, then
// every subsequent update in publish order. Publishes may come from job
// goroutines; subscribers marshal onto their own context by reading the
// channel.
type StatusPublisher struct {
	mu   sync.Mutex
	last FreshnessOutcome
	subs map[int64]chan FreshnessOutcome
	next int64
}

// NewStatusPublisher creates a publisher holding OutcomeNotStarted.
func NewStatusPublisher() *StatusPublisher {
	return &StatusPublisher{
		last: OutcomeNotStarted,
		subs: make(map[int64]chan FreshnessOutcome),
	}
}

// Last returns the most recently published outcome.
func (p *StatusPublisher) Last() FreshnessOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Publish stores o as the current value and fans it out to all subscribers.
func (p *StatusPublisher) Publish(o FreshnessOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = o
	for _, ch := range p.subs {
		send(ch, o)
	}
}

// Subscribe registers a new subscriber. The returned channel replays the
// current value first. The cancel function must be called to release the
// subscription; afterwards the channel is closed.
func (p *StatusPublisher) Subscribe() (<-chan FreshnessOutcome, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.next
	p.next++
	ch := make(chan FreshnessOutcome, statusBuffer)
	ch <- p.last
	p.subs[id] = ch
	cancel := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if sub, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// send delivers o without blocking, dropping the oldest buffered value when
// the subscriber's buffer is full.
func send(ch chan FreshnessOutcome, o FreshnessOutcome) {
	for {
		select {
		case ch <- o:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
