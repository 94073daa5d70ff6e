package server

import (
	"sync"
)

// Pool tracks the client connections subscribed to broadcast topics, such
// as the status watch stream. A connection that fails a broadcast write is
// dropped from the topic.
type Pool struct {
	mu sync.RWMutex
	m  map[string][]*SyncConn
}

func NewPool() *Pool {
	return &Pool{
		m: make(map[string][]*SyncConn),
	}
}

// Subscribe adds conn to the topic's broadcast set.
func (p *Pool) Subscribe(topic string, conn *SyncConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[topic] = append(p.m[topic], conn)
}

// Unsubscribe removes conn from the topic's broadcast set.
func (p *Pool) Unsubscribe(topic string, conn *SyncConn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	conns := p.m[topic]
	for i, c := range conns {
		if c == conn {
			conns[i] = conns[len(conns)-1]
			p.m[topic] = conns[:len(conns)-1]
			return
		}
	}
}

// Subscribers returns how many connections are subscribed to topic.
func (p *Pool) Subscribers(topic string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.m[topic])
}

// Broadcast writes data to every subscriber of topic. Connections whose
// write fails are closed and removed.
func (p *Pool) Broadcast(topic string, data []byte) {
	p.mu.RLock()
	conns := make([]*SyncConn, len(p.m[topic]))
	copy(conns, p.m[topic])
	p.mu.RUnlock()

	var dead []*SyncConn
	for _, conn := range conns {
		if err := conn.Write(data); err != nil {
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		p.Unsubscribe(topic, conn)
		_ = conn.Conn.Close()
	}
}
