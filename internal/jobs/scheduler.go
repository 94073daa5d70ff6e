// Package jobs provides the durable background job scheduler the download
// pipeline runs on. Jobs are persisted to disk, survive daemon restarts and
// execute through handlers registered per job kind.
package jobs

import (
	"bytes"
	"container/heap"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/blocklistd/blocklistd/pkg/blocklib"
	"github.com/blocklistd/blocklistd/pkg/logger"
)

const maxSleepCap = 60 * time.Second

var (
	// ErrClosed is returned by Enqueue after the scheduler shut down.
	ErrClosed = errors.New("scheduler is closed")
	// ErrBadDependency is returned when a job depends on a job that does
	// not exist or already terminated unsuccessfully.
	ErrBadDependency = errors.New("dependency job unavailable")
)

// Scheduler runs persisted jobs through registered handlers. A single
// goroutine owns the timing: it sleeps until the earliest ready job with a
// 60s max-sleep-cap, then dispatches every due job onto its own goroutine.
// Jobs chained with a dependency are held until the predecessor completes;
// a failed or cancelled predecessor cancels the whole chain.
type Scheduler struct {
	mu         sync.Mutex
	records    map[int64]*Record
	ready      readyHeap
	running    map[int64]context.CancelFunc
	handlers   map[string]HandlerFunc
	onTerminal TerminalFunc
	nextID     int64
	closed     bool

	wake chan struct{}
	f    *os.File
	log  logger.Logger
}

// New opens (or creates) the state file at path and loads every persisted
// record. Jobs that were running when the previous process exited are
// rescheduled to run again.
func New(path string, log logger.Logger) (*Scheduler, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open job state: %w", err)
	}
	s := &Scheduler{
		records:  make(map[int64]*Record),
		running:  make(map[int64]context.CancelFunc),
		handlers: make(map[string]HandlerFunc),
		nextID:   1,
		wake:     make(chan struct{}, 1),
		f:        f,
		log:      log,
	}
	if decErr := gob.NewDecoder(f).Decode(&s.records); decErr != nil {
		if decErr != io.EOF {
			log.Warning("job state unreadable, starting fresh: %v", decErr)
		}
		s.records = make(map[int64]*Record)
	}
	now := time.Now()
	for id, rec := range s.records {
		if id >= s.nextID {
			s.nextID = id + 1
		}
		if rec.State == blocklib.JobStateRunning {
			rec.State = blocklib.JobStateScheduled
			rec.ReadyAt = now
		}
	}
	return s, nil
}

// Register binds a handler to a job kind. Must be called before Start.
func (s *Scheduler) Register(kind string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[kind] = fn
}

// OnTerminal installs the hook invoked whenever a job reaches a terminal
// state. Must be called before Start.
func (s *Scheduler) OnTerminal(fn TerminalFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTerminal = fn
}

// Start seeds the ready heap from the loaded records and launches the run
// loop. The loop exits when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	var notify []Record
	for id, rec := range s.records {
		if rec.State != blocklib.JobStateScheduled {
			continue
		}
		if rec.CancelRequested || s.deadDependencyLocked(rec) {
			rec.State = blocklib.JobStateCancelled
			notify = append(notify, *rec)
			continue
		}
		if !s.heldLocked(rec) {
			heapPush(&s.ready, readyEntry{id: id, readyAt: rec.ReadyAt})
		}
	}
	if len(notify) > 0 {
		s.persistLocked()
	}
	s.mu.Unlock()
	s.notifyTerminal(notify)
	go s.run(ctx)
}

// Enqueue persists a new job and returns its identifier. When dependsOn is
// non-zero the job is held until that job completes; it is rejected when
// the dependency is missing or already failed.
func (s *Scheduler) Enqueue(job blocklib.PipelineJob, dependsOn int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	if dependsOn != 0 {
		pred, ok := s.records[dependsOn]
		if !ok || (pred.State.Terminal() && !pred.State.Succeeded()) {
			return 0, fmt.Errorf("%w: job %d", ErrBadDependency, dependsOn)
		}
	}
	id := s.nextID
	s.nextID++
	rec := &Record{
		ID:        id,
		Job:       job,
		State:     blocklib.JobStateScheduled,
		DependsOn: dependsOn,
		ReadyAt:   time.Now().Add(job.Backoff.Delay(0)),
	}
	s.records[id] = rec
	if !s.heldLocked(rec) {
		heapPush(&s.ready, readyEntry{id: id, readyAt: rec.ReadyAt})
		s.wakeup()
	}
	s.persistLocked()
	return id, nil
}

// IsScheduled reports whether any job with tag is waiting to run.
func (s *Scheduler) IsScheduled(tag string) bool {
	return s.anyInState(tag, blocklib.JobStateScheduled)
}

// IsRunning reports whether any job with tag is executing.
func (s *Scheduler) IsRunning(tag string) bool {
	return s.anyInState(tag, blocklib.JobStateRunning)
}

func (s *Scheduler) anyInState(tag string, state blocklib.JobState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.Job.Tag == tag && rec.State == state {
			return true
		}
	}
	return false
}

// JobStateOf returns the state of the job with the given id.
func (s *Scheduler) JobStateOf(id int64) (blocklib.JobState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return blocklib.JobStateUnknown, false
	}
	return rec.State, true
}

// Records returns a snapshot of every known job record.
func (s *Scheduler) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	return out
}

// CancelJob cancels the job with the given id. A scheduled job terminates
// immediately; a running job has its context cancelled and terminates when
// its handler returns. Reports whether a non-terminal job was addressed.
func (s *Scheduler) CancelJob(id int64) bool {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok || rec.State.Terminal() {
		s.mu.Unlock()
		return false
	}
	notify := s.cancelLocked(rec)
	s.persistLocked()
	s.mu.Unlock()
	s.notifyTerminal(notify)
	return true
}

// CancelByTag cancels every non-terminal job carrying tag and returns how
// many jobs were addressed.
func (s *Scheduler) CancelByTag(tag string) int {
	s.mu.Lock()
	var notify []Record
	count := 0
	for _, rec := range s.records {
		if rec.Job.Tag != tag || rec.State.Terminal() {
			continue
		}
		notify = append(notify, s.cancelLocked(rec)...)
		count++
	}
	if count > 0 {
		s.persistLocked()
	}
	s.mu.Unlock()
	s.notifyTerminal(notify)
	return count
}

// cancelLocked moves rec toward cancellation and returns the records that
// reached a terminal state as a result. A running record is only signalled;
// its terminal transition happens in finish.
func (s *Scheduler) cancelLocked(rec *Record) []Record {
	if rec.State == blocklib.JobStateRunning {
		rec.CancelRequested = true
		if cancel, ok := s.running[rec.ID]; ok {
			cancel()
		}
		return nil
	}
	rec.State = blocklib.JobStateCancelled
	notify := []Record{*rec}
	return append(notify, s.cascadeLocked(rec.ID)...)
}

// cascadeLocked cancels every held dependent of id, transitively.
func (s *Scheduler) cascadeLocked(id int64) []Record {
	var notify []Record
	for _, rec := range s.records {
		if rec.DependsOn != id || rec.State.Terminal() {
			continue
		}
		rec.State = blocklib.JobStateCancelled
		notify = append(notify, *rec)
		notify = append(notify, s.cascadeLocked(rec.ID)...)
	}
	return notify
}

// Flush removes terminal records that no live job depends on and returns
// how many were pruned.
func (s *Scheduler) Flush() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	needed := make(map[int64]bool)
	for _, rec := range s.records {
		if !rec.State.Terminal() && rec.DependsOn != 0 {
			needed[rec.DependsOn] = true
		}
	}
	removed := 0
	for id, rec := range s.records {
		if rec.State.Terminal() && !needed[id] {
			delete(s.records, id)
			removed++
		}
	}
	if removed > 0 {
		s.persistLocked()
	}
	return removed
}

// Close persists the current state and releases the state file. Any still
// running handlers are stopped by the Start context, not by Close.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.persistLocked()
	return s.f.Close()
}

// run is the scheduler's active-object loop. It sleeps until the earliest
// ready entry with a 60s max-sleep-cap and dispatches everything due.
func (s *Scheduler) run(ctx context.Context) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.ready.Len() == 0 {
			return nil
		}
		dur := time.Until(s.ready[0].readyAt)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			timerCh = resetTimer()
		case <-timerCh:
			s.dispatchDue(ctx)
			timerCh = resetTimer()
		}
	}
}

// dispatchDue starts every job whose ready time has arrived.
func (s *Scheduler) dispatchDue(ctx context.Context) {
	now := time.Now()
	s.mu.Lock()
	var notify []Record
	for s.ready.Len() > 0 && !s.ready[0].readyAt.After(now) {
		entry := heapPop(&s.ready)
		rec, ok := s.records[entry.id]
		if !ok || rec.State != blocklib.JobStateScheduled || s.heldLocked(rec) {
			continue
		}
		if s.deadDependencyLocked(rec) {
			rec.State = blocklib.JobStateCancelled
			notify = append(notify, *rec)
			continue
		}
		if rec.ReadyAt.After(entry.readyAt) {
			// Requeued since this entry was pushed.
			heap.Push(&s.ready, readyEntry{id: rec.ID, readyAt: rec.ReadyAt})
			continue
		}
		rec.State = blocklib.JobStateRunning
		jobCtx, cancel := context.WithCancel(ctx)
		s.running[rec.ID] = cancel
		go s.execute(jobCtx, rec.ID, rec.Job, rec.Attempts)
	}
	s.persistLocked()
	s.mu.Unlock()
	s.notifyTerminal(notify)
}

// execute runs one job through its handler and records the outcome. A
// panicking handler fails the job instead of taking the process down.
func (s *Scheduler) execute(ctx context.Context, id int64, job blocklib.PipelineJob, attempt int) {
	handler := s.handlerFor(job.Kind)
	var err error
	if handler == nil {
		err = fmt.Errorf("no handler for kind %q", job.Kind)
	} else {
		err = s.invoke(ctx, handler, job)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warning("job %d (%s, attempt %d): %v", id, job.Kind, attempt+1, err)
	}
	s.finish(id, err)
}

func (s *Scheduler) invoke(ctx context.Context, handler HandlerFunc, job blocklib.PipelineJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, job)
}

func (s *Scheduler) handlerFor(kind string) HandlerFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handlers[kind]
}

// finish applies a handler result: completion releases dependents, a
// retryable error requeues under the job's backoff, anything else fails the
// job and cancels its chain.
func (s *Scheduler) finish(id int64, err error) {
	s.mu.Lock()
	if cancel, ok := s.running[id]; ok {
		cancel()
		delete(s.running, id)
	}
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	var notify []Record
	switch {
	case err == nil:
		rec.State = blocklib.JobStateCompleted
		notify = append(notify, *rec)
		s.releaseDependentsLocked(id)
	case errors.Is(err, context.Canceled) || rec.CancelRequested:
		rec.State = blocklib.JobStateCancelled
		rec.LastError = err.Error()
		notify = append(notify, *rec)
		notify = append(notify, s.cascadeLocked(id)...)
	case s.retryable(err) && rec.Attempts < rec.Job.Backoff.MaxRetries:
		rec.Attempts++
		rec.State = blocklib.JobStateScheduled
		rec.LastError = err.Error()
		rec.ReadyAt = time.Now().Add(rec.Job.Backoff.Delay(rec.Attempts))
		heapPush(&s.ready, readyEntry{id: id, readyAt: rec.ReadyAt})
		s.wakeup()
	default:
		rec.State = blocklib.JobStateFailed
		rec.LastError = err.Error()
		notify = append(notify, *rec)
		notify = append(notify, s.cascadeLocked(id)...)
	}
	s.persistLocked()
	s.mu.Unlock()
	s.notifyTerminal(notify)
}

// retryable reports whether err warrants another attempt.
func (s *Scheduler) retryable(err error) bool {
	return errors.Is(err, blocklib.ErrBatchIncomplete) || blocklib.IsTransient(err)
}

// releaseDependentsLocked moves jobs held on id onto the ready heap. Their
// backoff's initial delay counts from the release, not from enqueue.
func (s *Scheduler) releaseDependentsLocked(id int64) {
	now := time.Now()
	for _, rec := range s.records {
		if rec.DependsOn != id || rec.State != blocklib.JobStateScheduled {
			continue
		}
		rec.ReadyAt = now.Add(rec.Job.Backoff.Delay(rec.Attempts))
		heapPush(&s.ready, readyEntry{id: rec.ID, readyAt: rec.ReadyAt})
		s.wakeup()
	}
}

// deadDependencyLocked reports whether rec's predecessor terminated
// without succeeding, which dooms rec as well.
func (s *Scheduler) deadDependencyLocked(rec *Record) bool {
	if rec.DependsOn == 0 {
		return false
	}
	pred, ok := s.records[rec.DependsOn]
	if !ok {
		return false
	}
	return pred.State.Terminal() && !pred.State.Succeeded()
}

// heldLocked reports whether rec is waiting on a predecessor.
func (s *Scheduler) heldLocked(rec *Record) bool {
	if rec.DependsOn == 0 {
		return false
	}
	pred, ok := s.records[rec.DependsOn]
	if !ok {
		return false
	}
	return !pred.State.Succeeded() && !pred.State.Terminal()
}

func (s *Scheduler) notifyTerminal(recs []Record) {
	if len(recs) == 0 {
		return
	}
	s.mu.Lock()
	fn := s.onTerminal
	s.mu.Unlock()
	if fn == nil {
		return
	}
	for _, rec := range recs {
		fn(rec.Job, rec.State)
	}
}

func (s *Scheduler) wakeup() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// persistLocked writes the record map to the state file using the
// buffer-first approach so a failed encode never truncates good state.
func (s *Scheduler) persistLocked() {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s.records); err != nil {
		s.log.Error("encode job state: %v", err)
		return
	}
	if err := s.f.Truncate(0); err != nil {
		s.log.Error("truncate job state: %v", err)
		return
	}
	if _, err := s.f.Seek(0, 0); err != nil {
		s.log.Error("seek job state: %v", err)
		return
	}
	if _, err := s.f.Write(buf.Bytes()); err != nil {
		s.log.Error("write job state: %v", err)
	}
}
