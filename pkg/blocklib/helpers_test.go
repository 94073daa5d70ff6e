package blocklib

import (
	"context"
	"errors"
	"sync"
)

// fakeStore is an in-memory TimestampStore for tests in this package.
type fakeStore struct {
	mu        sync.Mutex
	installed map[ArtifactClass]Timestamp
	latest    map[ArtifactClass]Timestamp
	readErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		installed: make(map[ArtifactClass]Timestamp),
		latest:    make(map[ArtifactClass]Timestamp),
	}
}

func (s *fakeStore) Installed(class ArtifactClass) (Timestamp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return TimestampUnknown, s.readErr
	}
	return s.installed[class], nil
}

func (s *fakeStore) Latest(class ArtifactClass) (Timestamp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return TimestampUnknown, s.readErr
	}
	return s.latest[class], nil
}

func (s *fakeStore) SetInstalled(class ArtifactClass, ts Timestamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ValidateTimestampWrite(s.installed[class], ts); err != nil {
		return err
	}
	s.installed[class] = ts
	return nil
}

func (s *fakeStore) SetLatest(class ArtifactClass, ts Timestamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ValidateTimestampWrite(s.latest[class], ts); err != nil {
		return err
	}
	s.latest[class] = ts
	return nil
}

// fakeResolver answers a fixed timestamp and records what it was asked.
type fakeResolver struct {
	ts         Timestamp
	gotCurrent Timestamp
	gotVersion string
	gotRetry   int
}

func (r *fakeResolver) ResolveLatest(_ context.Context, current Timestamp, appVersion string, retryCount int) Timestamp {
	r.gotCurrent = current
	r.gotVersion = appVersion
	r.gotRetry = retryCount
	return r.ts
}

// fakeSched is an in-memory JobScheduler that never runs anything; tests
// flip job states by hand.
type fakeSched struct {
	mu      sync.Mutex
	nextID  int64
	jobs    map[int64]PipelineJob
	states  map[int64]JobState
	deps    map[int64]int64
	failAt  int
	entries int
}

func newFakeSched() *fakeSched {
	return &fakeSched{
		nextID: 1,
		jobs:   make(map[int64]PipelineJob),
		states: make(map[int64]JobState),
		deps:   make(map[int64]int64),
	}
}

func (s *fakeSched) Enqueue(job PipelineJob, dependsOn int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries++
	if s.failAt > 0 && s.entries >= s.failAt {
		return 0, errors.New("scheduler full")
	}
	id := s.nextID
	s.nextID++
	s.jobs[id] = job
	s.states[id] = JobStateScheduled
	s.deps[id] = dependsOn
	return id, nil
}

func (s *fakeSched) IsScheduled(tag string) bool { return s.anyInState(tag, JobStateScheduled) }
func (s *fakeSched) IsRunning(tag string) bool   { return s.anyInState(tag, JobStateRunning) }

func (s *fakeSched) anyInState(tag string, state JobState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		if job.Tag == tag && s.states[id] == state {
			return true
		}
	}
	return false
}

func (s *fakeSched) CancelByTag(tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, job := range s.jobs {
		if job.Tag == tag && !s.states[id].Terminal() {
			s.states[id] = JobStateCancelled
			n++
		}
	}
	return n
}

func (s *fakeSched) CancelJob(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[id]; ok && !st.Terminal() {
		s.states[id] = JobStateCancelled
		return true
	}
	return false
}

func (s *fakeSched) JobStateOf(id int64) (JobState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[id]
	return st, ok
}

func (s *fakeSched) setState(id int64, state JobState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[id] = state
}

func (s *fakeSched) jobByID(id int64) (PipelineJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	return j, ok
}

func (s *fakeSched) jobsByTag(tag string) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for id, job := range s.jobs {
		if job.Tag == tag {
			ids = append(ids, id)
		}
	}
	return ids
}

var _ JobScheduler = (*fakeSched)(nil)
