package store

import (
	"fmt"
	"sync"

	"github.com/blocklistd/blocklistd/pkg/blocklib"
)

type key struct {
	class blocklib.ArtifactClass
	kind  string
}

// MemoryStore is an in-memory blocklib.TimestampStore with the same write
// validation as the sqlite store. Used by tests and throwaway setups.
type MemoryStore struct {
	mu sync.Mutex
	m  map[key]blocklib.Timestamp
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{m: make(map[key]blocklib.Timestamp)}
}

func (s *MemoryStore) Installed(class blocklib.ArtifactClass) (blocklib.Timestamp, error) {
	return s.read(class, kindInstalled), nil
}

func (s *MemoryStore) Latest(class blocklib.ArtifactClass) (blocklib.Timestamp, error) {
	return s.read(class, kindLatest), nil
}

func (s *MemoryStore) SetInstalled(class blocklib.ArtifactClass, ts blocklib.Timestamp) error {
	return s.write(class, kindInstalled, ts)
}

func (s *MemoryStore) SetLatest(class blocklib.ArtifactClass, ts blocklib.Timestamp) error {
	return s.write(class, kindLatest, ts)
}

func (s *MemoryStore) read(class blocklib.ArtifactClass, kind string) blocklib.Timestamp {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.m[key{class, kind}]
	if !ok {
		return blocklib.TimestampNone
	}
	return ts
}

func (s *MemoryStore) write(class blocklib.ArtifactClass, kind string, ts blocklib.Timestamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key{class, kind}
	stored, ok := s.m[k]
	if !ok {
		stored = blocklib.TimestampNone
	}
	if err := blocklib.ValidateTimestampWrite(stored, ts); err != nil {
		return fmt.Errorf("write %s/%s: %w", class, kind, err)
	}
	s.m[k] = ts
	return nil
}

var _ blocklib.TimestampStore = (*MemoryStore)(nil)
