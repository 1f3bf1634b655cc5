package overlay

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps records in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	puts    int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Get(ctx context.Context, container, key string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[recordID(container, key)]
	if !ok {
		return nil, nil
	}
	rec.Value = slices.Clone(rec.Value)
	return &rec, nil
}

func (s *MemoryStore) Put(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Value = slices.Clone(rec.Value)
	s.records[recordID(rec.Container, rec.Key)] = rec
	s.puts++
	return nil
}

// Puts returns the number of successful writes.
func (s *MemoryStore) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
