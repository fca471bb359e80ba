package offset

import (
	"context"
	"sync"
)

// MemoryStore keeps the offset in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	value int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the current value.
func (s *MemoryStore) Load(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, nil
}

// Advance sets next when the value is still prev.
func (s *MemoryStore) Advance(_ context.Context, prev, next int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.value != prev {
		return ErrConflict
	}
	s.value = next
	return nil
}
