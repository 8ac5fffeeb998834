package kvstore

import (
	"context"
	"sync"
)

// InMemoryStore is a map-backed Store used by tests and ephemeral runs.
type InMemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{slots: make(map[string][]byte)}
}

func (s *InMemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.slots[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *InMemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.slots[key] = v
	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, key)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
