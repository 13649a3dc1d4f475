package store

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value    int64
	deadline time.Time
}

// MemoryStore is a process-local Store used by tests and single-instance
// deployments. It honors the same TTL semantics as the redis store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry

	nowFn func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
	}
}

func (s *MemoryStore) now() time.Time {
	if s.nowFn != nil {
		return s.nowFn()
	}

	return time.Now()
}

// live returns the entry at key, dropping it first if it has expired.
func (s *MemoryStore) live(key string, now time.Time) (*memoryEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}

	if now.After(e.deadline) {
		delete(s.entries, key)
		return nil, false
	}

	return e, true
}

func (s *MemoryStore) IncrMax(ctx context.Context, key string, candidate int64, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.live(key, now)
	if !ok {
		e = &memoryEntry{}
		s.entries[key] = e
	}

	next := e.value + 1
	if candidate > next {
		next = candidate
	}

	e.value = next
	e.deadline = now.Add(ttl)
	return next, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(key, s.now())
	if !ok {
		return 0, ErrNotFound
	}

	return e.value, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.entries[key] = &memoryEntry{
		value:    value,
		deadline: now.Add(ttl),
	}

	return nil
}

func (s *MemoryStore) Del(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
