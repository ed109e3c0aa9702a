package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a mutex-guarded in-process attempt map. Every call prunes
// all expired entries first; there is no background sweeper.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore returns an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Take implements Store over the in-process map
func (s *MemoryStore) Take(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if !e.resetAt.After(now) {
			delete(s.entries, k)
		}
	}

	e, ok := s.entries[key]
	if !ok {
		e = entry{count: 1, resetAt: now.Add(window)}
	} else {
		e.count++
	}
	s.entries[key] = e
	return e.count, e.resetAt, nil
}
