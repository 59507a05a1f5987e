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

// MemoryStore is the single-process fallback. State does not survive a
// restart and is not shared across instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: map[string]*entry{},
		now:     time.Now,
	}
}

func (s *MemoryStore) Check(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	e, exists := s.entries[key]
	if !exists || now.After(e.resetAt) {
		e = &entry{count: 0, resetAt: now.Add(window)}
		s.entries[key] = e
		s.gcLocked(now)
	}

	if e.count >= limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: e.resetAt}, nil
	}

	e.count++
	return Result{Allowed: true, Remaining: limit - e.count, ResetAt: e.resetAt}, nil
}

func (s *MemoryStore) gcLocked(now time.Time) {
	if len(s.entries) < 1000 {
		return
	}

	for key, e := range s.entries {
		if now.After(e.resetAt) {
			delete(s.entries, key)
		}
	}
}
