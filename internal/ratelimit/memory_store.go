package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// MemoryStore keeps window counters in process memory. Each key has its own
// lock so hits for different identities only contend on the map lookup.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]*bucket)}
}

func (s *MemoryStore) get(key string) *bucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{}
		s.buckets[key] = b
	}
	return b
}

// Hit implements Store. An expired window is reset on access.
func (s *MemoryStore) Hit(_ context.Context, key string, limit int, window time.Duration, now time.Time) (Decision, error) {
	b := s.get(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.resetAt.IsZero() || !now.Before(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}
	if b.count >= limit {
		return Decision{Allowed: false, RetryAfter: retryAfterSeconds(b.resetAt.Sub(now))}, nil
	}
	b.count++
	return Decision{Allowed: true}, nil
}

// Sweep drops buckets whose window ended at least grace ago and returns how
// many were removed.
func (s *MemoryStore) Sweep(now time.Time, grace time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, b := range s.buckets {
		b.mu.Lock()
		stale := !b.resetAt.IsZero() && !now.Before(b.resetAt.Add(grace))
		b.mu.Unlock()
		if stale {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}
