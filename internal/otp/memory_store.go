package otp

import (
	"context"
	"sync"
	"time"
)

// purgeGrace is how long an expired entry may linger before Put sweeps it.
const purgeGrace = time.Minute

// MemoryStore is a process-local Store for single-instance and development
// deployments only; a multi-instance deployment needs the Redis store so
// every server sees the same challenges.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Challenge
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Challenge)}
}

// Put replaces any existing challenge for the key and opportunistically
// drops entries that expired long ago.
func (s *MemoryStore) Put(_ context.Context, key string, ch Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-purgeGrace)
	for k, e := range s.entries {
		if e.ExpiresAt.Before(cutoff) {
			delete(s.entries, k)
		}
	}

	s.entries[key] = ch
	return nil
}

// Get returns the stored challenge, expired or not; callers classify expiry.
func (s *MemoryStore) Get(_ context.Context, key string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return &ch, nil
}

// Consume deletes the challenge only if the stored code matches. The
// check-and-delete happens under one lock acquisition, so of two racing
// callers at most one observes true.
func (s *MemoryStore) Consume(_ context.Context, key, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.entries[key]
	if !ok || ch.Code != code {
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}

// Delete removes any challenge for the key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
