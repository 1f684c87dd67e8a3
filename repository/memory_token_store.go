package repository

import (
	"context"
	"sync"
	"time"
)

// defaultPurgeEvery is how many inserts pass between sweeps of expired
// entries.
const defaultPurgeEvery = 256

// MemoryTokenStore is a process-local TokenStore. Its contents are lost on
// restart and are not shared between instances.
type MemoryTokenStore struct {
	mu         sync.RWMutex
	tokens     map[string]time.Time
	now        func() time.Time
	purgeEvery int
	inserts    int
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		tokens:     make(map[string]time.Time),
		now:        time.Now,
		purgeEvery: defaultPurgeEvery,
	}
}

func (s *MemoryTokenStore) Add(_ context.Context, _ int, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inserts++
	if s.inserts >= s.purgeEvery {
		s.inserts = 0
		s.purgeLocked()
	}
	s.tokens[HashToken(token)] = expiresAt
	return nil
}

func (s *MemoryTokenStore) Contains(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exp, ok := s.tokens[HashToken(token)]
	return ok && s.now().Before(exp), nil
}

func (s *MemoryTokenStore) Remove(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := HashToken(token)
	exp, ok := s.tokens[key]
	delete(s.tokens, key)
	return ok && s.now().Before(exp), nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryTokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// purgeLocked drops expired entries so the map cannot grow without bound.
func (s *MemoryTokenStore) purgeLocked() {
	now := s.now()
	for k, exp := range s.tokens {
		if !now.Before(exp) {
			delete(s.tokens, k)
		}
	}
}
