package auth

import (
	"sync"
	"time"
)

// revocationSet tracks signed-out token IDs until their natural expiry.
type revocationSet struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func newRevocationSet() *revocationSet {
	return &revocationSet{tokens: make(map[string]time.Time)}
}

func (s *revocationSet) add(jti string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, exp := range s.tokens {
		if exp.Before(now) {
			delete(s.tokens, id)
		}
	}
	s.tokens[jti] = expiresAt
}

func (s *revocationSet) contains(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.tokens[jti]
	if !ok {
		return false
	}
	if exp.Before(time.Now()) {
		delete(s.tokens, jti)
		return false
	}
	return true
}
