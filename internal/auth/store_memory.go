package auth

import (
	"context"
	"sync"

	"github.com/streamia/backend/internal/models"
)

// NewInMemoryTokenStore returns a TokenStore backed by an in-memory map.
func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{tokens: make(map[string]models.RefreshToken)}
}

// InMemoryTokenStore implements TokenStore for tests and local development.
type InMemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]models.RefreshToken
}

// Save persists the provided refresh token record.
func (s *InMemoryTokenStore) Save(_ context.Context, token models.RefreshToken) error {
	s.mu.Lock()
	s.tokens[token.JTI] = token
	s.mu.Unlock()
	return nil
}

// Find retrieves a refresh token record by jti.
func (s *InMemoryTokenStore) Find(_ context.Context, jti string) (models.RefreshToken, error) {
	s.mu.RLock()
	token, ok := s.tokens[jti]
	s.mu.RUnlock()
	if !ok {
		return models.RefreshToken{}, ErrSessionNotFound
	}
	return token, nil
}

// Delete removes the record associated with the jti.
func (s *InMemoryTokenStore) Delete(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[jti]; !ok {
		return ErrSessionNotFound
	}
	delete(s.tokens, jti)
	return nil
}

// DeleteAllForUser removes every record owned by the user and reports how
// many were dropped.
func (s *InMemoryTokenStore) DeleteAllForUser(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for jti, token := range s.tokens {
		if token.UserID == userID {
			delete(s.tokens, jti)
			removed++
		}
	}
	return removed, nil
}

// Count reports the number of stored records. Useful for tests.
func (s *InMemoryTokenStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// Has reports whether a jti exists. Useful for tests.
func (s *InMemoryTokenStore) Has(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[jti]
	return ok
}
