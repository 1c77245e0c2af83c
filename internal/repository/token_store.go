package repository

import (
	"context"
	"sync"
)

// TokenKey is the single key under which the session token is persisted.
const TokenKey = "jwt_token"

// TokenStore persists the bearer token of the current session. It is the only
// durable state the client owns; absence of a token means unauthenticated.
type TokenStore interface {
	// Get returns the stored token. ok is false when no token is stored.
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token string) error
	// Clear removes the token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

type memoryTokenStore struct {
	mu    sync.RWMutex
	token string
	set   bool
}

// NewMemoryTokenStore returns a store that lives as long as the process.
func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{}
}

func (s *memoryTokenStore) Get(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.set, nil
}

func (s *memoryTokenStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.set = token, true
	return nil
}

func (s *memoryTokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.set = "", false
	return nil
}
