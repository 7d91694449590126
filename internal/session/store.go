// Package session holds the single authentication-token slot shared by every
// backend call.
package session

import (
	"context"
	"sync"
)

// Store is the only writer of the session token. An empty token means
// "not logged in"; absence is never an error.
type Store interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// LoggedIn reports whether the store currently holds a token.
func LoggedIn(ctx context.Context, s Store) (bool, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return false, err
	}
	return tok != "", nil
}
