package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process memory for single-instance
// deployments without Redis. Expired entries are removed on read.
type MemoryStore struct {
	mu      sync.Mutex
	byToken map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byToken: map[string]Session{}}
}

func (s *MemoryStore) Create(_ context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byToken[session.Token] = *session
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byToken[token]
	switch {
	case !ok:
		return nil, ErrSessionNotFound
	case stored.IsExpired():
		delete(s.byToken, token)
		return nil, ErrSessionExpired
	}
	return &stored, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.byToken, token)
	s.mu.Unlock()
	return nil
}
