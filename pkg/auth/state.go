package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateStore keeps one-time OAuth state tokens between the redirect to the
// provider and the callback.
type StateStore interface {
	Save(ctx context.Context, state string, ttl time.Duration) error
	// Consume removes the state and returns ErrStateNotFound when it was
	// never saved, already used or expired.
	Consume(ctx context.Context, state string) error
}

// MemoryStateStore is a process-local StateStore.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]time.Time)}
}

func (s *MemoryStateStore) Save(_ context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for k, exp := range s.states {
		if now.After(exp) {
			delete(s.states, k)
		}
	}
	s.states[state] = now.Add(ttl)
	return nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.states[state]
	delete(s.states, state)
	if !ok || time.Now().After(exp) {
		return ErrStateNotFound
	}
	return nil
}

// RedisStateStore stores states as expiring keys and consumes them with GETDEL.
type RedisStateStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStateStore(client redis.UniversalClient, prefix string) *RedisStateStore {
	return &RedisStateStore{client: client, prefix: prefix}
}

func (s *RedisStateStore) Save(ctx context.Context, state string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+state, 1, ttl).Err()
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) error {
	err := s.client.GetDel(ctx, s.prefix+state).Err()
	if errors.Is(err, redis.Nil) {
		return ErrStateNotFound
	}
	return err
}
