package session_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ignews/pkg/session"
)

func newSession(ttl time.Duration) *session.Session {
	now := time.Now()
	return &session.Session{
		Token:     uuid.NewString(),
		UserID:    uuid.NewString(),
		Email:     "ada@example.com",
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// storeContract runs the behaviour every Store implementation must share.
func storeContract(t *testing.T, store session.Store) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := newSession(time.Hour)
		require.NoError(t, store.Create(ctx, s))

		got, err := store.Get(ctx, s.Token)
		require.NoError(t, err)
		assert.Equal(t, s.UserID, got.UserID)
		assert.Equal(t, s.Email, got.Email)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		s := newSession(time.Hour)
		require.NoError(t, store.Create(ctx, s))
		require.NoError(t, store.Delete(ctx, s.Token))

		_, err := store.Get(ctx, s.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("rejects empty token", func(t *testing.T) {
		assert.ErrorIs(t, store.Create(ctx, &session.Session{}), session.ErrInvalidSession)
	})
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	storeContract(t, store)

	t.Run("expired", func(t *testing.T) {
		s := newSession(-time.Minute)
		require.NoError(t, store.Create(context.Background(), s))

		_, err := store.Get(context.Background(), s.Token)
		assert.ErrorIs(t, err, session.ErrSessionExpired)
		_, err = store.Get(context.Background(), s.Token)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	opts, err := goredis.ParseURL(url)
	require.NoError(t, err)
	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	store := session.NewRedisStore(client, "ignews:test:session:"+uuid.NewString()+":")
	storeContract(t, store)

	t.Run("expired session is not written", func(t *testing.T) {
		assert.ErrorIs(t, store.Create(context.Background(), newSession(-time.Minute)), session.ErrSessionExpired)
	})
}
