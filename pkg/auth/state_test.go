package auth_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/ignews/pkg/auth"
)

func stateStoreContract(t *testing.T, store auth.StateStore) {
	ctx := context.Background()

	t.Run("consume once", func(t *testing.T) {
		state := uuid.NewString()
		require.NoError(t, store.Save(ctx, state, time.Minute))
		require.NoError(t, store.Consume(ctx, state))
		assert.ErrorIs(t, store.Consume(ctx, state), auth.ErrStateNotFound)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.ErrorIs(t, store.Consume(ctx, uuid.NewString()), auth.ErrStateNotFound)
	})
}

func TestMemoryStateStore(t *testing.T) {
	t.Parallel()

	store := auth.NewMemoryStateStore()
	stateStoreContract(t, store)

	t.Run("expired", func(t *testing.T) {
		require.NoError(t, store.Save(context.Background(), "old", -time.Second))
		assert.ErrorIs(t, store.Consume(context.Background(), "old"), auth.ErrStateNotFound)
	})
}

func TestRedisStateStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := goredis.ParseURL(url)
	require.NoError(t, err)
	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	stateStoreContract(t, auth.NewRedisStateStore(client, "ignews:test:oauth_state:"))
}
