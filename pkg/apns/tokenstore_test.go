package apns_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apnskit/pkg/apns"
)

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()
	store := apns.NewMemoryTokenStore(0)

	dead, err := store.IsUnregistered(ctx, "token")
	require.NoError(t, err)
	assert.False(t, dead)

	require.NoError(t, store.MarkUnregistered(ctx, "token", time.Now()))
	dead, err = store.IsUnregistered(ctx, "token")
	require.NoError(t, err)
	assert.True(t, dead)

	require.NoError(t, store.Forget(ctx, "token"))
	dead, err = store.IsUnregistered(ctx, "token")
	require.NoError(t, err)
	assert.False(t, dead)
}

func TestMemoryTokenStore_TTL(t *testing.T) {
	ctx := context.Background()
	store := apns.NewMemoryTokenStore(time.Hour)

	require.NoError(t, store.MarkUnregistered(ctx, "old", time.Now().Add(-2*time.Hour)))
	require.NoError(t, store.MarkUnregistered(ctx, "recent", time.Now().Add(-time.Minute)))

	dead, err := store.IsUnregistered(ctx, "old")
	require.NoError(t, err)
	assert.False(t, dead)

	dead, err = store.IsUnregistered(ctx, "recent")
	require.NoError(t, err)
	assert.True(t, dead)
}

func TestRedisTokenStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	store := apns.NewRedisTokenStore(client, "apnskit:test:", time.Minute)
	token := "token-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { _ = store.Forget(ctx, token) })

	dead, err := store.IsUnregistered(ctx, token)
	require.NoError(t, err)
	assert.False(t, dead)

	require.NoError(t, store.MarkUnregistered(ctx, token, time.Now()))
	dead, err = store.IsUnregistered(ctx, token)
	require.NoError(t, err)
	assert.True(t, dead)

	ttl, err := client.TTL(ctx, "apnskit:test:"+token).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Forget(ctx, token))
	dead, err = store.IsUnregistered(ctx, token)
	require.NoError(t, err)
	assert.False(t, dead)
}
