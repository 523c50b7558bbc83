//go:build integration

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedisStore(t *testing.T, ctx context.Context) Store {
	t.Helper()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	return NewRedisStore(endpoint, "", 0)
}

func TestIntegration_RedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupRedisStore(t, ctx)

	require.NoError(t, store.Set(ctx, "session:it-1", `{"user_id":"u-1"}`, time.Minute))

	v, err := store.Get(ctx, "session:it-1")
	require.NoError(t, err)
	assert.Equal(t, `{"user_id":"u-1"}`, v)

	exists, err := store.Exists(ctx, "session:it-1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, "session:it-1"))

	exists, err = store.Exists(ctx, "session:it-1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Get(ctx, "session:it-1")
	assert.Error(t, err)
}

func TestIntegration_RedisStoreTTL(t *testing.T) {
	ctx := context.Background()
	store := setupRedisStore(t, ctx)

	require.NoError(t, store.Set(ctx, "session:it-ttl", "v", time.Second))

	v, err := store.Get(ctx, "session:it-ttl")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	time.Sleep(1500 * time.Millisecond)

	_, err = store.Get(ctx, "session:it-ttl")
	assert.Error(t, err)
}

func TestIntegration_ManagerOnRedis(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(setupRedisStore(t, ctx))

	sess := &Session{UserID: "u-1", AccessToken: "tok-1"}
	id, err := mgr.Create(ctx, sess, 60)
	require.NoError(t, err)

	got, err := mgr.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, "tok-1", got.AccessToken)

	got.AccessToken = "tok-2"
	require.NoError(t, mgr.Save(ctx, got))

	got, err = mgr.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got.AccessToken)

	require.NoError(t, mgr.Delete(ctx, id))
	_, err = mgr.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
