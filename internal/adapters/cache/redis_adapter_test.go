package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenchwise/backend/internal/domain/providers"
	redisclient "github.com/wrenchwise/backend/internal/infrastructure/clients/redis"
)

func newTestCache(t *testing.T) (providers.CacheProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisAdapter(redisclient.NewFromClient(rdb)), mr
}

func TestRedisAdapter_GetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), "mechanic:none")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
}

func TestRedisAdapter_SetGetExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "mechanic:1", []byte(`{"id":"1"}`), 60))

	got, err := c.Get(ctx, "mechanic:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(got))

	ok, err := c.Exists(ctx, "mechanic:1")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(61 * time.Second)
	_, err = c.Get(ctx, "mechanic:1")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
}

func TestRedisAdapter_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisAdapter_DeletePattern(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for _, k := range []string{"http:mechanics:a", "http:mechanics:b", "mechanic:1"} {
		require.NoError(t, c.Set(ctx, k, []byte("x"), 0))
	}

	require.NoError(t, c.DeletePattern(ctx, "http:mechanics:*"))

	assert.False(t, mr.Exists("http:mechanics:a"))
	assert.False(t, mr.Exists("http:mechanics:b"))
	assert.True(t, mr.Exists("mechanic:1"))
}
