package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/eventory/internal/domain"
	"github.com/avolkov/eventory/internal/infrastructure/redis"
)

func newTestCache(t *testing.T) (*redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.New(mr.Addr(), "", 0), mr
}

func TestEventViewsRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, err := cache.GetEventViews(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, cache.SetEventViews(ctx, 42, 1234))

	got, err := cache.GetEventViews(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), got)
}

func TestEventViewsExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetEventViews(ctx, 7, 10))

	mr.FastForward(2 * time.Minute)

	_, err := cache.GetEventViews(ctx, 7)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestAllowRequestFixedWindow(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := cache.AllowRequest(ctx, "10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d within limit", i+1)
	}

	ok, err := cache.AllowRequest(ctx, "10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "limit exceeded")

	// A different ip has its own window.
	ok, err = cache.AllowRequest(ctx, "10.0.0.2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// Window expiry resets the counter.
	mr.FastForward(2 * time.Minute)
	ok, err = cache.AllowRequest(ctx, "10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
