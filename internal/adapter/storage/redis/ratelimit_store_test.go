package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitStore_AllowWithinLimit(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewRateLimitStore(client)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := store.Allow(ctx, "1.2.3.4:mutations", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}
}

func TestRateLimitStore_BlocksOverLimit(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewRateLimitStore(client)
	ctx := context.Background()

	var last *RateLimitResult
	for i := 0; i < 4; i++ {
		var err error
		last, err = store.Allow(ctx, "1.2.3.4:mutations", 3, time.Minute)
		require.NoError(t, err)
	}

	assert.False(t, last.Allowed)
	assert.Equal(t, int64(0), last.Remaining)
	assert.Equal(t, int64(3), last.Limit)
}

func TestRateLimitStore_SeparateKeys(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewRateLimitStore(client)
	ctx := context.Background()

	_, err := store.Allow(ctx, "1.2.3.4:mutations", 1, time.Minute)
	require.NoError(t, err)

	result, err := store.Allow(ctx, "5.6.7.8:mutations", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed, "different identifiers get independent windows")
}
