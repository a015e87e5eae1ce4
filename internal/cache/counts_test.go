package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountCacheWithoutRedisAlwaysLoads(t *testing.T) {
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (int64, error) {
		calls++
		return 3, nil
	}

	for _, c := range []*CountCache{nil, NewCountCache(nil, time.Minute)} {
		got, err := c.GetOrLoad(ctx, FollowersKey(1), load)
		require.NoError(t, err)
		assert.EqualValues(t, 3, got)
		c.InvalidateFollow(ctx, 1, 2)
	}
	assert.Equal(t, 2, calls)
}

func TestCountCacheLoaderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewCountCache(nil, time.Minute).GetOrLoad(context.Background(), FollowingKey(4), func(context.Context) (int64, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:7:followers_count", FollowersKey(7))
	assert.Equal(t, "user:7:following_count", FollowingKey(7))
}

func TestCountCacheUnreachableRedisFallsBackToLoader(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	got, err := NewCountCache(client, time.Minute).GetOrLoad(context.Background(), FollowersKey(2), func(context.Context) (int64, error) {
		return 9, nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 9, got)
}

// Needs a disposable Redis at REDIS_TEST_URL.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.FlushDB(context.Background()).Err())
	return client
}

func TestCountCacheInvalidationDuringLoad(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)
	c := NewCountCache(client, time.Minute)

	got, err := c.GetOrLoad(ctx, FollowersKey(5), func(ctx context.Context) (int64, error) {
		c.InvalidateFollow(ctx, 4, 5)
		return 1, nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, got)

	_, err = client.Get(ctx, FollowersKey(5)).Result()
	assert.ErrorIs(t, err, redis.Nil)

	got, err = c.GetOrLoad(ctx, FollowersKey(5), func(context.Context) (int64, error) { return 2, nil })
	require.NoError(t, err)
	assert.EqualValues(t, 2, got)

	cached, err := client.Get(ctx, FollowersKey(5)).Int64()
	require.NoError(t, err)
	assert.EqualValues(t, 2, cached)
}
