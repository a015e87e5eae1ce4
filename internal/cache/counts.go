// Package cache keeps follower and following counts in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// CountCache is safe to use with a nil client; every call then misses.
type CountCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCountCache(client *redis.Client, ttl time.Duration) *CountCache {
	return &CountCache{redis: client, ttl: ttl}
}

func FollowersKey(userID uint) string {
	return fmt.Sprintf("user:%d:followers_count", userID)
}

func FollowingKey(userID uint) string {
	return fmt.Sprintf("user:%d:following_count", userID)
}

// versionKey is bumped on every invalidation of key.
func versionKey(key string) string {
	return key + ":version"
}

// GetOrLoad returns the cached value for key, falling back to load and
// caching its result. The result is not cached when key was invalidated
// while load ran.
func (c *CountCache) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (int64, error)) (int64, error) {
	if c == nil || c.redis == nil {
		return load(ctx)
	}

	if cached, err := c.redis.Get(ctx, key).Int64(); err == nil {
		return cached, nil
	}

	var (
		count   int64
		loadErr error
		loaded  bool
	)
	err := c.redis.Watch(ctx, func(tx *redis.Tx) error {
		loaded = true
		count, loadErr = load(ctx)
		if loadErr != nil {
			return nil
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, count, c.ttl)
			return nil
		})
		return err
	}, versionKey(key))

	if !loaded {
		logger.Warn("count cache unavailable", "key", key, "error", err)
		return load(ctx)
	}

	switch {
	case loadErr != nil:
		return 0, loadErr
	case errors.Is(err, redis.TxFailedErr):
		logger.Debug("count cache write skipped after invalidation", "key", key)
	case err != nil:
		logger.Warn("count cache write failed", "key", key, "error", err)
	}
	return count, nil
}

// InvalidateFollow drops both sides of a follow edge and bumps their versions
// so loads already in flight do not repopulate them.
func (c *CountCache) InvalidateFollow(ctx context.Context, followerID, followeeID uint) {
	if c == nil || c.redis == nil {
		return
	}
	followers, following := FollowersKey(followeeID), FollowingKey(followerID)
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, followers, following)
		pipe.Incr(ctx, versionKey(followers))
		pipe.Incr(ctx, versionKey(following))
		return nil
	})
	if err != nil {
		logger.Warn("count cache invalidation failed", "follower_id", followerID, "followee_id", followeeID, "error", err)
	}
}
