package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cooldown grants an action at most once per window per key.
type Cooldown interface {
	Acquire(ctx context.Context, key string) (bool, error)
	// Release gives the key back before its window ends.
	Release(ctx context.Context, key string) error
}

// RedisCooldown implements Cooldown with SETNX. A nil client or a
// non-positive window always grants.
type RedisCooldown struct {
	rdb    *redis.Client
	window time.Duration
}

func NewRedisCooldown(rdb *redis.Client, window time.Duration) *RedisCooldown {
	return &RedisCooldown{rdb: rdb, window: window}
}

func (c *RedisCooldown) Acquire(ctx context.Context, key string) (bool, error) {
	if c == nil || c.rdb == nil || c.window <= 0 {
		return true, nil
	}

	wasSet, err := c.rdb.SetNX(ctx, cooldownKey(key), "locked", c.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

func (c *RedisCooldown) Release(ctx context.Context, key string) error {
	if c == nil || c.rdb == nil || c.window <= 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, cooldownKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to clear rate limit in redis: %w", err)
	}
	return nil
}

func cooldownKey(key string) string {
	return "rate_limit:" + key
}
