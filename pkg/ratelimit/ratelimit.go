// Package ratelimit implements fixed-window request counters backed by Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// counter is the part of redis.Cmdable the limiter needs.
type counter interface {
	SetArgs(ctx context.Context, key string, value interface{}, a redis.SetArgs) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

type RedisLimiter struct {
	store  counter
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(store counter, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		store:  store,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow counts a hit for key and reports whether it is within the limit for
// the current window. The window starts with the first hit: the key is
// created with its TTL before it is incremented, so a counter never outlives
// the window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("rate:%s:%s", l.prefix, key)

	err := l.store.SetArgs(ctx, redisKey, 0, redis.SetArgs{Mode: "NX", TTL: l.window}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return true, fmt.Errorf("start window %s: %w", redisKey, err)
	}

	count, err := l.store.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, fmt.Errorf("increment %s: %w", redisKey, err)
	}

	return count <= int64(l.limit), nil
}

// NewRedisClient parses a redis:// URL and checks the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
