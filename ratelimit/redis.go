package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is the shared-store variant: a fixed-window counter kept
// with INCR + EXPIRE so every instance sees the same attempt counts.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	period time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		period: period,
	}
}

func (l *RedisLimiter) key(key string) string {
	return fmt.Sprintf("ratelimit:login:%s", key)
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key)

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}

	if count == 1 {
		l.client.Expire(ctx, k, l.period)
	}

	return count <= int64(l.limit), nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.key(key)).Err()
}
