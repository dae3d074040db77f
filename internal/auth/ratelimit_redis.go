package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yourname/sleepcycle/internal"
)

// RedisLimiter counts attempts in redis so the window survives restarts and
// is shared across instances. Redis errors allow the attempt through rather
// than blocking logins on a degraded cache.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger internal.Logger
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, logger internal.Logger) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window, logger: logger}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:login:%s", key)

	count, err := l.client.Get(ctx, redisKey).Int()
	if err != nil && err != redis.Nil {
		l.logger.Errorf("rate limiter: failed to read count for %s: %v", key, err)
		return true, err
	}

	if err == redis.Nil {
		if err := l.client.Set(ctx, redisKey, 1, l.window).Err(); err != nil {
			l.logger.Errorf("rate limiter: failed to init count for %s: %v", key, err)
			return true, err
		}
		return true, nil
	}

	if count >= l.limit {
		return false, nil
	}

	if _, err := l.client.Incr(ctx, redisKey).Result(); err != nil {
		l.logger.Errorf("rate limiter: failed to increment count for %s: %v", key, err)
		return true, err
	}

	ttl, err := l.client.TTL(ctx, redisKey).Result()
	if err == nil && ttl < 0 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.logger.Errorf("rate limiter: failed to set expiry for %s: %v", key, err)
		}
	}

	return true, nil
}

var _ LoginLimiter = (*RedisLimiter)(nil)
