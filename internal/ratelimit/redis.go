package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a Redis-backed implementation of Limiter for multi-instance
// deployments. Same contract as MemoryLimiter; counters live in Redis keyed
// by route+identity with a window-length TTL.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(client redis.UniversalClient) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: "ratelimit:",
	}
}

// Compile-time interface check.
var _ Limiter = (*RedisLimiter)(nil)

// Admit records one request for key and reports whether it is allowed.
func (l *RedisLimiter) Admit(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	k := l.prefix + key

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("incr rate limit key: %w", err)
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, k, window).Err(); err != nil {
			return Decision{}, fmt.Errorf("set rate limit window: %w", err)
		}
	}

	if count > int64(limit) {
		ttl, err := l.client.PTTL(ctx, k).Result()
		if err != nil {
			return Decision{}, fmt.Errorf("read rate limit ttl: %w", err)
		}
		if ttl < 0 {
			// Key lost its TTL (e.g. INCR raced an expiry); re-arm the window.
			ttl = window
			_ = l.client.PExpire(ctx, k, window).Err()
		}
		return Decision{Allowed: false, RetryAfterSeconds: retryAfterSeconds(ttl)}, nil
	}

	return Decision{Allowed: true, Remaining: limit - int(count)}, nil
}
