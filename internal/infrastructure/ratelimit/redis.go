package ratelimit

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared by every instance using the same Redis.
type RedisLimiter struct {
	client *redislib.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedis(client *redislib.Client, name string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: "taskdesk:ratelimit:" + name + ":",
		limit:  limit,
		window: window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := l.prefix + key

	var incr *redislib.IntCmd
	var ttl *redislib.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, l.window)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit counter: %w", err)
	}

	count := int(incr.Val())
	decision := Decision{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: l.limit - count,
	}
	if decision.Remaining < 0 {
		decision.Remaining = 0
	}
	if !decision.Allowed {
		decision.RetryAfter = ttl.Val()
		if decision.RetryAfter <= 0 {
			decision.RetryAfter = l.window
		}
	}
	return decision, nil
}
