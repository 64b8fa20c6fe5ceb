package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter stored in Redis. Each window gets
// its own key, which expires together with the window.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	policy Policy
	now    func() time.Time
}

func NewRedisLimiter(client redis.UniversalClient, prefix string, policy Policy) *RedisLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisLimiter{client: client, prefix: prefix, policy: policy.normalized(), now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if l.client == nil {
		return Decision{}, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		key = "unknown"
	}

	now := l.now()
	window := l.policy.Window
	slot := now.UnixMilli() / window.Milliseconds()
	storeKey := l.prefix + ":" + key + ":" + strconv.FormatInt(slot, 10)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, storeKey)
		pipe.PExpire(ctx, storeKey, window)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("redis limiter: %w", err)
	}

	if incr.Val() > int64(l.policy.Limit) {
		windowEnd := time.UnixMilli((slot + 1) * window.Milliseconds())
		return Decision{Allowed: false, RetryAfter: windowEnd.Sub(now)}, nil
	}
	return Decision{Allowed: true}, nil
}
