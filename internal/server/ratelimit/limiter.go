// Package ratelimit throttles requests per client key. RedisLimiter shares
// counters between server replicas; LocalLimiter keeps them in process.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter admits at most a fixed number of requests per key and window.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Policy is the request budget per key.
type Policy struct {
	Limit  int
	Window time.Duration
}

func (p Policy) normalized() Policy {
	if p.Limit <= 0 {
		p.Limit = 1
	}
	if p.Window <= 0 {
		p.Window = time.Minute
	}
	return p
}
