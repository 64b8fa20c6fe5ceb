package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter keeps one token bucket per key. The bucket holds Limit tokens
// and refills at Limit per Window. Idle buckets are dropped after two windows.
type LocalLimiter struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	policy  Policy
	every   rate.Limit
	cleanup time.Time
	now     func() time.Time
}

func NewLocalLimiter(policy Policy) *LocalLimiter {
	policy = policy.normalized()
	return &LocalLimiter{
		entries: make(map[string]*localEntry),
		policy:  policy,
		every:   rate.Every(policy.Window / time.Duration(policy.Limit)),
		now:     time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.cleanup) {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > 2*l.policy.Window {
				delete(l.entries, k)
			}
		}
		l.cleanup = now.Add(l.policy.Window)
	}

	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(l.every, l.policy.Limit)}
		l.entries[key] = e
	}
	e.lastSeen = now

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return Decision{Allowed: false, RetryAfter: l.policy.Window}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}
	return Decision{Allowed: true}, nil
}

func (l *LocalLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
