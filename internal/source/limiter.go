package source

import (
	"context"

	"toolmux/internal/config"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds the number of concurrent tool executions against one
// server. The overflow policy decides the fate of calls beyond the bound:
// OverflowQueue blocks until a slot frees up or the caller's context is
// cancelled, OverflowReject fails fast with *BackpressureError.
type Limiter struct {
	server   string
	limit    int
	overflow config.OverflowPolicy
	sem      *semaphore.Weighted
}

// NewLimiter creates a limiter allowing up to limit in-flight calls.
func NewLimiter(server string, limit int, overflow config.OverflowPolicy) *Limiter {
	if limit < 1 {
		limit = 1
	}
	return &Limiter{
		server:   server,
		limit:    limit,
		overflow: overflow,
		sem:      semaphore.NewWeighted(int64(limit)),
	}
}

// Acquire claims a slot according to the overflow policy. On success the
// caller must call Release exactly once.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.overflow == config.OverflowReject {
		if !l.sem.TryAcquire(1) {
			return &BackpressureError{Server: l.server, Limit: l.limit}
		}
		return nil
	}
	return l.sem.Acquire(ctx, 1)
}

// Release returns a slot claimed with Acquire.
func (l *Limiter) Release() {
	l.sem.Release(1)
}
