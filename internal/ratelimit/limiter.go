package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces outbound mapping calls at a fixed ceiling.
// It never inspects responses, so it is pacing only, not quota tracking.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerSecond calls per second.
// A non-positive value disables pacing entirely.
func New(requestsPerSecond float64) *Limiter {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Limiter{
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Unlimited reports whether pacing is disabled
func (l *Limiter) Unlimited() bool {
	return l == nil || l.limiter.Limit() == rate.Inf
}

// Wait blocks until the limiter permits a call.
// It returns an error if the context is canceled before the call can proceed
func (l *Limiter) Wait(ctx context.Context) error {
	if l.Unlimited() {
		return ctx.Err()
	}
	return l.limiter.Wait(ctx)
}
