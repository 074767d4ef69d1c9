package worker

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces generation requests to a per-minute budget. Local models
// tolerate bursts poorly, so the default burst is 1.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter from a requests-per-minute budget
func NewLimiter(requestsPerMinute float64, burst int) *Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	if burst <= 0 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerMinute/60.0), burst),
	}
}

// Wait blocks until the next request is allowed or the context is done
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed right now without waiting
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
