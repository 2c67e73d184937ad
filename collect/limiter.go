package collect

import (
	"context"
	"time"

	"praxis"

	"golang.org/x/time/rate"
)

var _ praxis.Limiter = (*IntervalLimiter)(nil)

// MinInterval is the smallest permitted delay between requests to a
// source host. Configured intervals below the floor are clamped.
const MinInterval = time.Second

// IntervalLimiter enforces a fixed minimum interval between requests
// using a token bucket with a burst of 1 (no bursting allowed).
type IntervalLimiter struct {
	limiter *rate.Limiter
}

// NewIntervalLimiter creates a limiter that allows one request per
// interval. Intervals below MinInterval are clamped to the floor.
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	if interval < MinInterval {
		interval = MinInterval
	}
	return &IntervalLimiter{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until the interval allows the next request.
// Returns an error if the context is canceled before the wait completes.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
