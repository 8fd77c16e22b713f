package httputil

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket shared by every request a client makes to one
// upstream host. A nil *Limiter never blocks.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter returns a limiter allowing rps requests per second with the
// given burst. A non-positive rps disables limiting and returns nil.
func NewLimiter(rps float64, burst int) *Limiter {
	if rps <= 0 {
		return nil
	}
	return &Limiter{lim: rate.NewLimiter(rate.Limit(rps), max(burst, 1))}
}

// Wait blocks until a request may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.lim.Wait(ctx)
}

// RPS returns the configured steady-state rate, or 0 for a nil limiter.
func (l *Limiter) RPS() float64 {
	if l == nil {
		return 0
	}
	return float64(l.lim.Limit())
}

// Burst returns the configured burst size, or 0 for a nil limiter.
func (l *Limiter) Burst() int {
	if l == nil {
		return 0
	}
	return l.lim.Burst()
}
