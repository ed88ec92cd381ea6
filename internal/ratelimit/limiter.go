// Package ratelimit paces outbound requests to metadata providers.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a named token bucket.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// New allows requestsPerSecond requests per second with an equal burst.
func New(name string, requestsPerSecond int) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		name:    name,
	}
}

// Every allows one request per interval with the given burst.
func Every(name string, interval time.Duration, burst int) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Every(interval), burst),
		name:    name,
	}
}

// Unlimited never blocks. Used when a provider has no published quota.
func Unlimited(name string) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Inf, 0),
		name:    name,
	}
}

// Wait blocks until a request may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.name, err)
	}
	return nil
}

// Allow reports whether a request can proceed without blocking.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}

// Name returns the limiter's name.
func (l *Limiter) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}
