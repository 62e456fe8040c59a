// Package ratelimit paces outbound API requests so the client stays inside
// VALR's per-key request budget instead of tripping HTTP 429 responses.
// Server-directed 429 back-off is a separate concern handled by the REST
// pipeline; this package only smooths the request rate on the way out.
//
// The implementation wraps Uber's token bucket limiter behind a small
// interface so tests and callers can substitute their own pacing.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/ratelimit"
)

// Rate expresses a request budget: Limit operations per Interval.
type Rate struct {
	Limit    int
	Interval time.Duration
}

// RateLimiter blocks callers long enough to keep operations inside the
// configured rate.
type RateLimiter interface {
	// Wait blocks until the next operation is permitted, or returns early
	// with the context's error if it is cancelled first.
	Wait(ctx context.Context) error

	// SetLimit replaces the rate configuration at runtime.
	SetLimit(limit Rate) error
}

type uberLimiter struct {
	limiter ratelimit.Limiter
	rate    Rate
}

// NewTokenBucketLimiter creates a RateLimiter using Uber's token bucket,
// permitting rate.Limit operations per rate.Interval. Sub-unit rates such as
// one operation per two seconds are supported. A non-positive rate yields an
// unlimited limiter.
func NewTokenBucketLimiter(rate Rate) RateLimiter {
	if rate.Limit <= 0 || rate.Interval <= 0 {
		return NewUnlimited()
	}
	return &uberLimiter{
		limiter: ratelimit.New(rate.Limit, ratelimit.Per(rate.Interval)),
		rate:    rate,
	}
}

// NewUnlimited creates a RateLimiter that never blocks. Used when client-side
// pacing is disabled.
func NewUnlimited() RateLimiter {
	return &uberLimiter{limiter: ratelimit.NewUnlimited()}
}

// Wait implements RateLimiter.
func (l *uberLimiter) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limit wait cancelled: %w", ctx.Err())
	default:
		l.limiter.Take()
		return nil
	}
}

// SetLimit implements RateLimiter.
func (l *uberLimiter) SetLimit(rate Rate) error {
	if rate.Limit <= 0 || rate.Interval <= 0 {
		return fmt.Errorf("invalid rate limit: %+v", rate)
	}
	l.limiter = ratelimit.New(rate.Limit, ratelimit.Per(rate.Interval))
	l.rate = rate
	return nil
}
