package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter throttles how fast the listener pulls connections off the
// accept queue, using a token bucket from golang.org/x/time/rate.
//
// A nil *RateLimiter is valid and never throttles, so callers can hold one
// unconditionally and only pay for it when a rate is configured.
//
// Thread safety:
// All methods are safe for concurrent use.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing acceptsPerSecond sustained with the given
// burst. A zero rate disables limiting and returns nil. A zero burst is
// raised to 1 so that Wait can ever succeed.
//
// Example:
//
//	// 500 accepts/s sustained, bursts of 1000
//	limiter := New(500, 1000)
func New(acceptsPerSecond, burst uint) *RateLimiter {
	if acceptsPerSecond == 0 {
		return nil
	}
	if burst == 0 {
		burst = 1
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(acceptsPerSecond), int(burst)),
	}
}

// Allow reports whether a token is available right now, consuming it if so.
func (r *RateLimiter) Allow() bool {
	if r == nil {
		return true
	}
	return r.limiter.Allow()
}

// Wait blocks until a token is available or ctx is done.
//
// Returns the context error if ctx finishes first.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return ctx.Err()
	}
	return r.limiter.Wait(ctx)
}

// Tokens returns the number of tokens currently in the bucket.
// Unlimited limiters report -1.
func (r *RateLimiter) Tokens() float64 {
	if r == nil {
		return -1
	}
	return r.limiter.Tokens()
}
