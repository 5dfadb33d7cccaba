package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"stockpulse/pkg/errors"
)

// RateLimiter defines the interface for rate limiting AI provider requests.
type RateLimiter interface {
	// Wait blocks until request can proceed or context is cancelled.
	Wait(ctx context.Context) error

	// Allow checks if request can proceed without blocking.
	Allow() bool

	// Limit returns current rate limit (requests per minute).
	Limit() float64
}

// TokenBucketLimiter rate limits requests with a token bucket.
type TokenBucketLimiter struct {
	limiter  *rate.Limiter
	provider ProviderName
}

// NewTokenBucketLimiter creates a new token bucket rate limiter.
// reqPerMinute: maximum requests per minute (e.g., 500 for OpenAI Tier 1)
// burst: maximum burst size (typically 10-20% of rate)
func NewTokenBucketLimiter(provider ProviderName, reqPerMinute float64, burst int) *TokenBucketLimiter {
	if burst <= 0 {
		burst = int(reqPerMinute / 10) // Default: 10% of rate
		if burst < 1 {
			burst = 1
		}
	}

	return &TokenBucketLimiter{
		limiter:  rate.NewLimiter(rate.Limit(reqPerMinute/60.0), burst),
		provider: provider,
	}
}

// Wait blocks until a token is available or context is cancelled.
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return errors.Wrapf(err, "rate limiter wait cancelled for provider %s", l.provider)
	}
	return nil
}

// Allow checks if a request can proceed and consumes a token if available.
func (l *TokenBucketLimiter) Allow() bool {
	return l.limiter.Allow()
}

// Limit returns the current rate limit in requests per minute.
func (l *TokenBucketLimiter) Limit() float64 {
	return float64(l.limiter.Limit()) * 60.0
}

// NoOpLimiter is a rate limiter that never blocks (for testing or disabled rate limiting).
type NoOpLimiter struct{}

// NewNoOpLimiter creates a no-op rate limiter.
func NewNoOpLimiter() *NoOpLimiter {
	return &NoOpLimiter{}
}

// Wait always returns immediately without error.
func (l *NoOpLimiter) Wait(ctx context.Context) error {
	return nil
}

// Allow always returns true.
func (l *NoOpLimiter) Allow() bool {
	return true
}

// Limit returns -1 to indicate unlimited.
func (l *NoOpLimiter) Limit() float64 {
	return -1
}

// RateLimitError wraps rate limit related errors with provider context.
type RateLimitError struct {
	Provider ProviderName
	Limit    float64
	Err      error
}

// Error implements error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit error for provider %s (limit: %.0f req/min): %v", e.Provider, e.Limit, e.Err)
}

// Unwrap returns the underlying error.
func (e *RateLimitError) Unwrap() error {
	return e.Err
}
