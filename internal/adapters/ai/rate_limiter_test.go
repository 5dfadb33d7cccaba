package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketLimiter_Allow(t *testing.T) {
	// 60 req/min with burst 2: two immediate requests pass, the third
	// has to wait for refill.
	limiter := NewTokenBucketLimiter(ProviderNameOpenAI, 60, 2)

	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())
}

func TestTokenBucketLimiter_Limit(t *testing.T) {
	limiter := NewTokenBucketLimiter(ProviderNameOpenAI, 500, 50)
	assert.InDelta(t, 500, limiter.Limit(), 0.001)
}

func TestTokenBucketLimiter_DefaultBurst(t *testing.T) {
	// Burst defaults to 10% of the per-minute rate
	limiter := NewTokenBucketLimiter(ProviderNameOpenAI, 100, 0)
	for i := 0; i < 10; i++ {
		assert.True(t, limiter.Allow(), "request %d should fit the default burst", i)
	}
	assert.False(t, limiter.Allow())

	// Tiny rates still allow one request
	tiny := NewTokenBucketLimiter(ProviderNameOpenAI, 5, 0)
	assert.True(t, tiny.Allow())
}

func TestTokenBucketLimiter_WaitCancelled(t *testing.T) {
	limiter := NewTokenBucketLimiter(ProviderNameOpenAI, 1, 1)
	require.True(t, limiter.Allow(), "drain the bucket")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	require.Error(t, err)
}

func TestNoOpLimiter(t *testing.T) {
	limiter := NewNoOpLimiter()

	assert.True(t, limiter.Allow())
	assert.NoError(t, limiter.Wait(context.Background()))
	assert.Equal(t, float64(-1), limiter.Limit())
}

func TestRateLimitError(t *testing.T) {
	inner := context.DeadlineExceeded
	err := &RateLimitError{Provider: ProviderNameOpenAI, Limit: 60, Err: inner}

	assert.Contains(t, err.Error(), "openai")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
