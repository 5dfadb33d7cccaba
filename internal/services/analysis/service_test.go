package analysis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/internal/agents"
	"stockpulse/internal/agents/schemas"
	"stockpulse/pkg/errors"
)

// fakeRunner counts pipeline runs and can block to force request
// coalescing.
type fakeRunner struct {
	runs    atomic.Int64
	result  *schemas.StockAnalysis
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context, task agents.Task) (*schemas.StockAnalysis, error) {
	f.runs.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestService_Analyze_CacheMissThenHit(t *testing.T) {
	runner := &fakeRunner{result: sampleAnalysis("Microsoft")}
	svc := NewService(runner, NewMemoryCache(time.Hour))

	got, err := svc.Analyze(context.Background(), "msft")
	require.NoError(t, err)
	assert.Equal(t, "Microsoft", got.CompanyOverview)
	assert.Equal(t, int64(1), runner.runs.Load())

	// Second call is served from cache
	got, err = svc.Analyze(context.Background(), " MSFT ")
	require.NoError(t, err)
	assert.Equal(t, "Microsoft", got.CompanyOverview)
	assert.Equal(t, int64(1), runner.runs.Load())
}

func TestService_Analyze_InvalidSymbol(t *testing.T) {
	runner := &fakeRunner{result: sampleAnalysis("x")}
	svc := NewService(runner, NewMemoryCache(time.Hour))

	_, err := svc.Analyze(context.Background(), "not a ticker")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidSymbol))
	assert.Equal(t, int64(0), runner.runs.Load())
}

func TestService_Analyze_FailureNotCached(t *testing.T) {
	runner := &fakeRunner{err: errors.Wrap(errors.ErrRoutingExhausted, "budget gone")}
	svc := NewService(runner, NewMemoryCache(time.Hour))

	_, err := svc.Analyze(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, int64(1), runner.runs.Load())

	// Next request re-attempts the pipeline instead of replaying the failure
	runner.err = nil
	runner.result = sampleAnalysis("Apple")

	got, err := svc.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple", got.CompanyOverview)
	assert.Equal(t, int64(2), runner.runs.Load())
}

func TestService_Analyze_ConcurrentRequestsCoalesce(t *testing.T) {
	runner := &fakeRunner{
		result:  sampleAnalysis("Microsoft"),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc := NewService(runner, NewMemoryCache(time.Hour))

	var wg sync.WaitGroup
	results := make([]*schemas.StockAnalysis, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = svc.Analyze(context.Background(), "MSFT")
	}()

	// Wait until the first flight is inside the runner, then issue the
	// second request so it joins the same flight.
	<-runner.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = svc.Analyze(context.Background(), "MSFT")
	}()

	// Give the second goroutine a moment to reach the singleflight gate
	time.Sleep(50 * time.Millisecond)
	close(runner.release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, "Microsoft", results[0].CompanyOverview)
	assert.Equal(t, "Microsoft", results[1].CompanyOverview)
	assert.Equal(t, int64(1), runner.runs.Load(), "concurrent requests for one symbol share a single run")
}

func TestService_Analyze_ExpiredEntryReruns(t *testing.T) {
	cache := NewMemoryCache(30 * time.Minute)
	current := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	runner := &fakeRunner{result: sampleAnalysis("Apple")}
	svc := NewService(runner, cache)

	_, err := svc.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(1), runner.runs.Load())

	current = current.Add(time.Hour)

	_, err = svc.Analyze(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(2), runner.runs.Load(), "expired entry triggers a fresh run")
}
