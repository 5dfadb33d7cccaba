package analysis

import (
	"context"

	"golang.org/x/sync/singleflight"

	"stockpulse/internal/agents"
	"stockpulse/internal/agents/schemas"
	"stockpulse/internal/metrics"
	"stockpulse/internal/tools"
	"stockpulse/pkg/errors"
	"stockpulse/pkg/logger"
)

// Runner executes one analysis pipeline run. Satisfied by
// *agents.Supervisor; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, task agents.Task) (*schemas.StockAnalysis, error)
}

// Service fronts the pipeline with the result cache and a per-key
// single-flight gate: N concurrent requests for one symbol trigger one
// pipeline run and N cache reads.
type Service struct {
	runner Runner
	cache  Cache
	group  singleflight.Group
	log    *logger.Logger
}

// NewService creates the analysis service.
func NewService(runner Runner, cache Cache) *Service {
	return &Service{
		runner: runner,
		cache:  cache,
		log:    logger.Get().With("component", "analysis_service"),
	}
}

// Analyze returns the cached analysis for the ticker, or runs the
// pipeline on a miss. Failures are never cached, so the next request
// re-attempts the run.
func (s *Service) Analyze(ctx context.Context, ticker string) (*schemas.StockAnalysis, error) {
	symbol, err := tools.NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	key := NormalizeKey(symbol)

	if cached, ok := s.cache.Get(ctx, key); ok {
		metrics.RecordCacheLookup(true)
		return cached, nil
	}
	metrics.RecordCacheLookup(false)

	value, err, shared := s.group.Do(key, func() (interface{}, error) {
		// Re-check under the gate: a concurrent flight may have
		// populated the cache while this caller waited.
		if cached, ok := s.cache.Get(ctx, key); ok {
			return cached, nil
		}

		result, err := s.runner.Run(ctx, agents.Task{Ticker: key})
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, key, result); err != nil {
			s.log.Warnw("cache write failed", "key", key, "error", err)
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		s.log.Debugw("request coalesced into concurrent run", "key", key)
	}

	analysis, ok := value.(*schemas.StockAnalysis)
	if !ok {
		return nil, errors.Wrap(errors.ErrInternal, "unexpected cache value type")
	}
	return analysis, nil
}
