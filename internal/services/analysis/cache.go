package analysis

import (
	"context"
	"strings"

	"stockpulse/internal/agents/schemas"
)

// Cache maps a normalized ticker to a previously computed analysis
// within its TTL window. Expired entries are treated as absent; only
// successful results are ever stored.
type Cache interface {
	// Get returns the cached analysis, or (nil, false) on miss/expiry.
	Get(ctx context.Context, key string) (*schemas.StockAnalysis, bool)

	// Set stores a successful analysis under the key.
	Set(ctx context.Context, key string, value *schemas.StockAnalysis) error
}

// NormalizeKey maps a ticker to its cache key. The key is the
// uppercased symbol only; free-text tasks would need a different key
// design.
func NormalizeKey(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
