package analysis

import (
	"context"
	"sync"
	"time"

	"stockpulse/internal/agents/schemas"
)

// MemoryCache is the in-process cache backend. Entries expire lazily:
// expiry is checked at read time, nothing is actively swept.
type MemoryCache struct {
	ttl     time.Duration
	entries map[string]memoryEntry
	mu      sync.RWMutex

	// now is swappable for TTL tests.
	now func() time.Time
}

type memoryEntry struct {
	value     *schemas.StockAnalysis
	createdAt time.Time
}

// NewMemoryCache creates an in-memory cache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns a live entry, treating expired ones as absent.
func (c *MemoryCache) Get(_ context.Context, key string) (*schemas.StockAnalysis, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.createdAt) >= c.ttl {
		return nil, false
	}
	return entry.value, true
}

// Set stores the analysis, overwriting any previous entry.
func (c *MemoryCache) Set(_ context.Context, key string, value *schemas.StockAnalysis) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: value, createdAt: c.now()}
	return nil
}
