package analysis

import (
	"context"
	"time"

	"stockpulse/internal/adapters/redis"
	"stockpulse/internal/agents/schemas"
	"stockpulse/pkg/logger"
)

const redisKeyPrefix = "stock_analysis:"

// RedisCache is the Redis-backed cache backend, for deployments where
// multiple instances should share one result cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisCache creates a Redis-backed cache with the given TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		log:    logger.Get().With("component", "redis_cache"),
	}
}

// Get returns the cached analysis if the key is still live in Redis.
func (c *RedisCache) Get(ctx context.Context, key string) (*schemas.StockAnalysis, bool) {
	var value schemas.StockAnalysis
	if err := c.client.Get(ctx, redisKeyPrefix+key, &value); err != nil {
		return nil, false
	}
	return &value, true
}

// Set stores the analysis with Redis-side expiry.
func (c *RedisCache) Set(ctx context.Context, key string, value *schemas.StockAnalysis) error {
	if err := c.client.Set(ctx, redisKeyPrefix+key, value, c.ttl); err != nil {
		c.log.Warnw("cache write failed", "key", key, "error", err)
		return err
	}
	return nil
}
