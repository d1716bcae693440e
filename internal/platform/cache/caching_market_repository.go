// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio_backend/internal/feature/marketdata/domain/entity"
	"portfolio_backend/internal/feature/marketdata/usecase"
)

// CachingMarketRepository decorates a MarketRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository. Snapshot responses are cached per
// currency and coin set so repeated fetches within the TTL do not hit the
// upstream API.
type CachingMarketRepository struct {
	inner     usecase.MarketRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingMarketRepository decorates a MarketRepository with Redis caching.
// If ttl is 0, it defaults to 30 seconds. If namespace is empty, it uses "markets".
func NewCachingMarketRepository(rdb *redis.Client, ttl time.Duration, inner usecase.MarketRepository, namespace string) *CachingMarketRepository {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if namespace == "" {
		namespace = "markets"
	}
	return &CachingMarketRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

var _ usecase.MarketRepository = (*CachingMarketRepository)(nil)

// GetMarkets retrieves a market snapshot, checking cache first then falling
// back to the upstream API. Callers pass ids pre-sorted, so the same coin
// set always produces the same cache key.
func (c *CachingMarketRepository) GetMarkets(ctx context.Context, vsCurrency string, ids []string) ([]entity.MarketTicker, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.GetMarkets(ctx, vsCurrency, ids)
	}

	key := c.cacheKey(vsCurrency, ids)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.MarketTicker
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the upstream API
	out, err := c.inner.GetMarkets(ctx, vsCurrency, ids)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// Invalidate drops every cached snapshot for the given currency. Forced
// refreshes call this first so the next fetch reaches the upstream API.
func (c *CachingMarketRepository) Invalidate(ctx context.Context, vsCurrency string) error {
	if c.rdb == nil {
		return nil
	}
	pattern := fmt.Sprintf("%s:%s:*", c.namespace, safe(vsCurrency))
	return c.deleteByPattern(ctx, pattern)
}

// cacheKey generates a cache key for a specific snapshot query.
func (c *CachingMarketRepository) cacheKey(vsCurrency string, ids []string) string {
	return fmt.Sprintf("%s:%s:%s",
		c.namespace,
		safe(vsCurrency),
		safe(strings.Join(ids, ",")),
	)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingMarketRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	// Simple escaping of characters that are problematic for Redis keys
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
