// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/redis/go-redis/v9"

	"portfolio_backend/internal/feature/marketdata/adapters/coingecko"
	"portfolio_backend/internal/feature/marketdata/usecase"
	"portfolio_backend/internal/platform/cache"
	infrahttp "portfolio_backend/internal/platform/http"
)

// NewMarketRepository creates a fully configured CoinGecko market client.
// If Redis is available, snapshot responses are served through a caching
// decorator; the second return value invalidates that cache and is nil
// when running without Redis.
func NewMarketRepository(rdb *redis.Client) (usecase.MarketRepository, usecase.SnapshotInvalidator) {
	cfg := coingecko.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	market := coingecko.NewCoinGeckoMarket(cfg, httpClient)

	if rdb == nil {
		return market, nil
	}

	caching := cache.NewCachingMarketRepository(rdb, cache.SnapshotTTLFromEnv(), market, "markets")
	return caching, caching
}
