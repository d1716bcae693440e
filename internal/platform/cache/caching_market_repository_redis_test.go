package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_backend/internal/feature/marketdata/domain/entity"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return client, mr
}

// countingMarketRepository は呼び出し回数を記録するMarketRepositoryです。
type countingMarketRepository struct {
	calls   int
	tickers []entity.MarketTicker
}

func (c *countingMarketRepository) GetMarkets(ctx context.Context, vsCurrency string, ids []string) ([]entity.MarketTicker, error) {
	c.calls++
	return c.tickers, nil
}

// TestCachingMarketRepository_RoundTrip はmiss→fetch→hitの一連の流れを
// 実際のRedisプロトコル実装に対して検証します。
func TestCachingMarketRepository_RoundTrip(t *testing.T) {
	client, _ := setupTestRedis(t)

	inner := &countingMarketRepository{
		tickers: []entity.MarketTicker{
			{Code: "BTC", ProviderID: "bitcoin", Price: decimal.NewFromInt(50000)},
		},
	}
	repo := NewCachingMarketRepository(client, 30*time.Second, inner, "markets")

	ctx := context.Background()

	// First fetch misses the cache and hits the inner repository
	first, err := repo.GetMarkets(ctx, "usd", []string{"bitcoin"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	require.Len(t, first, 1)

	// Second fetch is served from the cache
	second, err := repo.GetMarkets(ctx, "usd", []string{"bitcoin"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "inner repository should not be called on cache hit")
	require.Len(t, second, 1)
	assert.Equal(t, "BTC", second[0].Code)
	assert.True(t, second[0].Price.Equal(decimal.NewFromInt(50000)))
}

// TestCachingMarketRepository_TTLExpiry はTTL経過後にキャッシュが失効し、
// 再び上流から取得されることを検証します。
func TestCachingMarketRepository_TTLExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)

	inner := &countingMarketRepository{
		tickers: []entity.MarketTicker{
			{Code: "ETH", ProviderID: "ethereum", Price: decimal.NewFromInt(3000)},
		},
	}
	repo := NewCachingMarketRepository(client, 30*time.Second, inner, "markets")

	ctx := context.Background()

	_, err := repo.GetMarkets(ctx, "usd", []string{"ethereum"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	// Advance miniredis past the TTL
	mr.FastForward(31 * time.Second)

	_, err = repo.GetMarkets(ctx, "usd", []string{"ethereum"})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "expired entry should fall through to the inner repository")
}

// TestCachingMarketRepository_Invalidate_Live はInvalidateが対象通貨の
// キャッシュのみを削除し、他通貨のキャッシュを残すことを検証します。
func TestCachingMarketRepository_Invalidate_Live(t *testing.T) {
	client, _ := setupTestRedis(t)

	inner := &countingMarketRepository{
		tickers: []entity.MarketTicker{
			{Code: "BTC", ProviderID: "bitcoin", Price: decimal.NewFromInt(50000)},
		},
	}
	repo := NewCachingMarketRepository(client, 30*time.Second, inner, "markets")

	ctx := context.Background()

	// Populate cache entries for two currencies and two coin sets
	_, err := repo.GetMarkets(ctx, "usd", []string{"bitcoin"})
	require.NoError(t, err)
	_, err = repo.GetMarkets(ctx, "usd", []string{"bitcoin", "ethereum"})
	require.NoError(t, err)
	_, err = repo.GetMarkets(ctx, "eur", []string{"bitcoin"})
	require.NoError(t, err)
	require.Equal(t, 3, inner.calls)

	require.NoError(t, repo.Invalidate(ctx, "usd"))

	// usd entries are gone, the next usd fetch reaches the upstream again
	_, err = repo.GetMarkets(ctx, "usd", []string{"bitcoin"})
	require.NoError(t, err)
	assert.Equal(t, 4, inner.calls)

	// eur entry survived
	_, err = repo.GetMarkets(ctx, "eur", []string{"bitcoin"})
	require.NoError(t, err)
	assert.Equal(t, 4, inner.calls, "eur cache entry should survive a usd invalidation")
}
