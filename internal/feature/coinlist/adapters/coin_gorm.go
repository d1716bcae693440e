// Package adapters はcoinlistフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"portfolio_backend/internal/feature/coinlist/domain/entity"
	"portfolio_backend/internal/feature/coinlist/usecase"
)

// coinGorm はCoinRepositoryインターフェースのGORM実装です。
type coinGorm struct {
	db *gorm.DB
}

var _ usecase.CoinRepository = (*coinGorm)(nil)

// NewCoinRepository は指定されたDB接続でcoinGormリポジトリの新しいインスタンスを生成します。
func NewCoinRepository(db *gorm.DB) *coinGorm {
	return &coinGorm{db: db}
}

// ListActive はsort_key順にすべてのアクティブなコインを返します。
func (r *coinGorm) ListActive(ctx context.Context) ([]entity.Coin, error) {
	var coins []entity.Coin
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_key ASC").
		Find(&coins).Error; err != nil {
		return nil, err
	}
	return coins, nil
}

// FindByCode はティッカーコードでコインを取得します。
// コインが存在しない場合、usecase.ErrCoinNotFoundを返します。
func (r *coinGorm) FindByCode(ctx context.Context, code string) (*entity.Coin, error) {
	var coin entity.Coin
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(code)).
		First(&coin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCoinNotFound
		}
		return nil, err
	}
	return &coin, nil
}

// defaultCoins は初回起動時にカタログへ投入されるコインの一覧です。
var defaultCoins = []entity.Coin{
	{Code: "BTC", Name: "Bitcoin", CoinGeckoID: "bitcoin", StreamSymbol: "btcusdt", IsActive: true, SortKey: 1},
	{Code: "ETH", Name: "Ethereum", CoinGeckoID: "ethereum", StreamSymbol: "ethusdt", IsActive: true, SortKey: 2},
	{Code: "SOL", Name: "Solana", CoinGeckoID: "solana", StreamSymbol: "solusdt", IsActive: true, SortKey: 3},
	{Code: "XRP", Name: "XRP", CoinGeckoID: "ripple", StreamSymbol: "xrpusdt", IsActive: true, SortKey: 4},
	{Code: "ADA", Name: "Cardano", CoinGeckoID: "cardano", StreamSymbol: "adausdt", IsActive: true, SortKey: 5},
	{Code: "DOGE", Name: "Dogecoin", CoinGeckoID: "dogecoin", StreamSymbol: "dogeusdt", IsActive: true, SortKey: 6},
	{Code: "DOT", Name: "Polkadot", CoinGeckoID: "polkadot", StreamSymbol: "dotusdt", IsActive: true, SortKey: 7},
	{Code: "LINK", Name: "Chainlink", CoinGeckoID: "chainlink", StreamSymbol: "linkusdt", IsActive: true, SortKey: 8},
	{Code: "AVAX", Name: "Avalanche", CoinGeckoID: "avalanche-2", StreamSymbol: "avaxusdt", IsActive: true, SortKey: 9},
	{Code: "LTC", Name: "Litecoin", CoinGeckoID: "litecoin", StreamSymbol: "ltcusdt", IsActive: true, SortKey: 10},
}

// SeedDefaultCoins はカタログが空の場合にデフォルトのコイン一覧を投入します。
// 既にデータがある場合は何もしません。
func SeedDefaultCoins(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&entity.Coin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	// パッケージ変数にIDが書き戻されないようコピーを挿入する
	coins := make([]entity.Coin, len(defaultCoins))
	copy(coins, defaultCoins)
	return db.WithContext(ctx).Create(&coins).Error
}
