// Package dto はCoinGecko APIレスポンスのデータ転送オブジェクトを定義します。
package dto

import "github.com/shopspring/decimal"

// MarketRow は/coins/marketsエンドポイントのレスポンス配列の1要素を表します。
// 上場廃止間近のコインでは数値フィールドがnullになることがあるため、
// NullDecimalで受けます。
type MarketRow struct {
	ID                       string              `json:"id"`
	Symbol                   string              `json:"symbol"`
	Name                     string              `json:"name"`
	CurrentPrice             decimal.NullDecimal `json:"current_price"`
	MarketCap                decimal.NullDecimal `json:"market_cap"`
	PriceChangePercentage24h decimal.NullDecimal `json:"price_change_percentage_24h"`
	LastUpdated              string              `json:"last_updated"`
}
