// Package entity defines the domain models for the history feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one observation in a coin's price history, recorded from
// market snapshots and accepted quotes and served as chart data.
type PricePoint struct {
	Symbol     string          // Portfolio ticker code (e.g. "BTC")
	Price      decimal.Decimal // Observed price in the portfolio currency
	MarketCap  decimal.Decimal // Market capitalization; zero for stream observations
	ChangePct  decimal.Decimal // 24h price change in percent; zero for stream observations
	Source     string          // Where the observation came from ("snapshot" or "stream")
	ObservedAt time.Time       // Provider-side observation timestamp
}
