// Package entity defines the domain models for the marketdata feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketTicker is one row of a REST market snapshot: the current market
// data for a single coin as reported by the upstream provider.
type MarketTicker struct {
	// Code is the portfolio ticker code (e.g. "BTC"). Filled from the
	// provider symbol and corrected against the coin catalog.
	Code string

	// ProviderID is the provider-side coin identifier (e.g. "bitcoin").
	ProviderID string

	// Price is the current price in the requested quote currency.
	Price decimal.Decimal

	// MarketCap is the reported market capitalization. Zero when the
	// provider omits it.
	MarketCap decimal.Decimal

	// Change24hPct is the 24h price change in percent. Zero when the
	// provider omits it.
	Change24hPct decimal.Decimal

	// LastUpdated is the provider-side timestamp of this row. Zero when
	// the provider omits it; callers fall back to the fetch receipt time.
	LastUpdated time.Time
}
