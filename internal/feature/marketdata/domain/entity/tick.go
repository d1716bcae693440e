package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeTick is a single trade observed on the live stream.
type TradeTick struct {
	// StreamSymbol is the provider-side pair symbol in lower case
	// (e.g. "btcusdt").
	StreamSymbol string

	// Price is the traded price.
	Price decimal.Decimal

	// TradeTime is the provider-side execution timestamp.
	TradeTime time.Time
}
