// Package entity defines the domain models for the portfolio feature.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset represents a single cryptocurrency position held in the portfolio.
// All fields are required and validated before the asset is admitted; an
// asset is never partially constructed and is mutated only through
// quantity edits.
type Asset struct {
	// Symbol is the uppercase ticker code (e.g. "BTC"), unique within the portfolio.
	Symbol string

	// Quantity is the number of units held. Always positive; editing it to
	// zero removes the asset.
	Quantity decimal.Decimal

	// CostBasis is the purchase price per unit in the portfolio currency.
	CostBasis decimal.Decimal

	// AcquiredAt is the purchase date. Never in the future.
	AcquiredAt time.Time
}

// Cost returns the total amount paid for the position.
func (a Asset) Cost() decimal.Decimal {
	return a.CostBasis.Mul(a.Quantity)
}
