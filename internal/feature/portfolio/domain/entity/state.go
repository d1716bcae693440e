package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding pairs a held asset with its latest accepted quote and the
// values derived from the two.
type Holding struct {
	Asset Asset

	// Quote is the latest accepted observation for the symbol, or nil
	// while the symbol is still unpriced.
	Quote *PriceQuote

	// MarketValue is Quantity × Quote.Price. Zero while unpriced.
	MarketValue decimal.Decimal

	// GainLoss is MarketValue minus the position cost. Zero while unpriced.
	GainLoss decimal.Decimal

	// GainLossPct is GainLoss relative to the position cost, in percent.
	GainLossPct decimal.Decimal
}

// NewHolding derives a Holding from an asset and its latest accepted
// quote. Derived values are computed here and nowhere else, so they can
// never diverge from the inputs they are derived from. While the symbol
// is unpriced (q == nil) the derived values stay zero.
func NewHolding(a Asset, q *PriceQuote) Holding {
	h := Holding{Asset: a}
	if q == nil {
		return h
	}
	quote := *q
	h.Quote = &quote
	cost := a.Cost()
	h.MarketValue = quote.Price.Mul(a.Quantity)
	h.GainLoss = h.MarketValue.Sub(cost)
	if cost.IsPositive() {
		h.GainLossPct = h.GainLoss.Div(cost).Mul(decimal.NewFromInt(100))
	}
	return h
}

// Priced reports whether the holding has an accepted quote.
func (h Holding) Priced() bool {
	return h.Quote != nil
}

// PortfolioState is an immutable snapshot of the whole portfolio at one
// point in time. Readers receive a deep copy and may keep or mutate it
// freely without affecting the live portfolio.
type PortfolioState struct {
	// Currency is the quote currency every monetary value is expressed in.
	Currency string

	// Holdings lists all positions sorted by symbol.
	Holdings []Holding

	// TotalValue is the sum of all holding market values. Unpriced
	// holdings contribute zero.
	TotalValue decimal.Decimal

	// TotalCost is the sum of all position costs, priced or not.
	TotalCost decimal.Decimal

	// TotalGainLoss is the sum of per-holding gains. Unpriced holdings
	// are excluded, so this can differ from TotalValue − TotalCost while
	// quotes are still missing.
	TotalGainLoss decimal.Decimal

	// UpdatedAt is when the portfolio last changed.
	UpdatedAt time.Time
}

// Symbols returns the held symbols in sorted order. This is the exact
// set of symbols the live stream subscription must cover.
func (s PortfolioState) Symbols() []string {
	out := make([]string, 0, len(s.Holdings))
	for _, h := range s.Holdings {
		out = append(out, h.Asset.Symbol)
	}
	return out
}
