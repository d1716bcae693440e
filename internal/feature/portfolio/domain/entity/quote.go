package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteSource identifies which pipeline produced a price observation.
type QuoteSource string

const (
	// SourceSnapshot marks quotes taken from the periodic REST market snapshot.
	SourceSnapshot QuoteSource = "snapshot"
	// SourceStream marks quotes taken from the live trade stream.
	SourceStream QuoteSource = "stream"
)

// PriceQuote is a single price observation for a symbol. Quotes are
// replaced wholesale when a newer observation is accepted; fields from
// different observations are never merged.
type PriceQuote struct {
	// Symbol is the uppercase ticker code the observation refers to.
	Symbol string

	// Price is the observed price per unit in the portfolio currency.
	Price decimal.Decimal

	// Source records which pipeline delivered the observation.
	Source QuoteSource

	// ObservedAt is when the observation was made upstream, not when it
	// arrived here. Conflicts between sources are resolved on this field.
	ObservedAt time.Time
}
