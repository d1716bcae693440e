package usecase

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

// TestReconciler_Accept は観測時刻ベースの受理判定をテストします。
func TestReconciler_Accept(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	quoteAt := func(ts time.Time, source entity.QuoteSource) entity.PriceQuote {
		return entity.PriceQuote{
			Symbol:     "BTC",
			Price:      decimal.NewFromInt(50000),
			Source:     source,
			ObservedAt: ts,
		}
	}

	testCases := []struct {
		name     string
		current  *entity.PriceQuote
		incoming entity.PriceQuote
		want     bool
	}{
		{
			name:     "accept: first observation for the symbol",
			current:  nil,
			incoming: quoteAt(base, entity.SourceSnapshot),
			want:     true,
		},
		{
			name: "accept: strictly newer snapshot over stream",
			current: func() *entity.PriceQuote {
				q := quoteAt(base, entity.SourceStream)
				return &q
			}(),
			incoming: quoteAt(base.Add(time.Second), entity.SourceSnapshot),
			want:     true,
		},
		{
			name: "accept: strictly newer stream over snapshot",
			current: func() *entity.PriceQuote {
				q := quoteAt(base, entity.SourceSnapshot)
				return &q
			}(),
			incoming: quoteAt(base.Add(time.Millisecond), entity.SourceStream),
			want:     true,
		},
		{
			name: "reject: older stream tick arriving late",
			current: func() *entity.PriceQuote {
				q := quoteAt(base, entity.SourceSnapshot)
				return &q
			}(),
			incoming: quoteAt(base.Add(-time.Second), entity.SourceStream),
			want:     false,
		},
		{
			name: "reject: older snapshot arriving late",
			current: func() *entity.PriceQuote {
				q := quoteAt(base, entity.SourceStream)
				return &q
			}(),
			incoming: quoteAt(base.Add(-time.Minute), entity.SourceSnapshot),
			want:     false,
		},
		{
			name: "accept: stream wins the tie at identical timestamps",
			current: func() *entity.PriceQuote {
				q := quoteAt(base, entity.SourceSnapshot)
				return &q
			}(),
			incoming: quoteAt(base, entity.SourceStream),
			want:     true,
		},
		{
			name: "reject: snapshot loses the tie at identical timestamps",
			current: func() *entity.PriceQuote {
				q := quoteAt(base, entity.SourceStream)
				return &q
			}(),
			incoming: quoteAt(base, entity.SourceSnapshot),
			want:     false,
		},
		{
			name: "accept: duplicate stream tick at identical timestamp replaces harmlessly",
			current: func() *entity.PriceQuote {
				q := quoteAt(base, entity.SourceStream)
				return &q
			}(),
			incoming: quoteAt(base, entity.SourceStream),
			want:     true,
		},
	}

	var rec reconciler
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rec.accept(tc.current, tc.incoming); got != tc.want {
				t.Errorf("accept mismatch: got %v, want %v", got, tc.want)
			}
		})
	}
}
