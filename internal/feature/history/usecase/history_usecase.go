// Package usecase は価格履歴の記録と照会のビジネスロジックを実装します。
package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"portfolio_backend/internal/feature/history/domain/entity"
	marketdata "portfolio_backend/internal/feature/marketdata/domain/entity"
	portfolio "portfolio_backend/internal/feature/portfolio/domain/entity"
)

const (
	// DefaultSeriesLimit はチャート系列のデフォルト返却件数です。
	DefaultSeriesLimit = 200
	// MaxSeriesLimit はチャート系列の最大返却件数です。
	MaxSeriesLimit = 5000
)

// PricePointRepository は価格履歴の永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PricePointRepository interface {
	// UpsertBatch は価格履歴を一括で挿入または更新します。
	UpsertBatch(ctx context.Context, points []entity.PricePoint) error
	// FindBySymbol は指定銘柄の価格履歴を新しい順で検索します。
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]entity.PricePoint, error)
}

// HistoryUsecase は価格履歴の記録と照会を担います。
type HistoryUsecase struct {
	points PricePointRepository
}

// NewHistoryUsecase はHistoryUsecaseの新しいインスタンスを生成します。
func NewHistoryUsecase(points PricePointRepository) *HistoryUsecase {
	return &HistoryUsecase{points: points}
}

// GetSeries は指定銘柄の価格履歴を新しい順で返します。
// limitが正の範囲外の場合はデフォルト値に丸めます。
func (hu *HistoryUsecase) GetSeries(ctx context.Context, symbol string, limit int) ([]entity.PricePoint, error) {
	if limit <= 0 || limit > MaxSeriesLimit {
		limit = DefaultSeriesLimit
	}
	return hu.points.FindBySymbol(ctx, strings.ToUpper(strings.TrimSpace(symbol)), limit)
}

// RecordState は公開されたポートフォリオ状態から、価格付き保有1件につき
// 1点を記録します。変更通知のコールバックとして購読される前提のため、
// 記録の失敗はログに残すだけで呼び出し元へは伝播しません。
func (hu *HistoryUsecase) RecordState(state portfolio.PortfolioState) {
	points := make([]entity.PricePoint, 0, len(state.Holdings))
	for _, h := range state.Holdings {
		if !h.Priced() {
			continue
		}
		points = append(points, entity.PricePoint{
			Symbol:     h.Asset.Symbol,
			Price:      h.Quote.Price,
			Source:     string(h.Quote.Source),
			ObservedAt: h.Quote.ObservedAt,
		})
	}
	if len(points) == 0 {
		return
	}
	if err := hu.points.UpsertBatch(context.Background(), points); err != nil {
		slog.Error("failed to record price history", "error", err)
	}
}

// RecordSnapshot は市場スナップショットの行を履歴として記録します。
// 観測時刻が欠けている行は記録時刻で補います。
func (hu *HistoryUsecase) RecordSnapshot(ctx context.Context, tickers []marketdata.MarketTicker) error {
	if len(tickers) == 0 {
		return nil
	}
	now := time.Now()
	points := make([]entity.PricePoint, 0, len(tickers))
	for _, t := range tickers {
		observedAt := t.LastUpdated
		if observedAt.IsZero() {
			observedAt = now
		}
		points = append(points, entity.PricePoint{
			Symbol:     t.Code,
			Price:      t.Price,
			MarketCap:  t.MarketCap,
			ChangePct:  t.Change24hPct,
			Source:     string(portfolio.SourceSnapshot),
			ObservedAt: observedAt,
		})
	}
	return hu.points.UpsertBatch(ctx, points)
}
