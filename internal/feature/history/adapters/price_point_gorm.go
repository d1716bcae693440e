package adapters

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio_backend/internal/feature/history/domain/entity"
	"portfolio_backend/internal/feature/history/usecase"
)

type pricePointGorm struct {
	db *gorm.DB
}

// pricePointGormがPricePointRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.PricePointRepository = (*pricePointGorm)(nil)

// NewPricePointRepository は価格履歴のGORMリポジトリを生成します。
func NewPricePointRepository(db *gorm.DB) *pricePointGorm {
	return &pricePointGorm{db: db}
}

// PricePointModel は価格履歴のGORMモデルです。
type PricePointModel struct {
	ID         uint      `gorm:"primaryKey"`
	Symbol     string    `gorm:"size:20;not null;uniqueIndex:point_sym_time,priority:1"`
	ObservedAt time.Time `gorm:"not null;uniqueIndex:point_sym_time,priority:2"`

	Price     decimal.Decimal `gorm:"type:decimal(32,18);not null"`
	MarketCap decimal.Decimal `gorm:"type:decimal(38,8)"`
	ChangePct decimal.Decimal `gorm:"type:decimal(16,8)"`
	Source    string          `gorm:"size:16;not null"`
}

func (PricePointModel) TableName() string {
	return "price_points"
}

func toModel(e entity.PricePoint) PricePointModel {
	return PricePointModel{
		Symbol:     e.Symbol,
		ObservedAt: e.ObservedAt,
		Price:      e.Price,
		MarketCap:  e.MarketCap,
		ChangePct:  e.ChangePct,
		Source:     e.Source,
	}
}

// UpsertBatch は価格履歴を一括で挿入します。同一の（銘柄, 観測時刻）が
// 既にある場合は値を更新し、行を重複させません。
func (r *pricePointGorm) UpsertBatch(ctx context.Context, points []entity.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	ms := make([]PricePointModel, 0, len(points))
	for _, e := range points {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "observed_at"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "market_cap", "change_pct", "source"}),
	}).Create(&ms).Error
}

// FindBySymbol は指定銘柄の価格履歴を観測時刻の新しい順で返します。
func (r *pricePointGorm) FindBySymbol(ctx context.Context, symbol string, limit int) ([]entity.PricePoint, error) {
	var rows []PricePointModel
	q := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("observed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.PricePoint, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.PricePoint{
			Symbol:     m.Symbol,
			Price:      m.Price,
			MarketCap:  m.MarketCap,
			ChangePct:  m.ChangePct,
			Source:     m.Source,
			ObservedAt: m.ObservedAt,
		})
	}
	return out, nil
}
