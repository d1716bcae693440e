// Package usecase はポートフォリオの保有管理と価格反映のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
)

// DefaultEpsilon は評価額変化を通知する際のデフォルトしきい値です。
// 直近に通知した評価額との差がこれ以下の変化は購読者へ通知しません。
var DefaultEpsilon = decimal.NewFromFloat(0.01)

// SymbolCatalog は追加可能なコインのカタログ参照を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SymbolCatalog interface {
	// IsSupported は指定コードのコインが有効として登録されているかを返します。
	IsSupported(ctx context.Context, code string) (bool, error)
}

// position は保有資産と最新の受理済みクォートの組です。
type position struct {
	asset entity.Asset
	quote *entity.PriceQuote
}

// PortfolioUsecase はポートフォリオ状態の唯一の所有者です。
// すべての変更は内部ミューテックスで直列化され、各操作は次の操作が始まる
// 前に完走します。読み取りは常にディープコピーされたスナップショットを
// 返すため、適用途中の状態が外から見えることはありません。
type PortfolioUsecase struct {
	catalog  SymbolCatalog
	notifier *StateNotifier
	rec      reconciler
	currency string
	epsilon  decimal.Decimal

	mu            sync.Mutex
	positions     map[string]*position
	updatedAt     time.Time
	lastPublished decimal.Decimal
}

// NewPortfolioUsecase はPortfolioUsecaseを生成します。
// epsilon が 0 以下の場合は DefaultEpsilon を使用します。
func NewPortfolioUsecase(catalog SymbolCatalog, notifier *StateNotifier, currency string, epsilon decimal.Decimal) *PortfolioUsecase {
	if epsilon.LessThanOrEqual(decimal.Zero) {
		epsilon = DefaultEpsilon
	}
	return &PortfolioUsecase{
		catalog:   catalog,
		notifier:  notifier,
		currency:  strings.ToUpper(currency),
		epsilon:   epsilon,
		positions: make(map[string]*position),
	}
}

// Notifier は状態変更の配信ハブを返します。
func (u *PortfolioUsecase) Notifier() *StateNotifier {
	return u.notifier
}

// AddAsset は検証済みの資産をポートフォリオへ追加し、追加後の保有情報を
// 返します。バリデーションに失敗した場合、資産は一切追加されません。
func (u *PortfolioUsecase) AddAsset(ctx context.Context, asset entity.Asset) (entity.Holding, error) {
	asset.Symbol = normalizeSymbol(asset.Symbol)
	if asset.Symbol == "" {
		return entity.Holding{}, &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if !asset.Quantity.IsPositive() {
		return entity.Holding{}, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if !asset.CostBasis.IsPositive() {
		return entity.Holding{}, &ValidationError{Field: "purchase_price", Reason: "must be positive"}
	}
	if asset.AcquiredAt.IsZero() {
		return entity.Holding{}, &ValidationError{Field: "purchase_date", Reason: "must not be empty"}
	}
	if asset.AcquiredAt.After(time.Now()) {
		return entity.Holding{}, &ValidationError{Field: "purchase_date", Reason: "must not be in the future"}
	}

	// カタログ参照はDBアクセスを伴うためロックの外で行う
	ok, err := u.catalog.IsSupported(ctx, asset.Symbol)
	if err != nil {
		return entity.Holding{}, fmt.Errorf("check symbol %s: %w", asset.Symbol, err)
	}
	if !ok {
		return entity.Holding{}, &ValidationError{Field: "symbol", Reason: "unsupported symbol"}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if _, exists := u.positions[asset.Symbol]; exists {
		return entity.Holding{}, ErrAssetAlreadyHeld
	}
	u.positions[asset.Symbol] = &position{asset: asset}
	u.touchLocked()
	u.publishLocked(u.buildStateLocked())
	return entity.NewHolding(asset, nil), nil
}

// UpdateQuantity は保有数量を変更し、変更後の保有情報を返します。
// 数量 0 は資産の削除を意味し、ゼロ値の保有情報を返します。
func (u *PortfolioUsecase) UpdateQuantity(ctx context.Context, symbol string, quantity decimal.Decimal) (entity.Holding, error) {
	symbol = normalizeSymbol(symbol)
	if quantity.IsNegative() {
		return entity.Holding{}, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	pos, exists := u.positions[symbol]
	if !exists {
		return entity.Holding{}, ErrAssetNotFound
	}
	if quantity.IsZero() {
		delete(u.positions, symbol)
		u.touchLocked()
		u.publishLocked(u.buildStateLocked())
		return entity.Holding{}, nil
	}
	pos.asset.Quantity = quantity
	u.touchLocked()
	u.publishLocked(u.buildStateLocked())
	return entity.NewHolding(pos.asset, pos.quote), nil
}

// RemoveAsset は指定銘柄をポートフォリオから取り除きます。
// 存在しない銘柄の削除は何もせず成功します（冪等）。
func (u *PortfolioUsecase) RemoveAsset(ctx context.Context, symbol string) error {
	symbol = normalizeSymbol(symbol)

	u.mu.Lock()
	defer u.mu.Unlock()
	if _, exists := u.positions[symbol]; !exists {
		return nil
	}
	delete(u.positions, symbol)
	u.touchLocked()
	u.publishLocked(u.buildStateLocked())
	return nil
}

// ApplyQuote は1件の価格観測を反映し、受理したかどうかを返します。
// 保有していない銘柄の観測、および保持中より新しくない観測は破棄します。
func (u *PortfolioUsecase) ApplyQuote(ctx context.Context, quote entity.PriceQuote) (bool, error) {
	quote.Symbol = normalizeSymbol(quote.Symbol)
	if !quote.Price.IsPositive() {
		return false, nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.applyQuoteLocked(quote) {
		return false, nil
	}
	u.touchLocked()
	u.publishIfChangedLocked(u.buildStateLocked())
	return true, nil
}

// ApplyQuotes はスナップショット由来の観測をまとめて反映し、受理件数を
// 返します。バッチ全体が1回のロックの下で適用されるため、途中状態が
// 読み取りに観測されることはありません。
func (u *PortfolioUsecase) ApplyQuotes(ctx context.Context, quotes []entity.PriceQuote) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	accepted := 0
	for _, q := range quotes {
		q.Symbol = normalizeSymbol(q.Symbol)
		if !q.Price.IsPositive() {
			continue
		}
		if u.applyQuoteLocked(q) {
			accepted++
		}
	}
	if accepted > 0 {
		u.touchLocked()
		u.publishIfChangedLocked(u.buildStateLocked())
	}
	return accepted, nil
}

// State は現在のポートフォリオのスナップショットを返します。
func (u *PortfolioUsecase) State() entity.PortfolioState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.buildStateLocked()
}

func (u *PortfolioUsecase) applyQuoteLocked(quote entity.PriceQuote) bool {
	pos, held := u.positions[quote.Symbol]
	if !held {
		return false
	}
	if !u.rec.accept(pos.quote, quote) {
		return false
	}
	pos.quote = &quote
	return true
}

// buildStateLocked は保有一覧から派生値を計算し、スナップショットを
// 組み立てます。派生値はここで毎回計算し、独立して保存しません。
func (u *PortfolioUsecase) buildStateLocked() entity.PortfolioState {
	symbols := make([]string, 0, len(u.positions))
	for s := range u.positions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	state := entity.PortfolioState{
		Currency:  u.currency,
		Holdings:  make([]entity.Holding, 0, len(symbols)),
		UpdatedAt: u.updatedAt,
	}
	for _, s := range symbols {
		pos := u.positions[s]
		h := entity.NewHolding(pos.asset, pos.quote)
		state.Holdings = append(state.Holdings, h)
		state.TotalValue = state.TotalValue.Add(h.MarketValue)
		state.TotalCost = state.TotalCost.Add(h.Asset.Cost())
		state.TotalGainLoss = state.TotalGainLoss.Add(h.GainLoss)
	}
	return state
}

// publishLocked は保有構成の変更を無条件に配信予約します。
func (u *PortfolioUsecase) publishLocked(state entity.PortfolioState) {
	u.lastPublished = state.TotalValue
	u.notifier.Publish(state)
}

// publishIfChangedLocked は評価額が直近の通知からしきい値を超えて動いた
// 場合のみ配信予約します。微小なティックで購読者を起こさないためです。
func (u *PortfolioUsecase) publishIfChangedLocked(state entity.PortfolioState) {
	if state.TotalValue.Sub(u.lastPublished).Abs().LessThanOrEqual(u.epsilon) {
		return
	}
	u.publishLocked(state)
}

func (u *PortfolioUsecase) touchLocked() {
	u.updatedAt = time.Now()
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
