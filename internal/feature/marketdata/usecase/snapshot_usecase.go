// Package usecase は市場データの取得とポートフォリオへの反映のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"portfolio_backend/internal/feature/marketdata/domain/entity"
	portfolio "portfolio_backend/internal/feature/portfolio/domain/entity"
)

// DefaultSnapshotInterval は定期スナップショット取得のデフォルト間隔です。
const DefaultSnapshotInterval = 60 * time.Second

// MarketRepository は市場スナップショットの取得元を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketRepository interface {
	GetMarkets(ctx context.Context, vsCurrency string, ids []string) ([]entity.MarketTicker, error)
}

// CoinCatalog はポートフォリオの銘柄コードとプロバイダIDの対応を引きます。
type CoinCatalog interface {
	MarketIDs(ctx context.Context, codes []string) (map[string]string, error)
	ActiveMarketIDs(ctx context.Context) (map[string]string, error)
}

// PortfolioReader は現在の保有スナップショットを公開します。
type PortfolioReader interface {
	State() portfolio.PortfolioState
}

// QuoteBatchSink はスナップショット由来のクォートをまとめて反映します。
type QuoteBatchSink interface {
	ApplyQuotes(ctx context.Context, quotes []portfolio.PriceQuote) (int, error)
}

// SnapshotRecorder は取得したスナップショットをチャート用に永続化します。
type SnapshotRecorder interface {
	RecordSnapshot(ctx context.Context, tickers []entity.MarketTicker) error
}

// SnapshotInvalidator はスナップショットのキャッシュを破棄します。
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, vsCurrency string) error
}

// RateLimiterInterface はレートリミッターのインターフェースです。
type RateLimiterInterface interface {
	WaitIfNeeded()
}

// SnapshotUsecase はRESTスナップショットの取得・変換・反映を担います。
// 保有銘柄をカタログでプロバイダIDに解決し、取得結果をクォートへ変換して
// ポートフォリオに流し込みます。
type SnapshotUsecase struct {
	market   MarketRepository
	catalog  CoinCatalog
	pf       PortfolioReader
	sink     QuoteBatchSink
	recorder SnapshotRecorder
	cache    SnapshotInvalidator
	rl       RateLimiterInterface
	currency string
}

// NewSnapshotUsecase はSnapshotUsecaseを生成します。
// recorderとcacheはnil可で、履歴の記録とキャッシュの破棄をそれぞれスキップします。
func NewSnapshotUsecase(
	market MarketRepository,
	catalog CoinCatalog,
	pf PortfolioReader,
	sink QuoteBatchSink,
	recorder SnapshotRecorder,
	cache SnapshotInvalidator,
	rl RateLimiterInterface,
	currency string,
) *SnapshotUsecase {
	return &SnapshotUsecase{
		market:   market,
		catalog:  catalog,
		pf:       pf,
		sink:     sink,
		recorder: recorder,
		cache:    cache,
		rl:       rl,
		currency: currency,
	}
}

// FetchAndApply は保有銘柄の市場スナップショットを1回取得して反映し、
// 受理されたクォート数を返します。保有が空の場合は何もしません。
func (u *SnapshotUsecase) FetchAndApply(ctx context.Context) (int, error) {
	held := u.pf.State().Symbols()
	if len(held) == 0 {
		return 0, nil
	}

	idByCode, err := u.catalog.MarketIDs(ctx, held)
	if err != nil {
		return 0, fmt.Errorf("resolve market ids: %w", err)
	}
	if len(idByCode) == 0 {
		return 0, nil
	}

	tickers, receivedAt, err := u.fetch(ctx, idByCode)
	if err != nil {
		return 0, err
	}

	// 履歴の記録失敗は価格反映を止めない
	if u.recorder != nil && len(tickers) > 0 {
		if err := u.recorder.RecordSnapshot(ctx, tickers); err != nil {
			slog.Error("failed to record snapshot history", "error", err)
		}
	}

	quotes := toQuotes(tickers, receivedAt)
	applied, err := u.sink.ApplyQuotes(ctx, quotes)
	if err != nil {
		return 0, fmt.Errorf("apply snapshot quotes: %w", err)
	}
	return applied, nil
}

// Refresh はキャッシュを破棄してからスナップショットを取得し直します。
// 手動リフレッシュで確実に上流へ問い合わせるための入口です。
func (u *SnapshotUsecase) Refresh(ctx context.Context) (int, error) {
	if u.cache != nil {
		if err := u.cache.Invalidate(ctx, u.currency); err != nil {
			slog.Warn("failed to invalidate snapshot cache", "error", err)
		}
	}
	return u.FetchAndApply(ctx)
}

// BackfillCatalog はカタログ上の全アクティブコインのスナップショットを
// 取得して履歴に記録し、記録した行数を返します。保有状況には影響しません。
func (u *SnapshotUsecase) BackfillCatalog(ctx context.Context) (int, error) {
	if u.recorder == nil {
		return 0, fmt.Errorf("no snapshot recorder configured")
	}

	idByCode, err := u.catalog.ActiveMarketIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve market ids: %w", err)
	}
	if len(idByCode) == 0 {
		return 0, nil
	}

	tickers, _, err := u.fetch(ctx, idByCode)
	if err != nil {
		return 0, err
	}
	if len(tickers) == 0 {
		return 0, nil
	}
	if err := u.recorder.RecordSnapshot(ctx, tickers); err != nil {
		return 0, fmt.Errorf("record snapshot history: %w", err)
	}
	return len(tickers), nil
}

// RunPeriodic は停止されるまで一定間隔でスナップショットを取得し続けます。
// 個々のサイクルの失敗はログに残して次のサイクルへ進みます。
func (u *SnapshotUsecase) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSnapshotInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if applied, err := u.FetchAndApply(ctx); err != nil {
			slog.Error("snapshot fetch failed", "error", err)
		} else if applied > 0 {
			slog.Info("snapshot applied", "quotes", applied)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// fetch はIDマップの全コインを取得し、カタログ上のコードへ揃えた
// ティッカー一覧と受信時刻を返します。
func (u *SnapshotUsecase) fetch(ctx context.Context, idByCode map[string]string) ([]entity.MarketTicker, time.Time, error) {
	codeByID := make(map[string]string, len(idByCode))
	ids := make([]string, 0, len(idByCode))
	for code, id := range idByCode {
		codeByID[id] = code
		ids = append(ids, id)
	}
	// キャッシュキーが安定するようIDは常にソートして渡す
	sort.Strings(ids)

	u.rl.WaitIfNeeded()
	receivedAt := time.Now()
	tickers, err := u.market.GetMarkets(ctx, u.currency, ids)
	if err != nil {
		return nil, receivedAt, err
	}

	// プロバイダ表記よりカタログのコードを優先する
	kept := tickers[:0]
	for _, t := range tickers {
		code, ok := codeByID[t.ProviderID]
		if !ok {
			continue
		}
		t.Code = code
		kept = append(kept, t)
	}

	return kept, receivedAt, nil
}

// toQuotes はティッカー行をスナップショット由来のクォートへ変換します。
// 提供元タイムスタンプが欠落している行は受信時刻を観測時刻とします。
func toQuotes(tickers []entity.MarketTicker, receivedAt time.Time) []portfolio.PriceQuote {
	quotes := make([]portfolio.PriceQuote, 0, len(tickers))
	for _, t := range tickers {
		observedAt := t.LastUpdated
		if observedAt.IsZero() {
			observedAt = receivedAt
		}
		quotes = append(quotes, portfolio.PriceQuote{
			Symbol:     t.Code,
			Price:      t.Price,
			Source:     portfolio.SourceSnapshot,
			ObservedAt: observedAt,
		})
	}
	return quotes
}
