package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"portfolio_backend/internal/feature/marketdata/domain/entity"
	portfolio "portfolio_backend/internal/feature/portfolio/domain/entity"
)

// ストリーム接続のライフサイクル状態。
const (
	// StreamDisconnected は未起動または停止済みの状態です。
	StreamDisconnected = "disconnected"
	// StreamConnecting は接続確立を試行中の状態です。
	StreamConnecting = "connecting"
	// StreamSubscribed は接続済みで購読が有効な状態です。
	StreamSubscribed = "subscribed"
	// StreamDegraded は接続が切れ、再接続待ちの状態です。
	// スナップショット経路は引き続き価格を供給します。
	StreamDegraded = "degraded"
)

// TradeStream はトレードストリームへの接続手段を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type TradeStream interface {
	Connect(ctx context.Context) (TradeConn, error)
}

// TradeConn は確立済みのストリーム接続です。
type TradeConn interface {
	Subscribe(symbols []string) error
	Unsubscribe(symbols []string) error
	ReadTick() (entity.TradeTick, error)
	Close() error
}

// StreamCatalog は銘柄コードとストリームシンボルの対応を引きます。
type StreamCatalog interface {
	StreamSymbols(ctx context.Context, codes []string) (map[string]string, error)
}

// QuoteSink はストリーム由来のクォートを1件ずつ反映します。
type QuoteSink interface {
	ApplyQuote(ctx context.Context, quote portfolio.PriceQuote) (bool, error)
}

// StateFeed は保有構成の変更通知を購読するためのインターフェースです。
type StateFeed interface {
	Subscribe(fn func(portfolio.PortfolioState)) func()
}

// Backoff は再接続の待機時間を生成します。
type Backoff interface {
	Next() time.Duration
	Reset()
}

// StreamStatus はヘルスチェックへ公開するストリームの診断情報です。
type StreamStatus struct {
	State          string    `json:"state"`
	Symbols        []string  `json:"symbols"`
	LastTickAt     time.Time `json:"last_tick_at"`
	MalformedCount int64     `json:"malformed_count"`
	Reconnects     int64     `json:"reconnects"`
}

// StreamUsecase はトレードストリームの接続・購読・ティック反映を担います。
// 接続が切れても指数バックオフで再接続し続け、保有構成が変わるたびに
// 購読セットを保有銘柄と一致させます。
type StreamUsecase struct {
	stream  TradeStream
	catalog StreamCatalog
	pf      PortfolioReader
	sink    QuoteSink
	feed    StateFeed
	backoff Backoff

	mu            sync.Mutex
	conn          TradeConn
	state         string
	subscribed    map[string]string // 小文字ストリームシンボル → 銘柄コード
	lastTickAt    time.Time
	malformed     int64
	reconnects    int64
	everConnected bool
	runCtx        context.Context
}

// NewStreamUsecase はStreamUsecaseを生成します。
func NewStreamUsecase(
	stream TradeStream,
	catalog StreamCatalog,
	pf PortfolioReader,
	sink QuoteSink,
	feed StateFeed,
	backoff Backoff,
) *StreamUsecase {
	return &StreamUsecase{
		stream:  stream,
		catalog: catalog,
		pf:      pf,
		sink:    sink,
		feed:    feed,
		backoff: backoff,
		state:   StreamDisconnected,
	}
}

// Run はctxが取り消されるまでストリームを維持します。接続断は回数無制限の
// 指数バックオフで再試行し、接続に成功したらバックオフをリセットします。
func (u *StreamUsecase) Run(ctx context.Context) {
	u.mu.Lock()
	u.runCtx = ctx
	u.mu.Unlock()

	unsubscribe := u.feed.Subscribe(u.onPortfolioChange)
	defer unsubscribe()

	for {
		if err := u.runSession(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("stream session ended", "error", err)
		}
		u.setState(StreamDegraded)

		select {
		case <-ctx.Done():
			u.setState(StreamDisconnected)
			return
		case <-time.After(u.backoff.Next()):
		}
	}
}

// Status は現在のストリーム診断情報を返します。
func (u *StreamUsecase) Status() StreamStatus {
	u.mu.Lock()
	defer u.mu.Unlock()

	symbols := make([]string, 0, len(u.subscribed))
	for sym := range u.subscribed {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	return StreamStatus{
		State:          u.state,
		Symbols:        symbols,
		LastTickAt:     u.lastTickAt,
		MalformedCount: u.malformed,
		Reconnects:     u.reconnects,
	}
}

// runSession は1本の接続のライフサイクル（接続→購読→読み取りループ）を
// 実行し、接続が使えなくなった時点で戻ります。
func (u *StreamUsecase) runSession(ctx context.Context) error {
	u.setState(StreamConnecting)
	conn, err := u.stream.Connect(ctx)
	if err != nil {
		return err
	}

	// ctx取り消しでブロック中のReadTickを解除する
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()
	defer close(done)
	defer func() {
		_ = conn.Close()
		u.mu.Lock()
		u.conn = nil
		u.subscribed = nil
		u.mu.Unlock()
	}()

	u.backoff.Reset()
	u.mu.Lock()
	if u.everConnected {
		u.reconnects++
	}
	u.everConnected = true
	u.conn = conn
	u.subscribed = map[string]string{}
	u.mu.Unlock()

	// 現在の保有構成で購読を張る。以後の構成変更は通知経由で差分更新される。
	if err := u.syncSubscriptions(ctx, u.pf.State()); err != nil {
		return err
	}
	u.setState(StreamSubscribed)

	for {
		tick, err := conn.ReadTick()
		if err != nil {
			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				u.mu.Lock()
				u.malformed++
				u.mu.Unlock()
				slog.Warn("dropped malformed stream message", "error", parseErr)
				continue
			}
			return err
		}
		u.handleTick(ctx, tick)
	}
}

// syncSubscriptions は購読セットを指定状態の保有銘柄と一致させます。
// 差分の計算と送信は1つのミューテックスの下で直列化されるため、接続直後の
// 全購読と通知経由の差分更新が入り乱れても最後に適用された状態に収束します。
func (u *StreamUsecase) syncSubscriptions(ctx context.Context, state portfolio.PortfolioState) error {
	mapping, err := u.catalog.StreamSymbols(ctx, state.Symbols())
	if err != nil {
		return fmt.Errorf("resolve stream symbols: %w", err)
	}
	required := make(map[string]string, len(mapping))
	for code, sym := range mapping {
		// ティックのシンボルは小文字で届くため、カタログの表記に
		// 関わらず照合キーを小文字に揃える
		required[strings.ToLower(sym)] = code
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn == nil {
		// 未接続の間は何もしない。次の接続時に最新の構成で購読される。
		return nil
	}

	var added, removed []string
	for sym := range required {
		if _, ok := u.subscribed[sym]; !ok {
			added = append(added, sym)
		}
	}
	for sym := range u.subscribed {
		if _, ok := required[sym]; !ok {
			removed = append(removed, sym)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)

	if len(added) > 0 {
		if err := u.conn.Subscribe(added); err != nil {
			return fmt.Errorf("subscribe %v: %w", added, err)
		}
	}
	if len(removed) > 0 {
		if err := u.conn.Unsubscribe(removed); err != nil {
			return fmt.Errorf("unsubscribe %v: %w", removed, err)
		}
	}
	u.subscribed = required
	return nil
}

// onPortfolioChange は保有構成の変更通知を受けて購読セットを更新します。
func (u *StreamUsecase) onPortfolioChange(state portfolio.PortfolioState) {
	u.mu.Lock()
	ctx := u.runCtx
	u.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := u.syncSubscriptions(ctx, state); err != nil {
		slog.Error("failed to sync stream subscriptions", "error", err)
	}
}

// handleTick は1件のティックをクォートへ変換してポートフォリオに流します。
// 購読解除直後に届いた残りのティックは読み捨てます。
func (u *StreamUsecase) handleTick(ctx context.Context, tick entity.TradeTick) {
	u.mu.Lock()
	u.lastTickAt = time.Now()
	code, ok := u.subscribed[tick.StreamSymbol]
	u.mu.Unlock()
	if !ok {
		return
	}

	observedAt := tick.TradeTime
	if observedAt.IsZero() {
		observedAt = time.Now()
	}
	quote := portfolio.PriceQuote{
		Symbol:     code,
		Price:      tick.Price,
		Source:     portfolio.SourceStream,
		ObservedAt: observedAt,
	}
	if _, err := u.sink.ApplyQuote(ctx, quote); err != nil {
		slog.Error("failed to apply stream quote", "error", err, "symbol", code)
	}
}

func (u *StreamUsecase) setState(state string) {
	u.mu.Lock()
	u.state = state
	u.mu.Unlock()
}
