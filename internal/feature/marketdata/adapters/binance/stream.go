package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/marketdata/adapters/binance/dto"
	"portfolio_backend/internal/feature/marketdata/domain/entity"
	"portfolio_backend/internal/feature/marketdata/usecase"
)

// BinanceStream はBinance WebSocketエンドポイントへの接続を確立する
// TradeStream実装です。
type BinanceStream struct {
	cfg    Config
	dialer *websocket.Dialer
}

// BinanceStreamがTradeStreamを実装していることをコンパイル時に検証します。
var _ usecase.TradeStream = (*BinanceStream)(nil)

// NewBinanceStream は指定された設定でBinanceStreamの新しいインスタンスを生成します。
func NewBinanceStream(cfg Config) *BinanceStream {
	dialer := &websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: cfg.DialTimeout,
	}
	if dialer.HandshakeTimeout <= 0 {
		dialer.HandshakeTimeout = 10 * time.Second
	}
	return &BinanceStream{cfg: cfg, dialer: dialer}
}

// Connect はストリームエンドポイントへWebSocket接続を張ります。
func (s *BinanceStream) Connect(ctx context.Context) (usecase.TradeConn, error) {
	conn, res, err := s.dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		status := 0
		if res != nil {
			status = res.StatusCode
		}
		return nil, &usecase.NetworkError{Op: "binance dial", Status: status, Err: err}
	}
	return &binanceConn{conn: conn}, nil
}

// binanceConn は確立済みのストリーム接続です。TradeConnを実装します。
type binanceConn struct {
	conn *websocket.Conn

	// gorilla/websocketは並行書き込みを許さないため、書き込みを直列化する
	writeMu sync.Mutex
	seq     int64
}

var _ usecase.TradeConn = (*binanceConn)(nil)

// Subscribe は指定ストリームシンボルのトレード配信を購読します。
func (c *binanceConn) Subscribe(symbols []string) error {
	return c.send("SUBSCRIBE", symbols)
}

// Unsubscribe は指定ストリームシンボルのトレード配信を解除します。
func (c *binanceConn) Unsubscribe(symbols []string) error {
	return c.send("UNSUBSCRIBE", symbols)
}

func (c *binanceConn) send(method string, symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}
	params := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		params = append(params, fmt.Sprintf("%s@trade", strings.ToLower(sym)))
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.seq++
	req := dto.StreamRequest{Method: method, Params: params, ID: c.seq}
	if err := c.conn.WriteJSON(req); err != nil {
		return &usecase.NetworkError{Op: "binance " + strings.ToLower(method), Err: err}
	}
	return nil
}

// ReadTick は次のトレードティックを1件返します。購読確認などの制御
// メッセージは読み飛ばし、壊れたフレームはParseErrorとして返します。
// ParseErrorの場合も接続自体は引き続き利用できます。
func (c *binanceConn) ReadTick() (entity.TradeTick, error) {
	const op = "binance trade"

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return entity.TradeTick{}, &usecase.NetworkError{Op: "binance read", Err: err}
		}

		var ev dto.TradeEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return entity.TradeTick{}, &usecase.ParseError{Op: op, Err: err}
		}
		// トレード以外のイベントと購読応答は無視する
		if ev.EventType != "trade" || ev.Symbol == "" {
			continue
		}

		price, err := decimal.NewFromString(ev.Price)
		if err != nil {
			return entity.TradeTick{}, &usecase.ParseError{Op: op, Err: fmt.Errorf("parse price %q: %w", ev.Price, err)}
		}

		tick := entity.TradeTick{
			StreamSymbol: strings.ToLower(ev.Symbol),
			Price:        price,
		}
		if ev.TradeTime > 0 {
			tick.TradeTime = time.UnixMilli(ev.TradeTime)
		}
		return tick, nil
	}
}

// Close は接続を閉じます。ブロック中のReadTickはエラーで戻ります。
func (c *binanceConn) Close() error {
	return c.conn.Close()
}
