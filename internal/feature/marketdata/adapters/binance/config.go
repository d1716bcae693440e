// Package binance はBinance WebSocketトレードストリームのクライアントを提供します。
package binance

import (
	"os"
	"time"
)

// DefaultWSURL は公開Binanceストリームのエンドポイントです。
const DefaultWSURL = "wss://stream.binance.com:9443/ws"

// Config はBinanceストリームクライアントの設定を保持します。
type Config struct {
	URL         string        // WebSocketエンドポイント
	DialTimeout time.Duration // 接続確立のタイムアウト
}

// LoadConfig は環境変数からBinanceストリームの設定を読み込みます。
func LoadConfig() Config {
	u := os.Getenv("BINANCE_WS_URL")
	if u == "" {
		u = DefaultWSURL
	}
	return Config{
		URL:         u,
		DialTimeout: 10 * time.Second,
	}
}
