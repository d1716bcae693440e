// Package coingecko はCoinGecko暗号資産市場APIのクライアントを提供します。
package coingecko

import (
	"os"
	"time"
)

// DefaultBaseURL は公開CoinGecko APIのベースURLです。
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Config はCoinGecko APIクライアントの設定を保持します。
type Config struct {
	APIKey  string        // デモAPIキー（任意、未設定なら匿名アクセス）
	BaseURL string        // APIのベースURL（例: "https://api.coingecko.com/api/v3"）
	Timeout time.Duration // HTTPリクエストタイムアウト
}

// LoadConfig は環境変数からCoinGeckoの設定を読み込みます。
func LoadConfig() Config {
	base := os.Getenv("COINGECKO_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{
		APIKey:  os.Getenv("COINGECKO_API_KEY"),
		BaseURL: base,
		Timeout: 10 * time.Second,
	}
}
