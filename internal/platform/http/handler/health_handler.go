// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/feature/marketdata/usecase"
)

// StreamStatusProvider は価格ストリームの診断情報を返します。
type StreamStatusProvider func() usecase.StreamStatus

// HeldCountProvider は現在保有中の資産数を返します。
type HeldCountProvider func() int

// Health はサービスヘルスチェック用の /healthz ハンドラーを生成します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
// GETではlivenessに加えてフィード診断（ストリーム状態、不正フレーム数、
// 保有資産数）を返します。providerがnilの場合は該当フィールドを省略します。
func Health(streamStatus StreamStatusProvider, heldCount HeldCountProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		// すべてのGET/HEAD/OPTIONSリクエストに対して200または204を返す
		switch c.Request.Method {
		case "HEAD":
			c.Status(200)
		case "OPTIONS":
			c.Status(204)
		default:
			body := gin.H{"status": "ok"}
			if streamStatus != nil {
				body["stream"] = streamStatus()
			}
			if heldCount != nil {
				body["held_assets"] = heldCount()
			}
			c.JSON(200, body)
		}
	}
}
