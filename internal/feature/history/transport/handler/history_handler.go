// Package handler はhistoryフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/feature/history/domain/entity"
	"portfolio_backend/internal/feature/history/transport/http/dto"
)

// HistoryUsecase は価格履歴照会のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type HistoryUsecase interface {
	GetSeries(ctx context.Context, symbol string, limit int) ([]entity.PricePoint, error)
}

// HistoryHandler は価格履歴のHTTPリクエストを処理します。
type HistoryHandler struct {
	uc HistoryUsecase
}

// NewHistoryHandler は指定されたusecaseでHistoryHandlerの新しいインスタンスを生成します。
func NewHistoryHandler(uc HistoryUsecase) *HistoryHandler {
	return &HistoryHandler{uc: uc}
}

// GetSeries は銘柄コードを受け取り、観測時刻の新しい順に価格履歴をJSONで返します。
//
// エンドポイント例:
// GET /portfolio/history/:symbol?limit=200
func (h *HistoryHandler) GetSeries(c *gin.Context) {
	symbol := c.Param("symbol")
	// 未指定の場合はデフォルト値を使用
	limitStr := c.DefaultQuery("limit", "200")
	// 文字列を整数に変換
	limit, _ := strconv.Atoi(limitStr)

	points, err := h.uc.GetSeries(c.Request.Context(), symbol, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]dto.PricePointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, dto.PricePointResponse{
			Time:      p.ObservedAt.UTC().Format(time.RFC3339),
			Price:     p.Price.InexactFloat64(),
			MarketCap: p.MarketCap.InexactFloat64(),
			ChangePct: p.ChangePct.InexactFloat64(),
			Source:    p.Source,
		})
	}

	c.JSON(http.StatusOK, out)
}
