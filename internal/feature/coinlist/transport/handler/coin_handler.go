package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/feature/coinlist/domain/entity"
	"portfolio_backend/internal/feature/coinlist/transport/http/dto"
)

// CoinUsecase はコインカタログに関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type CoinUsecase interface {
	ListActiveCoins(ctx context.Context) ([]entity.Coin, error)
}

// CoinHandler はコインカタログに関するHTTPリクエストを処理します。
type CoinHandler struct {
	uc CoinUsecase
}

// NewCoinHandler は新しい CoinHandler を作成します。
func NewCoinHandler(uc CoinUsecase) *CoinHandler {
	return &CoinHandler{uc: uc}
}

// List は追加可能なコインの一覧を取得するAPIです。
// Usecaseを呼び出してカタログを取得し、DTOに変換してJSONレスポンスとして返します。
// Usecaseでエラーが発生した場合は500 Internal Server Errorを返します。
func (h *CoinHandler) List(c *gin.Context) {
	coins, err := h.uc.ListActiveCoins(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.CoinItem, 0, len(coins))
	for _, coin := range coins {
		out = append(out, dto.CoinItem{Code: coin.Code, Name: coin.Name})
	}
	c.JSON(http.StatusOK, out)
}
