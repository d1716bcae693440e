// Package handler はportfolioフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"portfolio_backend/internal/feature/portfolio/domain/entity"
	"portfolio_backend/internal/feature/portfolio/transport/http/dto"
	"portfolio_backend/internal/feature/portfolio/usecase"
)

// purchaseDateLayout は取得日の入出力形式です。
const purchaseDateLayout = "2006-01-02"

// PortfolioUsecase はポートフォリオ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PortfolioUsecase interface {
	AddAsset(ctx context.Context, asset entity.Asset) (entity.Holding, error)
	UpdateQuantity(ctx context.Context, symbol string, quantity decimal.Decimal) (entity.Holding, error)
	RemoveAsset(ctx context.Context, symbol string) error
	State() entity.PortfolioState
}

// SnapshotRefresher は市場スナップショットの即時再取得を抽象化します。
type SnapshotRefresher interface {
	// Refresh はキャッシュを破棄してスナップショットを取り直し、受理件数を返します。
	Refresh(ctx context.Context) (int, error)
}

// PortfolioHandler はポートフォリオ操作のHTTPリクエストを処理します。
type PortfolioHandler struct {
	uc        PortfolioUsecase
	refresher SnapshotRefresher
}

// NewPortfolioHandler は指定された依存でPortfolioHandlerの新しいインスタンスを生成します。
func NewPortfolioHandler(uc PortfolioUsecase, refresher SnapshotRefresher) *PortfolioHandler {
	return &PortfolioHandler{uc: uc, refresher: refresher}
}

// GetPortfolio は現在のポートフォリオのスナップショットをJSONで返します。
//
// エンドポイント例:
// GET /portfolio
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, toStateResponse(h.uc.State()))
}

// AddAsset は資産追加APIエンドポイントを処理します。
// - リクエストJSONをAddAssetReqにバインド
// - バリデーションエラー時はフィールド名付きで400を返却
// - 既に保有している銘柄の場合は409を返却
// - 成功時は追加後の保有情報付きで201を返却
func (h *PortfolioHandler) AddAsset(c *gin.Context) {
	var req dto.AddAssetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("add asset validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	acquiredAt, err := time.Parse(purchaseDateLayout, req.PurchaseDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid purchase_date: must be YYYY-MM-DD", "field": "purchase_date"})
		return
	}

	holding, err := h.uc.AddAsset(c.Request.Context(), entity.Asset{
		Symbol:     req.Symbol,
		Quantity:   req.Quantity,
		CostBasis:  req.PurchasePrice,
		AcquiredAt: acquiredAt,
	})
	if err != nil {
		h.renderAssetError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toHoldingResponse(holding))
}

// UpdateQuantity は保有数量変更APIエンドポイントを処理します。
// - 数量0は資産の削除として扱い、削除した旨のメッセージを返却
// - 保有していない銘柄の場合は404を返却
// - 成功時は変更後の保有情報付きで200を返却
func (h *PortfolioHandler) UpdateQuantity(c *gin.Context) {
	var req dto.UpdateQuantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update quantity validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	holding, err := h.uc.UpdateQuantity(c.Request.Context(), c.Param("symbol"), *req.Quantity)
	if err != nil {
		h.renderAssetError(c, err)
		return
	}
	// 数量0で削除された場合はゼロ値の保有情報が返る
	if holding.Asset.Symbol == "" {
		c.JSON(http.StatusOK, gin.H{"message": "asset removed"})
		return
	}
	c.JSON(http.StatusOK, toHoldingResponse(holding))
}

// RemoveAsset は資産削除APIエンドポイントを処理します。
// 削除は冪等で、保有していない銘柄でも204を返却します。
func (h *PortfolioHandler) RemoveAsset(c *gin.Context) {
	if err := h.uc.RemoveAsset(c.Request.Context(), c.Param("symbol")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Refresh は市場スナップショットの即時再取得APIエンドポイントを処理します。
// 上流の取得に失敗した場合は502を返却します。
func (h *PortfolioHandler) Refresh(c *gin.Context) {
	applied, err := h.refresher.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

// renderAssetError はusecaseのエラーをHTTPステータスへ変換します。
func (h *PortfolioHandler) renderAssetError(c *gin.Context, err error) {
	var ve *usecase.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, usecase.ErrAssetAlreadyHeld):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrAssetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// toHoldingResponse は保有情報をレスポンスDTOへ変換します。
func toHoldingResponse(h entity.Holding) dto.HoldingResponse {
	out := dto.HoldingResponse{
		Symbol:        h.Asset.Symbol,
		Quantity:      h.Asset.Quantity.InexactFloat64(),
		PurchasePrice: h.Asset.CostBasis.InexactFloat64(),
		PurchaseDate:  h.Asset.AcquiredAt.UTC().Format(purchaseDateLayout),
		MarketValue:   h.MarketValue.InexactFloat64(),
		GainLoss:      h.GainLoss.InexactFloat64(),
		GainLossPct:   h.GainLossPct.InexactFloat64(),
	}
	if h.Quote != nil {
		out.Quote = &dto.QuoteResponse{
			Price:      h.Quote.Price.InexactFloat64(),
			Source:     string(h.Quote.Source),
			ObservedAt: h.Quote.ObservedAt.UTC().Format(time.RFC3339),
		}
	}
	return out
}

// toStateResponse はポートフォリオ状態をレスポンスDTOへ変換します。
func toStateResponse(s entity.PortfolioState) dto.PortfolioStateResponse {
	out := dto.PortfolioStateResponse{
		Currency:      s.Currency,
		Holdings:      make([]dto.HoldingResponse, 0, len(s.Holdings)),
		TotalValue:    s.TotalValue.InexactFloat64(),
		TotalCost:     s.TotalCost.InexactFloat64(),
		TotalGainLoss: s.TotalGainLoss.InexactFloat64(),
		UpdatedAt:     s.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for _, h := range s.Holdings {
		out.Holdings = append(out.Holdings, toHoldingResponse(h))
	}
	return out
}
