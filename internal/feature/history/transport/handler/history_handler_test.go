package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"portfolio_backend/internal/feature/history/domain/entity"
)

// mockHistoryUsecase はHistoryUsecaseインターフェースのモック実装です。
type mockHistoryUsecase struct {
	GetSeriesFunc func(ctx context.Context, symbol string, limit int) ([]entity.PricePoint, error)
}

// GetSeries はモックのGetSeries関数を呼び出します。
func (m *mockHistoryUsecase) GetSeries(ctx context.Context, symbol string, limit int) ([]entity.PricePoint, error) {
	if m.GetSeriesFunc != nil {
		return m.GetSeriesFunc(ctx, symbol, limit)
	}
	return nil, nil
}

// TestNewHistoryHandler はNewHistoryHandlerコンストラクタが正しくインスタンスを生成することを検証します。
func TestNewHistoryHandler(t *testing.T) {
	t.Parallel()

	mockUC := &mockHistoryUsecase{}
	handler := NewHistoryHandler(mockUC)

	assert.NotNil(t, handler, "handler should not be nil")
	assert.NotNil(t, handler.uc, "usecase should not be nil")
}

// TestHistoryHandler_GetSeries はGetSeriesハンドラーの各種シナリオをテーブル駆動テストで検証します。
func TestHistoryHandler_GetSeries(t *testing.T) {
	gin.SetMode(gin.TestMode)

	observedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		url            string
		expectedSymbol string
		expectedLimit  int
		mockGetSeries  func(ctx context.Context, symbol string, limit int) ([]entity.PricePoint, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success: returns series for symbol",
			url:            "/portfolio/history/BTC",
			expectedSymbol: "BTC",
			expectedLimit:  200,
			mockGetSeries: func(ctx context.Context, symbol string, limit int) ([]entity.PricePoint, error) {
				return []entity.PricePoint{
					{
						Symbol:     "BTC",
						Price:      decimal.RequireFromString("50000.5"),
						MarketCap:  decimal.NewFromInt(1000000000),
						ChangePct:  decimal.RequireFromString("1.25"),
						Source:     "snapshot",
						ObservedAt: observedAt,
					},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"time":"2024-05-01T12:00:00Z","price":50000.5,"market_cap":1000000000,"change_pct":1.25,"source":"snapshot"}]`,
		},
		{
			name:           "success: limit query is passed through",
			url:            "/portfolio/history/ETH?limit=50",
			expectedSymbol: "ETH",
			expectedLimit:  50,
			mockGetSeries: func(ctx context.Context, symbol string, limit int) ([]entity.PricePoint, error) {
				return []entity.PricePoint{}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name:           "success: invalid limit becomes zero",
			url:            "/portfolio/history/BTC?limit=abc",
			expectedSymbol: "BTC",
			expectedLimit:  0,
			mockGetSeries: func(ctx context.Context, symbol string, limit int) ([]entity.PricePoint, error) {
				return nil, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name:           "failure: usecase returns error",
			url:            "/portfolio/history/BTC",
			expectedSymbol: "BTC",
			expectedLimit:  200,
			mockGetSeries: func(ctx context.Context, symbol string, limit int) ([]entity.PricePoint, error) {
				return nil, errors.New("database connection failed")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"database connection failed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSymbol string
			var gotLimit int

			mockUC := &mockHistoryUsecase{
				GetSeriesFunc: func(ctx context.Context, symbol string, limit int) ([]entity.PricePoint, error) {
					gotSymbol = symbol
					gotLimit = limit
					return tt.mockGetSeries(ctx, symbol, limit)
				},
			}
			handler := NewHistoryHandler(mockUC)

			router := gin.New()
			router.GET("/portfolio/history/:symbol", handler.GetSeries)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			assert.Equal(t, tt.expectedSymbol, gotSymbol)
			assert.Equal(t, tt.expectedLimit, gotLimit)
		})
	}
}
