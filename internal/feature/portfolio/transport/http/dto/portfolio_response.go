package dto

// QuoteResponse は保有銘柄の最新クォートのレスポンスDTOです。
type QuoteResponse struct {
	Price      float64 `json:"price"`       // 価格
	Source     string  `json:"source"`      // 観測元 (snapshot / stream)
	ObservedAt string  `json:"observed_at"` // 観測時刻 (RFC3339, UTC)
}

// HoldingResponse は保有1件分のレスポンスDTOです。
type HoldingResponse struct {
	Symbol        string         `json:"symbol"`          // 銘柄コード
	Quantity      float64        `json:"quantity"`        // 保有数量
	PurchasePrice float64        `json:"purchase_price"`  // 取得単価
	PurchaseDate  string         `json:"purchase_date"`   // 取得日 (YYYY-MM-DD)
	Quote         *QuoteResponse `json:"quote,omitempty"` // 最新クォート（未評価時は省略）
	MarketValue   float64        `json:"market_value"`    // 評価額
	GainLoss      float64        `json:"gain_loss"`       // 評価損益
	GainLossPct   float64        `json:"gain_loss_pct"`   // 評価損益率 (%)
}

// PortfolioStateResponse はポートフォリオ全体のスナップショットのレスポンスDTOです。
// WebSocketのプッシュフレームもこのDTOを使用します。
type PortfolioStateResponse struct {
	Currency      string            `json:"currency"`        // 表示通貨
	Holdings      []HoldingResponse `json:"holdings"`        // 保有一覧（銘柄コード順）
	TotalValue    float64           `json:"total_value"`     // 評価額合計
	TotalCost     float64           `json:"total_cost"`      // 取得原価合計
	TotalGainLoss float64           `json:"total_gain_loss"` // 評価損益合計
	UpdatedAt     string            `json:"updated_at"`      // 最終更新時刻 (RFC3339, UTC)
}
