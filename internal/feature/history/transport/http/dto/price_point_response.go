package dto

// PricePointResponse は価格履歴1点分のレスポンスDTOです。
type PricePointResponse struct {
	Time      string  `json:"time"`       // 観測時刻 (RFC3339, UTC)
	Price     float64 `json:"price"`      // 価格
	MarketCap float64 `json:"market_cap"` // 時価総額
	ChangePct float64 `json:"change_pct"` // 24時間変化率
	Source    string  `json:"source"`     // 観測元 (snapshot / stream)
}
