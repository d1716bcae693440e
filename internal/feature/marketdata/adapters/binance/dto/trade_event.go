// Package dto はBinanceストリームのデータ転送オブジェクトを定義します。
package dto

// TradeEvent は個別トレードストリーム（<symbol>@trade）の1イベントを表します。
// 購読確認などの制御フレームはこれらのフィールドを持たないため、
// デコード後はEventTypeで判別します。
type TradeEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	TradeID   int64  `json:"t"`
	Price     string `json:"p"`
	Quantity  string `json:"q"`
	TradeTime int64  `json:"T"`
}

// StreamRequest は購読・購読解除のリクエストフレームです。
type StreamRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}
