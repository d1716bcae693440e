// Package dto はportfolioフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "github.com/shopspring/decimal"

// AddAssetReq は/portfolio/assetsエンドポイントのリクエストボディを表します。
// 数量と取得単価の正数チェックはusecase側で行うため、ここでは形式のみ検証します。
type AddAssetReq struct {
	Symbol        string          `json:"symbol" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	PurchaseDate  string          `json:"purchase_date" binding:"required"` // YYYY-MM-DD
}

// UpdateQuantityReq は保有数量変更のリクエストボディを表します。
// 数量0は資産の削除を意味するため、フィールドの欠落と区別できるようポインタで受けます。
type UpdateQuantityReq struct {
	Quantity *decimal.Decimal `json:"quantity" binding:"required"`
}
