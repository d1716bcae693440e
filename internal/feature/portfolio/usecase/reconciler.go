package usecase

import "portfolio_backend/internal/feature/portfolio/domain/entity"

// reconciler は同一銘柄に対して競合する価格観測のどちらを保持するかを決定します。
// スナップショットとストリームは独立した経路で届くため到着順は当てになりません。
// そのため「どちらのソースか」ではなく観測時刻で勝敗を決めます。
type reconciler struct{}

// accept は incoming を現在保持中の current より優先すべきかを返します。
// 観測時刻が厳密に新しい場合のみ受理し、同時刻の場合はより粒度の細かい
// ストリーム由来のみ受理します。古い観測は到着順にかかわらず破棄します。
func (reconciler) accept(current *entity.PriceQuote, incoming entity.PriceQuote) bool {
	if current == nil {
		return true
	}
	if incoming.ObservedAt.After(current.ObservedAt) {
		return true
	}
	if incoming.ObservedAt.Equal(current.ObservedAt) {
		return incoming.Source == entity.SourceStream
	}
	return false
}
