package router

import (
	coinhandler "portfolio_backend/internal/feature/coinlist/transport/handler"
	historyhandler "portfolio_backend/internal/feature/history/transport/handler"
	portfoliohandler "portfolio_backend/internal/feature/portfolio/transport/handler"

	"github.com/gin-gonic/gin"
)

func NewRouter(health gin.HandlerFunc, pf *portfoliohandler.PortfolioHandler,
	ws *portfoliohandler.WSHandler, history *historyhandler.HistoryHandler,
	coins *coinhandler.CoinHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", health)
	// 資産追加フォーム用のコインカタログ
	r.GET("/coins", coins.List)

	// ポートフォリオ操作
	// r.Group("/portfolio") でルートグループを作成
	p := r.Group("/portfolio")
	{
		p.GET("", pf.GetPortfolio)
		p.POST("/assets", pf.AddAsset)
		p.PATCH("/assets/:symbol", pf.UpdateQuantity)
		p.DELETE("/assets/:symbol", pf.RemoveAsset)
		p.POST("/refresh", pf.Refresh)
		p.GET("/history/:symbol", history.GetSeries)
		// デバウンス済みの状態変更をWebSocketでプッシュ配信
		p.GET("/ws", ws.Stream)
	}

	return r
}
