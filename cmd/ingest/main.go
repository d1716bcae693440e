package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"portfolio_backend/internal/app/di"
	coinlistadapters "portfolio_backend/internal/feature/coinlist/adapters"
	coinlistusecase "portfolio_backend/internal/feature/coinlist/usecase"
	historyadapters "portfolio_backend/internal/feature/history/adapters"
	historyusecase "portfolio_backend/internal/feature/history/usecase"
	marketusecase "portfolio_backend/internal/feature/marketdata/usecase"
	portfoliousecase "portfolio_backend/internal/feature/portfolio/usecase"
	infradb "portfolio_backend/internal/platform/db"
	"portfolio_backend/internal/shared/ratelimiter"
)

// カタログ上の全アクティブコインのスナップショットを1回取得して
// 価格履歴に記録するワンショットコマンドです。
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	db := infradb.OpenDB()

	if err := coinlistadapters.SeedDefaultCoins(context.Background(), db); err != nil {
		log.Fatal("failed to seed coin catalog:", err)
	}

	currency := os.Getenv("PORTFOLIO_CURRENCY")
	if currency == "" {
		currency = "usd"
	}

	// バックフィルは常に上流へ問い合わせるためキャッシュは挟まない
	marketRepo, _ := di.NewMarketRepository(nil)
	coinUC := coinlistusecase.NewCoinUsecase(coinlistadapters.NewCoinRepository(db))
	historyUC := historyusecase.NewHistoryUsecase(historyadapters.NewPricePointRepository(db))

	notifier := portfoliousecase.NewStateNotifier(0)
	defer notifier.Close()
	portfolioUC := portfoliousecase.NewPortfolioUsecase(coinUC, notifier, currency, decimal.Zero)

	limiter := ratelimiter.NewRateLimiter(30, time.Minute)
	uc := marketusecase.NewSnapshotUsecase(
		marketRepo, coinUC, portfolioUC, portfolioUC, historyUC, nil, limiter, currency)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := uc.BackfillCatalog(ctx)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("backfill ok:", n, "price points")
}
