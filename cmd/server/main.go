package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"portfolio_backend/internal/app/di"
	"portfolio_backend/internal/app/router"
	coinlistadapters "portfolio_backend/internal/feature/coinlist/adapters"
	coinlisthandler "portfolio_backend/internal/feature/coinlist/transport/handler"
	coinlistusecase "portfolio_backend/internal/feature/coinlist/usecase"
	historyadapters "portfolio_backend/internal/feature/history/adapters"
	historyhandler "portfolio_backend/internal/feature/history/transport/handler"
	historyusecase "portfolio_backend/internal/feature/history/usecase"
	marketusecase "portfolio_backend/internal/feature/marketdata/usecase"
	portfoliohandler "portfolio_backend/internal/feature/portfolio/transport/handler"
	portfoliousecase "portfolio_backend/internal/feature/portfolio/usecase"
	infradb "portfolio_backend/internal/platform/db"
	healthhandler "portfolio_backend/internal/platform/http/handler"
	infraredis "portfolio_backend/internal/platform/redis"
	"portfolio_backend/internal/shared/backoff"
	"portfolio_backend/internal/shared/ratelimiter"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	// db
	db := infradb.OpenDB()

	// カタログが空ならデフォルトのコイン一覧を投入
	if err := coinlistadapters.SeedDefaultCoins(context.Background(), db); err != nil {
		log.Fatal("failed to seed coin catalog:", err)
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	currency := os.Getenv("PORTFOLIO_CURRENCY")
	if currency == "" {
		currency = "usd"
	}

	// Repository
	coinRepo := coinlistadapters.NewCoinRepository(db)
	pointRepo := historyadapters.NewPricePointRepository(db)
	marketRepo, invalidator := di.NewMarketRepository(rdb)

	// Usecase
	coinUC := coinlistusecase.NewCoinUsecase(coinRepo)
	historyUC := historyusecase.NewHistoryUsecase(pointRepo)

	notifier := portfoliousecase.NewStateNotifier(durationEnv("NOTIFY_DEBOUNCE", portfoliousecase.DefaultDebounce))
	defer notifier.Close()
	portfolioUC := portfoliousecase.NewPortfolioUsecase(coinUC, notifier, currency, decimal.Zero)

	// CoinGeckoの無償枠に合わせてスナップショット取得を制限
	limiter := ratelimiter.NewRateLimiter(30, time.Minute)
	snapshotUC := marketusecase.NewSnapshotUsecase(
		marketRepo, coinUC, portfolioUC, portfolioUC, historyUC, invalidator, limiter, currency)
	streamUC := marketusecase.NewStreamUsecase(
		di.NewTradeStream(), coinUC, portfolioUC, portfolioUC, notifier, backoff.New(time.Second, time.Minute))

	// 価格付き保有をチャート履歴として記録
	unsubscribe := notifier.Subscribe(historyUC.RecordState)
	defer unsubscribe()

	// Handler
	portfolioH := portfoliohandler.NewPortfolioHandler(portfolioUC, snapshotUC)
	wsH := portfoliohandler.NewWSHandler(portfolioUC, notifier)
	historyH := historyhandler.NewHistoryHandler(historyUC)
	coinH := coinlisthandler.NewCoinHandler(coinUC)
	healthH := healthhandler.Health(streamUC.Status, func() int {
		return len(portfolioUC.State().Holdings)
	})

	// ルータ生成
	r := router.NewRouter(healthH, portfolioH, wsH, historyH, coinH)

	// 価格フィード（定期スナップショットとトレードストリーム）を起動
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go snapshotUC.RunPeriodic(ctx, durationEnv("SNAPSHOT_INTERVAL", marketusecase.DefaultSnapshotInterval))
	go streamUC.Run(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// シグナルを受けたらフィードを止めてからHTTPサーバーを畳む
	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("[ERROR] Server shutdown failed:", err)
	}
}

// durationEnv は環境変数からtime.Durationを読み込みます。
// 未設定または不正な値の場合はデフォルトを返します。
func durationEnv(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("[WARN] invalid %s=%q, using default %s", key, raw, def)
		return def
	}
	return d
}
