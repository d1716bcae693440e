package redis

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient は環境変数の接続設定でRedisクライアントを生成し、
// 疎通確認をしてから返します。
//
// 環境変数:
//   - REDIS_HOST: ホスト名（未設定時は localhost）
//   - REDIS_PORT: ポート番号（未設定時は 6379）
//   - REDIS_PASSWORD: パスワード（未設定時は認証なし）
func NewRedisClient() (*redis.Client, error) {
	addr := envOr("REDIS_HOST", "localhost") + ":" + envOr("REDIS_PORT", "6379")

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	// 接続確認
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}

// envOr は環境変数の値を返し、未設定時はデフォルト値を返します。
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
