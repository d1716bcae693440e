package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio_backend/internal/feature/coinlist/domain/entity"
	historyadapters "portfolio_backend/internal/feature/history/adapters"
)

// retryInterval は接続リトライの待機時間です。
const retryInterval = 3 * time.Second

// Config はデータベース接続設定を保持します。
type Config struct {
	PostgresDSN string // 設定されている場合はPostgresに接続します
	SQLitePath  string // Postgres未設定時に使用するSQLiteファイルパス
}

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	path := os.Getenv("PORTFOLIO_DB_PATH")
	if path == "" {
		path = "portfolio.db"
	}

	return Config{
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		SQLitePath:  path,
	}
}

// BuildDSN は設定から接続先DSNを決定します。
// PostgresDSNが設定されている場合はSQLiteパスより優先されます。
func BuildDSN(cfg Config) string {
	if cfg.PostgresDSN != "" {
		return cfg.PostgresDSN
	}
	return cfg.SQLitePath
}

// OpenerFor は設定に対応するGORMドライバのオープナーを返します。
func OpenerFor(cfg Config) func(string) (*gorm.DB, error) {
	if cfg.PostgresDSN != "" {
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), &gorm.Config{})
		}
	}
	return func(dsn string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	}
}

// ConnectWithRetry は指定されたタイムアウトまで接続をリトライします。
// DB起動待ちのコンテナ環境を想定し、失敗時は一定間隔で再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener func(string) (*gorm.DB, error)) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)

	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)

		sleep := retryInterval
		if remaining := time.Until(deadline); remaining < sleep {
			sleep = remaining
		}
		time.Sleep(sleep)
	}
}

// Migrate はアプリケーションが使用するテーブルのスキーマを適用します。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Coin{},
		&historyadapters.PricePointModel{},
	)
}

// OpenDB は環境変数の設定でデータベースを開き、マイグレーションを実行します。
// POSTGRES_DSNが設定されている場合はPostgres、未設定時はSQLiteファイルを使用します。
func OpenDB() *gorm.DB {
	cfg := LoadConfigFromEnv()

	db, err := ConnectWithRetry(BuildDSN(cfg), 60*time.Second, OpenerFor(cfg))
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	return db
}
