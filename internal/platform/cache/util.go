package cache

import (
	"os"
	"time"
)

// defaultSnapshotTTL はSNAPSHOT_CACHE_TTL未設定時のキャッシュ保持期間です。
// スナップショットの取得間隔より短くし、次回ポーリングで新しい値が
// 取得されるようにします。
const defaultSnapshotTTL = 30 * time.Second

// SnapshotTTLFromEnv は環境変数SNAPSHOT_CACHE_TTLからキャッシュTTLを返します。
// 値はtime.ParseDuration形式（例: "30s", "1m"）で、未設定または不正な値の
// 場合はデフォルトを使用します。
func SnapshotTTLFromEnv() time.Duration {
	raw := os.Getenv("SNAPSHOT_CACHE_TTL")
	if raw == "" {
		return defaultSnapshotTTL
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultSnapshotTTL
	}
	return d
}
