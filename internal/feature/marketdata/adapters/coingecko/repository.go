package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"portfolio_backend/internal/feature/marketdata/adapters/coingecko/dto"
	"portfolio_backend/internal/feature/marketdata/domain/entity"
	"portfolio_backend/internal/feature/marketdata/usecase"
)

// CoinGeckoMarket はCoinGecko外部APIから市場スナップショットを取得する
// MarketRepository実装です。
type CoinGeckoMarket struct {
	cfg    Config
	client *http.Client
}

// CoinGeckoMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*CoinGeckoMarket)(nil)

// NewCoinGeckoMarket は指定された設定とHTTPクライアントでCoinGeckoMarketの新しいインスタンスを生成します。
func NewCoinGeckoMarket(cfg Config, client *http.Client) *CoinGeckoMarket {
	return &CoinGeckoMarket{cfg: cfg, client: client}
}

// GetMarkets はCoinGecko APIから指定コインの市場スナップショットを取得し、
// entity.MarketTickerのスライスとして返します。idsはCoinGecko ID
// （例: "bitcoin"）で、結果の順序は保証されません。
func (g *CoinGeckoMarket) GetMarkets(ctx context.Context, vsCurrency string, ids []string) ([]entity.MarketTicker, error) {
	const op = "coingecko markets"

	q := url.Values{}
	// クエリパラメータを追加
	q.Set("vs_currency", strings.ToLower(vsCurrency))
	q.Set("ids", strings.Join(ids, ","))
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(250))
	q.Set("page", "1")
	q.Set("sparkline", "false")
	if g.cfg.APIKey != "" {
		q.Set("x_cg_demo_api_key", g.cfg.APIKey)
	}

	// URLを生成
	u := fmt.Sprintf("%s/coins/markets?%s", g.cfg.BaseURL, q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &usecase.NetworkError{Op: op, Err: err}
	}

	// リクエストを実行
	res, err := g.client.Do(req)
	if err != nil {
		return nil, &usecase.NetworkError{Op: op, Err: err}
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, &usecase.NetworkError{Op: op, Status: res.StatusCode}
	}

	// JSONレスポンスをDTOにデコード
	var rows []dto.MarketRow
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return nil, &usecase.ParseError{Op: op, Err: err}
	}

	tickers := make([]entity.MarketTicker, 0, len(rows))
	for _, row := range rows {
		// 現在価格のないコインは評価に使えないためスキップする
		if !row.CurrentPrice.Valid || !row.CurrentPrice.Decimal.IsPositive() {
			continue
		}

		ticker := entity.MarketTicker{
			Code:       strings.ToUpper(row.Symbol),
			ProviderID: row.ID,
			Price:      row.CurrentPrice.Decimal,
		}
		if row.MarketCap.Valid {
			ticker.MarketCap = row.MarketCap.Decimal
		}
		if row.PriceChangePercentage24h.Valid {
			ticker.Change24hPct = row.PriceChangePercentage24h.Decimal
		}
		// 提供元のタイムスタンプをパース（欠落時はゼロ値のまま）
		if row.LastUpdated != "" {
			tm, err := time.Parse(time.RFC3339, row.LastUpdated)
			if err != nil {
				return nil, &usecase.ParseError{Op: op, Err: fmt.Errorf("parse last_updated %q: %w", row.LastUpdated, err)}
			}
			ticker.LastUpdated = tm
		}
		tickers = append(tickers, ticker)
	}
	return tickers, nil
}
