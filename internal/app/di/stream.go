package di

import (
	"portfolio_backend/internal/feature/marketdata/adapters/binance"
	"portfolio_backend/internal/feature/marketdata/usecase"
)

// NewTradeStream creates the Binance WebSocket stream client from env config.
func NewTradeStream() usecase.TradeStream {
	return binance.NewBinanceStream(binance.LoadConfig())
}
