// Package usecase implements the business logic for coin catalog operations.
package usecase

import (
	"context"
	"errors"
	"strings"

	"portfolio_backend/internal/feature/coinlist/domain/entity"
)

// ErrCoinNotFound is returned when a code has no entry in the catalog.
var ErrCoinNotFound = errors.New("coin not found")

// CoinRepository abstracts the persistence layer for the coin catalog.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type CoinRepository interface {
	ListActive(ctx context.Context) ([]entity.Coin, error)
	FindByCode(ctx context.Context, code string) (*entity.Coin, error)
}

// CoinUsecase provides business logic for coin catalog operations.
type CoinUsecase struct {
	repo CoinRepository
}

// NewCoinUsecase creates a new CoinUsecase with the given repository.
func NewCoinUsecase(r CoinRepository) *CoinUsecase {
	return &CoinUsecase{repo: r}
}

// ListActiveCoins returns all active coins from the repository.
func (u *CoinUsecase) ListActiveCoins(ctx context.Context) ([]entity.Coin, error) {
	return u.repo.ListActive(ctx)
}

// IsSupported reports whether the given code belongs to an active coin.
func (u *CoinUsecase) IsSupported(ctx context.Context, code string) (bool, error) {
	coin, err := u.repo.FindByCode(ctx, strings.ToUpper(code))
	if errors.Is(err, ErrCoinNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return coin.IsActive, nil
}

// ActiveMarketIDs maps every active catalog code to its CoinGecko ID.
func (u *CoinUsecase) ActiveMarketIDs(ctx context.Context) (map[string]string, error) {
	coins, err := u.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(coins))
	for _, c := range coins {
		out[c.Code] = c.CoinGeckoID
	}
	return out, nil
}

// MarketIDs maps portfolio ticker codes to the CoinGecko IDs used by the
// snapshot endpoint. Codes without an active catalog entry are skipped.
func (u *CoinUsecase) MarketIDs(ctx context.Context, codes []string) (map[string]string, error) {
	coins, err := u.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]string, len(coins))
	for _, c := range coins {
		byCode[c.Code] = c.CoinGeckoID
	}
	out := make(map[string]string, len(codes))
	for _, code := range codes {
		if id, ok := byCode[strings.ToUpper(code)]; ok {
			out[strings.ToUpper(code)] = id
		}
	}
	return out, nil
}

// StreamSymbols maps portfolio ticker codes to the trade stream symbols
// used for live subscriptions. Codes without an active catalog entry are
// skipped.
func (u *CoinUsecase) StreamSymbols(ctx context.Context, codes []string) (map[string]string, error) {
	coins, err := u.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]string, len(coins))
	for _, c := range coins {
		byCode[c.Code] = c.StreamSymbol
	}
	out := make(map[string]string, len(codes))
	for _, code := range codes {
		if sym, ok := byCode[strings.ToUpper(code)]; ok {
			out[strings.ToUpper(code)] = sym
		}
	}
	return out, nil
}
