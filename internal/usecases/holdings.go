package usecases

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goldvault/investor-dashboard/backend/internal/entities"
)

type HoldingsRepository interface {
	FindHoldings(ctx context.Context, investorID string) (*entities.Holdings, error)
}

// HoldingsService reads the investor's tradable gold position. The order
// engine consumes it as the balance source for sell validation.
type HoldingsService struct {
	logger *slog.Logger
	repo   HoldingsRepository
}

func NewHoldingsService(logger *slog.Logger, repo HoldingsRepository) *HoldingsService {
	return &HoldingsService{logger: logger, repo: repo}
}

// GetHoldings returns the investor's position joined with today's gold price.
// An investor without a holdings row gets a blank zero portfolio rather than
// an error.
func (s *HoldingsService) GetHoldings(ctx context.Context, investorID string) (*entities.Holdings, error) {
	holdings, err := s.repo.FindHoldings(ctx, investorID)
	if errors.Is(err, entities.ErrHoldingsNotFound) {
		return &entities.Holdings{
			InvestorID:      investorID,
			WalletAddress:   "—",
			TokenBalance:    decimal.Zero,
			GoldGrams:       decimal.Zero,
			PricePerGramEur: decimal.Zero,
			CurrentValueEur: decimal.Zero,
			LastUpdated:     time.Now(),
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return holdings, nil
}

// TradableBalance returns the token balance sell orders are validated against.
func (s *HoldingsService) TradableBalance(ctx context.Context, investorID string) (decimal.Decimal, error) {
	holdings, err := s.GetHoldings(ctx, investorID)
	if err != nil {
		return decimal.Zero, err
	}
	return holdings.TokenBalance, nil
}
