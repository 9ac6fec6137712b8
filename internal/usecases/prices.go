package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/goldvault/investor-dashboard/backend/internal/entities"
)

type PricesRepository interface {
	// FindCurrentPricePerGram returns today's gold price, or zero when no
	// price row exists for the day.
	FindCurrentPricePerGram(ctx context.Context) (decimal.Decimal, error)
}

// PriceService is the oracle adapter the order flow reads its execution price
// from. Store failures surface as upstream errors, never as a silent default.
type PriceService struct {
	logger *slog.Logger
	repo   PricesRepository
}

func NewPriceService(logger *slog.Logger, repo PricesRepository) *PriceService {
	return &PriceService{logger: logger, repo: repo}
}

func (s *PriceService) CurrentPricePerGram(ctx context.Context) (decimal.Decimal, error) {
	price, err := s.repo.FindCurrentPricePerGram(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: gold price lookup failed: %v", entities.ErrUpstreamUnavailable, err)
	}

	if price.IsZero() {
		s.logger.Warn("no gold price recorded for today, using zero")
	}

	return price, nil
}
