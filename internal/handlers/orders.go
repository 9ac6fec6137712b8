package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/goldvault/investor-dashboard/backend/internal/entities"
)

type OrderService interface {
	ListOrders(ctx context.Context, investorID string, limit int) ([]entities.Order, error)
	GetOrder(ctx context.Context, id, investorID string) (*entities.Order, error)
	CreateOrder(ctx context.Context, investorID string, input entities.CreateOrderInput, currentPriceEur decimal.Decimal) (*entities.Order, error)
	CancelOrder(ctx context.Context, id, investorID string) (*entities.Order, error)
}

type HoldingsService interface {
	GetHoldings(ctx context.Context, investorID string) (*entities.Holdings, error)
}

type PriceService interface {
	CurrentPricePerGram(ctx context.Context) (decimal.Decimal, error)
}
