package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/goldvault/investor-dashboard/backend/internal/entities"
)

// OrderService defines the order lifecycle operations. Every operation is
// scoped to the investor id taken from the caller's credential.
type OrderService interface {
	ListOrders(ctx context.Context, investorID string, limit int) ([]entities.Order, error)
	GetOrder(ctx context.Context, id, investorID string) (*entities.Order, error)
	CreateOrder(ctx context.Context, investorID string, input entities.CreateOrderInput, currentPriceEur decimal.Decimal) (*entities.Order, error)
	CancelOrder(ctx context.Context, id, investorID string) (*entities.Order, error)
	ExpireOverdueOrders(ctx context.Context) (int64, error)
	MatchOpenOrders(ctx context.Context, currentPriceEur decimal.Decimal) (int, error)
}

// HoldingsService exposes the tradable position ledger.
type HoldingsService interface {
	GetHoldings(ctx context.Context, investorID string) (*entities.Holdings, error)
	TradableBalance(ctx context.Context, investorID string) (decimal.Decimal, error)
}

// PriceService is the gold price oracle adapter.
type PriceService interface {
	CurrentPricePerGram(ctx context.Context) (decimal.Decimal, error)
}
