package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goldvault/investor-dashboard/backend/internal/core/ports"
	"github.com/goldvault/investor-dashboard/backend/internal/entities"
)

type OrdersRepository interface {
	FindInvestorOrders(ctx context.Context, investorID string, limit int) ([]entities.Order, error)
	FindOrder(ctx context.Context, id, investorID string) (*entities.Order, error)
	InsertOrder(ctx context.Context, order *entities.Order) (*entities.Order, error)
	// CancelPendingOrder flips status to cancelled only while the row is still
	// pending. It returns nil when zero rows matched.
	CancelPendingOrder(ctx context.Context, id, investorID string) (*entities.Order, error)
	// FillPendingOrder fills a pending order at the given price, guarded by
	// status='pending' so it cannot race a cancel. Returns nil on zero rows.
	FillPendingOrder(ctx context.Context, id string, priceEur, totalEur decimal.Decimal, now time.Time) (*entities.Order, error)
	FindOpenOrders(ctx context.Context) ([]entities.Order, error)
	ExpireOverdueOrders(ctx context.Context, now time.Time) (int64, error)
}

// HoldingsLedger is the slice of the holdings service the order engine needs:
// the tradable balance a sell order is validated against.
type HoldingsLedger interface {
	TradableBalance(ctx context.Context, investorID string) (decimal.Decimal, error)
}

// OrderService orchestrates validator, execution engine and repository per
// request. It is the only component the API layer talks to for orders.
type OrderService struct {
	logger   *slog.Logger
	repo     OrdersRepository
	holdings HoldingsLedger
	engine   *ExecutionEngine
}

func NewOrderService(logger *slog.Logger, repo OrdersRepository, holdings HoldingsLedger, engine *ExecutionEngine) *OrderService {
	return &OrderService{logger: logger, repo: repo, holdings: holdings, engine: engine}
}

func (s *OrderService) ListOrders(ctx context.Context, investorID string, limit int) ([]entities.Order, error) {
	if limit <= 0 {
		limit = ports.DefaultOrdersLimit
	}
	if limit > ports.MaxOrdersLimit {
		limit = ports.MaxOrdersLimit
	}
	return s.repo.FindInvestorOrders(ctx, investorID, limit)
}

func (s *OrderService) GetOrder(ctx context.Context, id, investorID string) (*entities.Order, error) {
	order, err := s.repo.FindOrder(ctx, id, investorID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, entities.ErrOrderNotFound
	}
	return order, nil
}

// CreateOrder validates the request, checks the tradable balance for sells,
// runs the execution engine and persists the result in a single write.
func (s *OrderService) CreateOrder(ctx context.Context, investorID string, input entities.CreateOrderInput, currentPriceEur decimal.Decimal) (*entities.Order, error) {
	if err := ValidateOrderInput(input); err != nil {
		return nil, err
	}

	if input.Side == entities.OrderSideSell {
		balance, err := s.holdings.TradableBalance(ctx, investorID)
		if err != nil {
			return nil, fmt.Errorf("failed to read tradable balance: %w", err)
		}
		if input.TokenAmount.GreaterThan(balance) {
			return nil, fmt.Errorf("%w: requested %s, tradable %s",
				entities.ErrInsufficientBalance, input.TokenAmount, balance)
		}
	}

	execution, err := s.engine.Execute(input, currentPriceEur, time.Now())
	if err != nil {
		return nil, err
	}

	var note *string
	if input.InvestorNote != nil {
		trimmed := strings.TrimSpace(*input.InvestorNote)
		note = &trimmed
	}

	order := &entities.Order{
		InvestorID:       investorID,
		Side:             input.Side,
		OrderType:        input.OrderType,
		Status:           execution.Status,
		TokenAmount:      input.TokenAmount,
		GoldGrams:        execution.GoldGrams,
		LimitPriceEur:    input.LimitPriceEur,
		ProtectedExitEur: input.ProtectedExitEur,
		ExecutedPriceEur: execution.ExecutedPriceEur,
		TotalEur:         execution.TotalEur,
		InvestorNote:     note,
		FilledAt:         execution.FilledAt,
	}

	persisted, err := s.repo.InsertOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		"order_id", persisted.ID,
		"investor_id", investorID,
		"side", persisted.Side,
		"type", persisted.OrderType,
		"status", persisted.Status)

	return persisted, nil
}

// CancelOrder cancels an investor's own pending order. The write is a single
// conditional update, so two concurrent cancel attempts cannot both succeed:
// the loser observes zero rows and gets the transition error instead.
func (s *OrderService) CancelOrder(ctx context.Context, id, investorID string) (*entities.Order, error) {
	order, err := s.GetOrder(ctx, id, investorID)
	if err != nil {
		return nil, err
	}
	if err = CancelGuard(order); err != nil {
		return nil, err
	}

	cancelled, err := s.repo.CancelPendingOrder(ctx, id, investorID)
	if err != nil {
		return nil, err
	}
	if cancelled == nil {
		// Lost a race: the row left pending between the read and the update.
		current, err := s.repo.FindOrder(ctx, id, investorID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, entities.ErrOrderNotFound
		}
		return nil, CancelGuard(current)
	}

	s.logger.Info("order cancelled", "order_id", cancelled.ID, "investor_id", investorID)

	return cancelled, nil
}

// ExpireOverdueOrders moves pending orders past their expires_at to expired.
func (s *OrderService) ExpireOverdueOrders(ctx context.Context) (int64, error) {
	return s.repo.ExpireOverdueOrders(ctx, time.Now())
}

// MatchOpenOrders fills every pending limit/protected order executable at the
// given oracle price. Each fill is individually guarded by status='pending'.
func (s *OrderService) MatchOpenOrders(ctx context.Context, currentPriceEur decimal.Decimal) (int, error) {
	open, err := s.repo.FindOpenOrders(ctx)
	if err != nil {
		return 0, err
	}

	filled := 0
	for i := range open {
		order := &open[i]
		if !ShouldFillPending(order, currentPriceEur) {
			continue
		}

		total := order.TokenAmount.Mul(currentPriceEur)
		result, err := s.repo.FillPendingOrder(ctx, order.ID, currentPriceEur, total, time.Now())
		if err != nil {
			s.logger.Error("failed to fill matched order", "error", err, "order_id", order.ID)
			continue
		}
		if result == nil {
			// Cancelled or expired since the listing; nothing to do.
			continue
		}

		filled++
		s.logger.Info("order matched",
			"order_id", result.ID,
			"executed_price_eur", currentPriceEur.String(),
			"total_eur", total.String())
	}

	return filled, nil
}
