package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"

	"github.com/goldvault/investor-dashboard/backend/internal/entities"
)

// fakeOrdersRepository is an in-memory stand-in with the same conditional
// update semantics as the Postgres repository.
type fakeOrdersRepository struct {
	orders map[string]*entities.Order

	// beforeCancel runs between the service's ownership read and the
	// conditional update, to simulate a concurrent writer.
	beforeCancel func()
}

func newFakeOrdersRepository() *fakeOrdersRepository {
	return &fakeOrdersRepository{orders: make(map[string]*entities.Order)}
}

func (f *fakeOrdersRepository) FindInvestorOrders(_ context.Context, investorID string, limit int) ([]entities.Order, error) {
	var result []entities.Order
	for _, order := range f.orders {
		if order.InvestorID == investorID && len(result) < limit {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (f *fakeOrdersRepository) FindOrder(_ context.Context, id, investorID string) (*entities.Order, error) {
	order, ok := f.orders[id]
	if !ok || !order.IsOwnedBy(investorID) {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrdersRepository) InsertOrder(_ context.Context, order *entities.Order) (*entities.Order, error) {
	persisted := *order
	persisted.ID = uuid.NewString()
	persisted.CreatedAt = time.Now()
	persisted.UpdatedAt = persisted.CreatedAt
	f.orders[persisted.ID] = &persisted
	copied := persisted
	return &copied, nil
}

func (f *fakeOrdersRepository) CancelPendingOrder(_ context.Context, id, investorID string) (*entities.Order, error) {
	if f.beforeCancel != nil {
		f.beforeCancel()
	}
	order, ok := f.orders[id]
	if !ok || !order.IsOwnedBy(investorID) || order.Status != entities.OrderStatusPending {
		return nil, nil
	}
	order.Status = entities.OrderStatusCancelled
	order.UpdatedAt = time.Now()
	copied := *order
	return &copied, nil
}

func (f *fakeOrdersRepository) FillPendingOrder(_ context.Context, id string, priceEur, totalEur decimal.Decimal, now time.Time) (*entities.Order, error) {
	order, ok := f.orders[id]
	if !ok || order.Status != entities.OrderStatusPending {
		return nil, nil
	}
	order.Status = entities.OrderStatusFilled
	order.ExecutedPriceEur = &priceEur
	order.TotalEur = &totalEur
	order.FilledAt = &now
	order.UpdatedAt = now
	copied := *order
	return &copied, nil
}

func (f *fakeOrdersRepository) FindOpenOrders(context.Context) ([]entities.Order, error) {
	var result []entities.Order
	for _, order := range f.orders {
		if order.Status == entities.OrderStatusPending && order.OrderType != entities.OrderTypeMarket {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (f *fakeOrdersRepository) ExpireOverdueOrders(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for _, order := range f.orders {
		if order.Status == entities.OrderStatusPending && order.ExpiresAt != nil && !order.ExpiresAt.After(now) {
			order.Status = entities.OrderStatusExpired
			order.UpdatedAt = now
			count++
		}
	}
	return count, nil
}

type fakeLedger struct {
	balance decimal.Decimal
	err     error
}

func (f *fakeLedger) TradableBalance(context.Context, string) (decimal.Decimal, error) {
	return f.balance, f.err
}

func newTestOrderService(repo *fakeOrdersRepository, ledger *fakeLedger) *OrderService {
	engine := NewExecutionEngine(decimal.NewFromInt(1), false)
	return NewOrderService(slog.Default(), repo, ledger, engine)
}

func TestCreateMarketOrderFillsImmediately(t *testing.T) {
	repo := newFakeOrdersRepository()
	service := newTestOrderService(repo, &fakeLedger{balance: decimal.NewFromInt(100)})

	order, err := service.CreateOrder(context.Background(), "investor-1", entities.CreateOrderInput{
		Side:        entities.OrderSideBuy,
		OrderType:   entities.OrderTypeMarket,
		TokenAmount: decimal.NewFromInt(10),
	}, decimal.RequireFromString("65.00"))
	require.NoError(t, err)

	require.Equal(t, entities.OrderStatusFilled, order.Status)
	require.Equal(t, "investor-1", order.InvestorID)
	require.True(t, order.ExecutedPriceEur.Equal(decimal.RequireFromString("65.00")))
	require.True(t, order.TotalEur.Equal(decimal.RequireFromString("650.00")))
	require.NotNil(t, order.FilledAt)
	require.NotEmpty(t, order.ID)
}

func TestCreateLimitOrderStaysPending(t *testing.T) {
	repo := newFakeOrdersRepository()
	service := newTestOrderService(repo, &fakeLedger{balance: decimal.NewFromInt(100)})

	order, err := service.CreateOrder(context.Background(), "investor-1", entities.CreateOrderInput{
		Side:          entities.OrderSideSell,
		OrderType:     entities.OrderTypeLimit,
		TokenAmount:   decimal.NewFromInt(5),
		LimitPriceEur: pointy.Pointer(decimal.RequireFromString("70.00")),
	}, decimal.RequireFromString("65.00"))
	require.NoError(t, err)

	require.Equal(t, entities.OrderStatusPending, order.Status)
	require.Nil(t, order.ExecutedPriceEur)
	require.Nil(t, order.TotalEur)
	require.Nil(t, order.FilledAt)
}

func TestCreateOrderValidationFailureIsNotPersisted(t *testing.T) {
	repo := newFakeOrdersRepository()
	service := newTestOrderService(repo, &fakeLedger{balance: decimal.NewFromInt(100)})

	_, err := service.CreateOrder(context.Background(), "investor-1", entities.CreateOrderInput{
		Side:             entities.OrderSideSell,
		OrderType:        entities.OrderTypeProtected,
		TokenAmount:      decimal.NewFromInt(3),
		LimitPriceEur:    pointy.Pointer(decimal.RequireFromString("70.00")),
		ProtectedExitEur: pointy.Pointer(decimal.RequireFromString("75.00")),
	}, decimal.RequireFromString("65.00"))

	require.ErrorIs(t, err, entities.ErrInvalidOrderShape)
	require.Empty(t, repo.orders, "rejected order must never reach the repository")
}

func TestCreateSellOrderChecksTradableBalance(t *testing.T) {
	repo := newFakeOrdersRepository()
	service := newTestOrderService(repo, &fakeLedger{balance: decimal.NewFromInt(4)})

	_, err := service.CreateOrder(context.Background(), "investor-1", entities.CreateOrderInput{
		Side:        entities.OrderSideSell,
		OrderType:   entities.OrderTypeMarket,
		TokenAmount: decimal.NewFromInt(5),
	}, decimal.RequireFromString("65.00"))

	require.ErrorIs(t, err, entities.ErrInsufficientBalance)
	require.Empty(t, repo.orders)
}

func TestCreateSellOrderSurfacesLedgerFailure(t *testing.T) {
	repo := newFakeOrdersRepository()
	service := newTestOrderService(repo, &fakeLedger{err: fmt.Errorf("ledger offline")})

	_, err := service.CreateOrder(context.Background(), "investor-1", entities.CreateOrderInput{
		Side:        entities.OrderSideSell,
		OrderType:   entities.OrderTypeMarket,
		TokenAmount: decimal.NewFromInt(5),
	}, decimal.RequireFromString("65.00"))

	require.Error(t, err)
	require.Contains(t, err.Error(), "ledger offline")
	require.Empty(t, repo.orders)
}

func TestGetOrderScopedToInvestor(t *testing.T) {
	repo := newFakeOrdersRepository()
	service := newTestOrderService(repo, &fakeLedger{balance: decimal.NewFromInt(100)})

	created, err := service.CreateOrder(context.Background(), "investor-1", entities.CreateOrderInput{
		Side:        entities.OrderSideBuy,
		OrderType:   entities.OrderTypeMarket,
		TokenAmount: decimal.NewFromInt(1),
	}, decimal.NewFromInt(65))
	require.NoError(t, err)

	t.Run("owner sees the order", func(t *testing.T) {
		order, err := service.GetOrder(context.Background(), created.ID, "investor-1")
		require.NoError(t, err)
		require.Equal(t, created.ID, order.ID)
	})

	t.Run("another investor gets not found, not forbidden", func(t *testing.T) {
		_, err := service.GetOrder(context.Background(), created.ID, "investor-2")
		require.ErrorIs(t, err, entities.ErrOrderNotFound)
	})
}

func TestListOrdersClampsLimit(t *testing.T) {
	repo := newFakeOrdersRepository()
	service := newTestOrderService(repo, &fakeLedger{balance: decimal.NewFromInt(1000)})

	for i := 0; i < 60; i++ {
		_, err := service.CreateOrder(context.Background(), "investor-1", entities.CreateOrderInput{
			Side:        entities.OrderSideBuy,
			OrderType:   entities.OrderTypeMarket,
			TokenAmount: decimal.NewFromInt(1),
		}, decimal.NewFromInt(65))
		require.NoError(t, err)
	}

	orders, err := service.ListOrders(context.Background(), "investor-1", 0)
	require.NoError(t, err)
	require.Len(t, orders, 50, "zero limit falls back to the default page size")
}

func TestCancelOrder(t *testing.T) {
	newPendingOrder := func(t *testing.T, repo *fakeOrdersRepository, service *OrderService) *entities.Order {
		t.Helper()
		order, err := service.CreateOrder(context.Background(), "investor-1", entities.CreateOrderInput{
			Side:          entities.OrderSideBuy,
			OrderType:     entities.OrderTypeLimit,
			TokenAmount:   decimal.NewFromInt(2),
			LimitPriceEur: pointy.Pointer(decimal.NewFromInt(60)),
		}, decimal.NewFromInt(65))
		require.NoError(t, err)
		return order
	}

	t.Run("pending order cancels cleanly", func(t *testing.T) {
		repo := newFakeOrdersRepository()
		service := newTestOrderService(repo, &fakeLedger{balance: decimal.NewFromInt(100)})
		order := newPendingOrder(t, repo, service)

		cancelled, err := service.CancelOrder(context.Background(), order.ID, "investor-1")
		require.NoError(t, err)
		require.Equal(t, entities.OrderStatusCancelled, cancelled.Status)
	})

	t.Run("filled order refuses with the status in the message", func(t *testing.T) {
		repo := newFakeOrdersRepository()
		service := newTestOrderService(repo, &fakeLedger{balance: decimal.NewFromInt(100)})

		order, err := service.CreateOrder(context.Background(), "investor-1", entities.CreateOrderInput{
			Side:        entities.OrderSideBuy,
			OrderType:   entities.OrderTypeMarket,
			TokenAmount: decimal.NewFromInt(1),
		}, decimal.NewFromInt(65))
		require.NoError(t, err)

		_, err = service.CancelOrder(context.Background(), order.ID, "investor-1")
		require.ErrorIs(t, err, entities.ErrIllegalTransition)
		require.Contains(t, err.Error(), "filled")
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		repo := newFakeOrdersRepository()
		service := newTestOrderService(repo, &fakeLedger{balance: decimal.NewFromInt(100)})

		_, err := service.CancelOrder(context.Background(), uuid.NewString(), "investor-1")
		require.ErrorIs(t, err, entities.ErrOrderNotFound)
	})

	t.Run("someone else's order is not found", func(t *testing.T) {
		repo := newFakeOrdersRepository()
		service := newTestOrderService(repo, &fakeLedger{balance: decimal.NewFromInt(100)})
		order := newPendingOrder(t, repo, service)

		_, err := service.CancelOrder(context.Background(), order.ID, "investor-2")
		require.ErrorIs(t, err, entities.ErrOrderNotFound)
	})

	t.Run("losing a cancel race surfaces the transition error", func(t *testing.T) {
		repo := newFakeOrdersRepository()
		service := newTestOrderService(repo, &fakeLedger{balance: decimal.NewFromInt(100)})
		order := newPendingOrder(t, repo, service)

		// A concurrent request cancels the order between our read and write.
		repo.beforeCancel = func() {
			repo.beforeCancel = nil
			stored := repo.orders[order.ID]
			stored.Status = entities.OrderStatusCancelled
		}

		_, err := service.CancelOrder(context.Background(), order.ID, "investor-1")
		require.ErrorIs(t, err, entities.ErrIllegalTransition)
		require.Contains(t, err.Error(), "cancelled")
	})

	t.Run("repeated cancels keep failing", func(t *testing.T) {
		repo := newFakeOrdersRepository()
		service := newTestOrderService(repo, &fakeLedger{balance: decimal.NewFromInt(100)})
		order := newPendingOrder(t, repo, service)

		_, err := service.CancelOrder(context.Background(), order.ID, "investor-1")
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err = service.CancelOrder(context.Background(), order.ID, "investor-1")
			require.ErrorIs(t, err, entities.ErrIllegalTransition)
		}
	})
}

func TestMatchOpenOrders(t *testing.T) {
	repo := newFakeOrdersRepository()
	service := newTestOrderService(repo, &fakeLedger{balance: decimal.NewFromInt(100)})

	reachable, err := service.CreateOrder(context.Background(), "investor-1", entities.CreateOrderInput{
		Side:          entities.OrderSideSell,
		OrderType:     entities.OrderTypeLimit,
		TokenAmount:   decimal.NewFromInt(5),
		LimitPriceEur: pointy.Pointer(decimal.RequireFromString("70.00")),
	}, decimal.NewFromInt(65))
	require.NoError(t, err)

	unreachable, err := service.CreateOrder(context.Background(), "investor-1", entities.CreateOrderInput{
		Side:          entities.OrderSideSell,
		OrderType:     entities.OrderTypeLimit,
		TokenAmount:   decimal.NewFromInt(5),
		LimitPriceEur: pointy.Pointer(decimal.RequireFromString("90.00")),
	}, decimal.NewFromInt(65))
	require.NoError(t, err)

	filled, err := service.MatchOpenOrders(context.Background(), decimal.RequireFromString("72.00"))
	require.NoError(t, err)
	require.Equal(t, 1, filled)

	matched, err := service.GetOrder(context.Background(), reachable.ID, "investor-1")
	require.NoError(t, err)
	require.Equal(t, entities.OrderStatusFilled, matched.Status)
	require.True(t, matched.ExecutedPriceEur.Equal(decimal.RequireFromString("72.00")))
	require.True(t, matched.TotalEur.Equal(decimal.RequireFromString("360.00")))

	waiting, err := service.GetOrder(context.Background(), unreachable.ID, "investor-1")
	require.NoError(t, err)
	require.Equal(t, entities.OrderStatusPending, waiting.Status)
}

func TestExpireOverdueOrders(t *testing.T) {
	repo := newFakeOrdersRepository()
	service := newTestOrderService(repo, &fakeLedger{balance: decimal.NewFromInt(100)})

	order, err := service.CreateOrder(context.Background(), "investor-1", entities.CreateOrderInput{
		Side:          entities.OrderSideBuy,
		OrderType:     entities.OrderTypeLimit,
		TokenAmount:   decimal.NewFromInt(2),
		LimitPriceEur: pointy.Pointer(decimal.NewFromInt(60)),
	}, decimal.NewFromInt(65))
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	repo.orders[order.ID].ExpiresAt = &past

	count, err := service.ExpireOverdueOrders(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	expired, err := service.GetOrder(context.Background(), order.ID, "investor-1")
	require.NoError(t, err)
	require.Equal(t, entities.OrderStatusExpired, expired.Status)
}
