package usecases

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goldvault/investor-dashboard/backend/internal/entities"
)

// Execution is the immediate outcome the engine decides for a freshly
// validated order. Nullable fields stay nil for orders left pending.
type Execution struct {
	Status           entities.OrderStatus
	GoldGrams        decimal.Decimal
	ExecutedPriceEur *decimal.Decimal
	TotalEur         *decimal.Decimal
	FilledAt         *time.Time
}

// ExecutionEngine decides fill price and status at creation time. It is
// side-effect free: price and clock come in as arguments so outcomes are
// deterministic.
type ExecutionEngine struct {
	gramsPerToken     decimal.Decimal
	rejectOnZeroPrice bool
}

// NewExecutionEngine builds an engine with an explicit token-to-grams
// conversion factor. rejectOnZeroPrice=false reproduces the permissive
// upstream behaviour where a market order fills at 0 when no price exists
// for the day.
func NewExecutionEngine(gramsPerToken decimal.Decimal, rejectOnZeroPrice bool) *ExecutionEngine {
	return &ExecutionEngine{gramsPerToken: gramsPerToken, rejectOnZeroPrice: rejectOnZeroPrice}
}

// Execute computes the outcome for an order request. Market orders fill at the
// current oracle price; limit and protected orders are left pending for the
// matcher.
func (e *ExecutionEngine) Execute(input entities.CreateOrderInput, currentPriceEur decimal.Decimal, now time.Time) (Execution, error) {
	grams := input.TokenAmount.Mul(e.gramsPerToken)

	if input.OrderType != entities.OrderTypeMarket {
		return Execution{Status: entities.OrderStatusPending, GoldGrams: grams}, nil
	}

	if e.rejectOnZeroPrice && currentPriceEur.IsZero() {
		return Execution{}, fmt.Errorf("%w: refusing to fill a market order at zero", entities.ErrZeroPriceRejected)
	}

	total := input.TokenAmount.Mul(currentPriceEur)
	filledAt := now

	return Execution{
		Status:           entities.OrderStatusFilled,
		GoldGrams:        grams,
		ExecutedPriceEur: &currentPriceEur,
		TotalEur:         &total,
		FilledAt:         &filledAt,
	}, nil
}

// ShouldFillPending reports whether a pending limit or protected order is
// executable at the given oracle price. A limit buy triggers when the price
// falls to the limit, a limit sell when it rises to it; protected orders
// additionally trigger when the price crosses their exit threshold adversely.
func ShouldFillPending(order *entities.Order, currentPriceEur decimal.Decimal) bool {
	if order.Status != entities.OrderStatusPending || order.LimitPriceEur == nil {
		return false
	}
	if currentPriceEur.IsZero() {
		return false
	}

	switch order.Side {
	case entities.OrderSideBuy:
		if currentPriceEur.LessThanOrEqual(*order.LimitPriceEur) {
			return true
		}
		if order.OrderType == entities.OrderTypeProtected && currentPriceEur.GreaterThanOrEqual(*order.ProtectedExitEur) {
			return true
		}
	case entities.OrderSideSell:
		if currentPriceEur.GreaterThanOrEqual(*order.LimitPriceEur) {
			return true
		}
		if order.OrderType == entities.OrderTypeProtected && currentPriceEur.LessThanOrEqual(*order.ProtectedExitEur) {
			return true
		}
	}

	return false
}
