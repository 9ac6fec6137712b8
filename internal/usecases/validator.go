package usecases

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goldvault/investor-dashboard/backend/internal/core/ports"
	"github.com/goldvault/investor-dashboard/backend/internal/entities"
)

// ValidateOrderInput enforces the structural order rules before any side effect.
// It is a pure function; every failure wraps entities.ErrInvalidOrderShape.
func ValidateOrderInput(input entities.CreateOrderInput) error {
	if input.Side != entities.OrderSideBuy && input.Side != entities.OrderSideSell {
		return fmt.Errorf("%w: unknown side %q", entities.ErrInvalidOrderShape, input.Side)
	}

	switch input.OrderType {
	case entities.OrderTypeMarket:
		if input.LimitPriceEur != nil || input.ProtectedExitEur != nil {
			return fmt.Errorf("%w: market orders cannot have a limit or protected exit price", entities.ErrInvalidOrderShape)
		}
	case entities.OrderTypeLimit, entities.OrderTypeProtected:
		if input.LimitPriceEur == nil {
			return fmt.Errorf("%w: limit and protected orders require a limit price", entities.ErrInvalidOrderShape)
		}
	default:
		return fmt.Errorf("%w: unknown order type %q", entities.ErrInvalidOrderShape, input.OrderType)
	}

	if !input.TokenAmount.IsPositive() {
		return fmt.Errorf("%w: token amount must be positive", entities.ErrInvalidOrderShape)
	}
	if input.LimitPriceEur != nil && !input.LimitPriceEur.IsPositive() {
		return fmt.Errorf("%w: limit price must be positive", entities.ErrInvalidOrderShape)
	}
	if input.ProtectedExitEur != nil && !input.ProtectedExitEur.IsPositive() {
		return fmt.Errorf("%w: protected exit price must be positive", entities.ErrInvalidOrderShape)
	}

	if input.OrderType == entities.OrderTypeProtected {
		if input.ProtectedExitEur == nil {
			return fmt.Errorf("%w: protected orders require a protected exit price", entities.ErrInvalidOrderShape)
		}
		if err := validateProtectedExit(input); err != nil {
			return err
		}
	}

	if input.InvestorNote != nil && utf8.RuneCountInString(strings.TrimSpace(*input.InvestorNote)) > ports.MaxInvestorNoteLen {
		return fmt.Errorf("%w: investor note exceeds %d characters", entities.ErrInvalidOrderShape, ports.MaxInvestorNoteLen)
	}

	return nil
}

// validateProtectedExit checks the exit threshold sits on the adverse side of
// the limit price: a protected sell exits below its limit, a protected buy
// exits above it.
func validateProtectedExit(input entities.CreateOrderInput) error {
	limit := *input.LimitPriceEur
	exit := *input.ProtectedExitEur

	switch input.Side {
	case entities.OrderSideSell:
		if exit.GreaterThanOrEqual(limit) {
			return fmt.Errorf("%w: protected exit must be below the limit price for sell orders", entities.ErrInvalidOrderShape)
		}
	case entities.OrderSideBuy:
		if exit.LessThanOrEqual(limit) {
			return fmt.Errorf("%w: protected exit must be above the limit price for buy orders", entities.ErrInvalidOrderShape)
		}
	}

	return nil
}
