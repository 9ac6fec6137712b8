package usecases

import (
	"fmt"

	"github.com/goldvault/investor-dashboard/backend/internal/entities"
)

// orderTransitions is the full lifecycle: pending is the only non-terminal
// status, everything it can reach is terminal.
var orderTransitions = map[entities.OrderStatus][]entities.OrderStatus{
	entities.OrderStatusPending: {
		entities.OrderStatusFilled,
		entities.OrderStatusCancelled,
		entities.OrderStatusRejected,
		entities.OrderStatusExpired,
	},
}

// CanTransition reports whether moving an order from one status to another is legal.
func CanTransition(from, to entities.OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CancelGuard checks that an order may still be cancelled. The returned error
// names the current status so callers can tell why the cancel was refused.
func CancelGuard(order *entities.Order) error {
	if !CanTransition(order.Status, entities.OrderStatusCancelled) {
		return fmt.Errorf("%w: cannot cancel an order with status %q", entities.ErrIllegalTransition, order.Status)
	}
	return nil
}
