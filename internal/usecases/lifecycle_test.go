package usecases

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goldvault/investor-dashboard/backend/internal/entities"
)

func TestCanTransition(t *testing.T) {
	terminal := []entities.OrderStatus{
		entities.OrderStatusFilled,
		entities.OrderStatusCancelled,
		entities.OrderStatusRejected,
		entities.OrderStatusExpired,
	}

	t.Run("pending can reach every terminal status", func(t *testing.T) {
		for _, to := range terminal {
			require.True(t, CanTransition(entities.OrderStatusPending, to), "pending -> %s", to)
		}
	})

	t.Run("terminal statuses allow nothing", func(t *testing.T) {
		for _, from := range terminal {
			for _, to := range append(terminal, entities.OrderStatusPending) {
				require.False(t, CanTransition(from, to), "%s -> %s should be illegal", from, to)
			}
		}
	})
}

func TestCancelGuard(t *testing.T) {
	t.Run("pending order may be cancelled", func(t *testing.T) {
		require.NoError(t, CancelGuard(&entities.Order{Status: entities.OrderStatusPending}))
	})

	t.Run("error names the current status", func(t *testing.T) {
		for _, status := range []entities.OrderStatus{
			entities.OrderStatusFilled,
			entities.OrderStatusCancelled,
			entities.OrderStatusRejected,
			entities.OrderStatusExpired,
		} {
			err := CancelGuard(&entities.Order{Status: status})
			require.ErrorIs(t, err, entities.ErrIllegalTransition)
			require.Contains(t, err.Error(), string(status))
		}
	})
}
