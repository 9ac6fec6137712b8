package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/goldvault/investor-dashboard/backend/internal/core/ports"
)

// OrderExpirer periodically moves pending orders past their expires_at into
// the expired status. Orders created without an expiry are never touched.
type OrderExpirer struct {
	logger       *slog.Logger
	orderService ports.OrderService

	interval time.Duration
}

func NewOrderExpirer(logger *slog.Logger, orderService ports.OrderService, interval time.Duration) *OrderExpirer {
	return &OrderExpirer{
		logger:       logger,
		orderService: orderService,
		interval:     interval,
	}
}

// Start begins the periodic expiry sweep and blocks until the context is done.
func (oe *OrderExpirer) Start(ctx context.Context) {
	oe.logger.Info("Starting order expirer worker", "interval", oe.interval.String())

	if err := oe.sweep(ctx); err != nil {
		oe.logger.Error("Initial expiry sweep failed", "error", err)
	}

	ticker := time.NewTicker(oe.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			oe.logger.Info("Order expirer worker stopped")
			return
		case <-ticker.C:
			if err := oe.sweep(ctx); err != nil {
				oe.logger.Error("Expiry sweep failed", "error", err)
			}
		}
	}
}

func (oe *OrderExpirer) sweep(ctx context.Context) error {
	count, err := oe.orderService.ExpireOverdueOrders(ctx)
	if err != nil {
		return err
	}

	if count > 0 {
		oe.logger.Info("Expired overdue orders", "count", count)
	} else {
		oe.logger.Debug("No overdue orders to expire")
	}

	return nil
}
