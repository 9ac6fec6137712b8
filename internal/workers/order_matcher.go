package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/goldvault/investor-dashboard/backend/internal/core/ports"
)

// OrderMatcher is the pluggable evaluator that advances pending limit and
// protected orders: every interval it compares the oracle price against each
// open order's thresholds and fills the ones that crossed. It is disabled by
// default so the service behaves like the original engine unless opted in.
type OrderMatcher struct {
	logger       *slog.Logger
	orderService ports.OrderService
	priceService ports.PriceService

	interval time.Duration
}

func NewOrderMatcher(logger *slog.Logger, orderService ports.OrderService, priceService ports.PriceService, interval time.Duration) *OrderMatcher {
	return &OrderMatcher{
		logger:       logger,
		orderService: orderService,
		priceService: priceService,
		interval:     interval,
	}
}

// Start begins the periodic matching pass and blocks until the context is done.
func (om *OrderMatcher) Start(ctx context.Context) {
	om.logger.Info("Starting order matcher worker", "interval", om.interval.String())

	ticker := time.NewTicker(om.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			om.logger.Info("Order matcher worker stopped")
			return
		case <-ticker.C:
			if err := om.matchOnce(ctx); err != nil {
				om.logger.Error("Matching pass failed", "error", err)
			}
		}
	}
}

func (om *OrderMatcher) matchOnce(ctx context.Context) error {
	price, err := om.priceService.CurrentPricePerGram(ctx)
	if err != nil {
		return err
	}
	if price.IsZero() {
		om.logger.Debug("No gold price for today, skipping matching pass")
		return nil
	}

	filled, err := om.orderService.MatchOpenOrders(ctx, price)
	if err != nil {
		return err
	}

	if filled > 0 {
		om.logger.Info("Matched open orders", "count", filled, "price_per_gram_eur", price.String())
	}

	return nil
}
