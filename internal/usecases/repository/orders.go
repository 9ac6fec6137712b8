package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	tx "github.com/Thiht/transactor/pgx"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.openly.dev/pointy"

	"github.com/goldvault/investor-dashboard/backend/internal/entities"
	"github.com/goldvault/investor-dashboard/backend/pkg/database"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var orderColumns = []string{
	"id", "investor_id", "side", "order_type", "status",
	"token_amount", "gold_grams",
	"limit_price_eur", "protected_exit_eur",
	"executed_price_eur", "total_eur",
	"investor_note",
	"created_at", "updated_at", "filled_at", "expires_at",
}

type OrdersRepository struct {
	logger *slog.Logger

	db         tx.DBGetter
	transactor *tx.Transactor
}

func NewOrdersRepository(logger *slog.Logger, pg *database.Postgres) *OrdersRepository {
	return &OrdersRepository{logger: logger, db: pg.DBGetter, transactor: pg.Transactor}
}

func (r *OrdersRepository) FindInvestorOrders(ctx context.Context, investorID string, limit int) ([]entities.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"investor_id": investorID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build orders query: %w", err)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	orders, err := pgx.CollectRows(rows, pgx.RowToStructByName[entities.Order])
	if err != nil {
		r.logger.Error("failed to collect orders rows", "error", err)
		return nil, err
	}

	return orders, nil
}

// FindOrder returns the order only when it belongs to the investor; a row
// owned by someone else is indistinguishable from a missing one.
func (r *OrdersRepository) FindOrder(ctx context.Context, id, investorID string) (*entities.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id, "investor_id": investorID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build order query: %w", err)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	order, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entities.Order])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// InsertOrder persists a new order and its creation event in one transaction.
func (r *OrdersRepository) InsertOrder(ctx context.Context, order *entities.Order) (*entities.Order, error) {
	var persisted entities.Order

	err := r.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		query, args, err := psql.Insert("orders").
			Columns("id", "investor_id", "side", "order_type", "status",
				"token_amount", "gold_grams",
				"limit_price_eur", "protected_exit_eur",
				"executed_price_eur", "total_eur",
				"investor_note", "filled_at", "expires_at").
			Values(uuid.NewString(), order.InvestorID, order.Side, order.OrderType, order.Status,
				order.TokenAmount, order.GoldGrams,
				order.LimitPriceEur, order.ProtectedExitEur,
				order.ExecutedPriceEur, order.TotalEur,
				order.InvestorNote, order.FilledAt, order.ExpiresAt).
			Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert query: %w", err)
		}

		rows, err := r.db(ctx).Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		persisted, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[entities.Order])
		if err != nil {
			return fmt.Errorf("failed to read inserted order: %w", err)
		}

		return r.recordEvent(ctx, persisted.ID, nil, persisted.Status)
	})
	if err != nil {
		return nil, err
	}

	return &persisted, nil
}

// CancelPendingOrder flips a pending order to cancelled. The status guard in
// the WHERE clause linearizes concurrent cancel attempts: the loser matches
// zero rows and gets nil back.
func (r *OrdersRepository) CancelPendingOrder(ctx context.Context, id, investorID string) (*entities.Order, error) {
	var cancelled *entities.Order

	err := r.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		query := `UPDATE orders
		             SET status = 'cancelled', updated_at = NOW()
		           WHERE id = $1 AND investor_id = $2 AND status = 'pending'
		       RETURNING ` + strings.Join(orderColumns, ", ")

		rows, err := r.db(ctx).Query(ctx, query, id, investorID)
		if err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}

		order, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entities.Order])
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		cancelled = &order
		return r.recordEvent(ctx, order.ID, pointy.Pointer(entities.OrderStatusPending), entities.OrderStatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

// FillPendingOrder executes a pending order at the given price. Guarded by
// status='pending' so it cannot race a concurrent cancel or expiry.
func (r *OrdersRepository) FillPendingOrder(ctx context.Context, id string, priceEur, totalEur decimal.Decimal, now time.Time) (*entities.Order, error) {
	var filled *entities.Order

	err := r.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		query := `UPDATE orders
		             SET status = 'filled',
		                 executed_price_eur = $2,
		                 total_eur = $3,
		                 filled_at = $4,
		                 updated_at = $4
		           WHERE id = $1 AND status = 'pending'
		       RETURNING ` + strings.Join(orderColumns, ", ")

		rows, err := r.db(ctx).Query(ctx, query, id, priceEur, totalEur, now)
		if err != nil {
			return fmt.Errorf("failed to fill order: %w", err)
		}

		order, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entities.Order])
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		filled = &order
		return r.recordEvent(ctx, order.ID, pointy.Pointer(entities.OrderStatusPending), entities.OrderStatusFilled)
	})
	if err != nil {
		return nil, err
	}

	return filled, nil
}

// FindOpenOrders returns every pending limit/protected order across investors,
// oldest first, for the matcher.
func (r *OrdersRepository) FindOpenOrders(ctx context.Context) ([]entities.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"status": entities.OrderStatusPending}).
		Where(sq.NotEq{"order_type": entities.OrderTypeMarket}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build open orders query: %w", err)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	orders, err := pgx.CollectRows(rows, pgx.RowToStructByName[entities.Order])
	if err != nil {
		r.logger.Error("failed to collect open orders rows", "error", err)
		return nil, err
	}

	return orders, nil
}

// ExpireOverdueOrders expires every pending order past its expires_at and
// records the transition events in the same statement.
func (r *OrdersRepository) ExpireOverdueOrders(ctx context.Context, now time.Time) (int64, error) {
	var count int64

	err := r.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		query := `WITH expired AS (
		            UPDATE orders
		               SET status = 'expired', updated_at = $1
		             WHERE status = 'pending' AND expires_at IS NOT NULL AND expires_at <= $1
		         RETURNING id
		          )
		          INSERT INTO order_events (order_id, from_status, to_status, occurred_at)
		          SELECT id, 'pending', 'expired', $1 FROM expired`

		tag, err := r.db(ctx).Exec(ctx, query, now)
		if err != nil {
			return fmt.Errorf("failed to expire orders: %w", err)
		}

		count = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *OrdersRepository) recordEvent(ctx context.Context, orderID string, from *entities.OrderStatus, to entities.OrderStatus) error {
	_, err := r.db(ctx).Exec(ctx,
		"INSERT INTO order_events (order_id, from_status, to_status) VALUES ($1, $2, $3)",
		orderID, from, to)
	if err != nil {
		return fmt.Errorf("failed to record order event: %w", err)
	}
	return nil
}
