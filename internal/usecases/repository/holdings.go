package repository

import (
	"context"
	"errors"
	"log/slog"

	tx "github.com/Thiht/transactor/pgx"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/goldvault/investor-dashboard/backend/internal/entities"
	"github.com/goldvault/investor-dashboard/backend/pkg/database"
)

type HoldingsRepository struct {
	logger *slog.Logger

	db tx.DBGetter
}

func NewHoldingsRepository(logger *slog.Logger, pg *database.Postgres) *HoldingsRepository {
	return &HoldingsRepository{logger: logger, db: pg.DBGetter}
}

// FindHoldings returns the investor's position joined with the current day's
// gold price. A missing price row values the position at zero, mirroring the
// pricing feed contract.
func (r *HoldingsRepository) FindHoldings(ctx context.Context, investorID string) (*entities.Holdings, error) {
	query := `SELECT h.investor_id,
	                 h.wallet_address,
	                 h.token_balance,
	                 h.gold_grams,
	                 COALESCE(gp.price_per_gram_eur, 0) AS price_per_gram_eur,
	                 COALESCE(h.gold_grams * gp.price_per_gram_eur, 0) AS current_value_eur,
	                 h.last_updated
	            FROM holdings h
	       LEFT JOIN gold_prices gp ON gp.price_date = CURRENT_DATE
	           WHERE h.investor_id = $1`

	rows, err := r.db(ctx).Query(ctx, query, investorID)
	if err != nil {
		return nil, err
	}

	holdings, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[entities.Holdings])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrHoldingsNotFound
	}
	if err != nil {
		r.logger.Error("failed to collect holdings row", "error", err)
		return nil, err
	}

	return &holdings, nil
}

// FindCurrentPricePerGram returns today's gold price, zero when none is recorded.
func (r *HoldingsRepository) FindCurrentPricePerGram(ctx context.Context) (decimal.Decimal, error) {
	var price decimal.Decimal

	err := r.db(ctx).QueryRow(ctx,
		"SELECT price_per_gram_eur FROM gold_prices WHERE price_date = CURRENT_DATE").Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}

	return price, nil
}
