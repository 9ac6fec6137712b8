package database

import (
	"context"
	"fmt"
	"time"

	tx "github.com/Thiht/transactor/pgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cfg "github.com/goldvault/investor-dashboard/backend/config"
)

// Postgres wraps the pgx pool together with the transactor pair every
// repository is built on. DBGetter resolves to the pool outside a transaction
// and to the transaction handle inside one, so repositories never care which.
type Postgres struct {
	Pool       *pgxpool.Pool
	DBGetter   tx.DBGetter
	Transactor *tx.Transactor
}

type Option func(*pgxpool.Config)

func MaxPoolSize(size int32) Option {
	return func(c *pgxpool.Config) {
		c.MaxConns = size
	}
}

func ConnTimeout(seconds int) Option {
	return func(c *pgxpool.Config) {
		c.ConnConfig.ConnectTimeout = time.Duration(seconds) * time.Second
	}
}

func HealthCheckPeriod(minutes int) Option {
	return func(c *pgxpool.Config) {
		c.HealthCheckPeriod = time.Duration(minutes) * time.Minute
	}
}

func Isolation(level pgx.TxIsoLevel) Option {
	return func(c *pgxpool.Config) {
		c.ConnConfig.RuntimeParams["default_transaction_isolation"] = string(level)
	}
}

// New connects to Postgres and returns the configured pool wrapper.
func New(config *cfg.Config, opts ...Option) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(config.DB.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	for _, opt := range opts {
		opt(poolConfig)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	transactor, dbGetter := tx.NewTransactorFromPool(pool)

	return &Postgres{
		Pool:       pool,
		DBGetter:   dbGetter,
		Transactor: transactor,
	}, nil
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}
