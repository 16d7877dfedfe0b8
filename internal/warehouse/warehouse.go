package warehouse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/config"
)

// Connect creates a connection pool to the analytics warehouse.
func Connect(ctx context.Context, cfg config.WarehouseConfig) (*pgxpool.Pool, error) {
	connStr := BuildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}

	return pool, nil
}

// Provision creates the ticker table if it does not already exist. The DDL
// is idempotent; provisioning runs once at startup before the pipeline
// starts, and query-side consumers pick the table up from there.
func Provision(ctx context.Context, cfg config.WarehouseConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, tickerTableDDL(cfg.Table)); err != nil {
		return fmt.Errorf("create table %s: %w", cfg.Table, err)
	}

	logger.Info("warehouse provisioned",
		"host", cfg.Host,
		"database", cfg.Name,
		"table", cfg.Table,
	)
	return nil
}

// tickerTableDDL returns the schema matching normalize.Record: double
// precision for prices and volumes, bigint for trade IDs/counts and
// millisecond timestamps.
func tickerTableDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	event                text,
	event_time           bigint,
	symbol               text,
	price_change         double precision,
	price_change_percent double precision,
	weighted_avg_price   double precision,
	prev_close_price     double precision,
	last_price           double precision,
	last_qty             double precision,
	best_bid_price       double precision,
	best_bid_qty         double precision,
	best_ask_price       double precision,
	best_ask_qty         double precision,
	open_price           double precision,
	high_price           double precision,
	low_price            double precision,
	base_volume          double precision,
	quote_volume         double precision,
	open_time            bigint,
	close_time           bigint,
	first_trade_id       bigint,
	last_trade_id        bigint,
	trade_count          bigint
)`, table)
}
