// Package database provides PostgreSQL connection management using pgx.
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds PostgreSQL connection settings.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// DSN builds a libpq-compatible connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// NewPool creates and validates a pgxpool connection pool.
// It retries up to 5 times to accommodate containers starting up.
func NewPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	poolCfg.MaxConns = 10
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		log.Printf("[db] connect attempt %d/5 failed: %v, retrying in 2s", attempt, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS reservations (
	id                   UUID PRIMARY KEY,
	confirmation_number  TEXT NOT NULL UNIQUE,
	unit_id              TEXT NOT NULL,
	guest_name           TEXT NOT NULL DEFAULT '',
	guest_email          TEXT NOT NULL DEFAULT '',
	guest_phone          TEXT NOT NULL DEFAULT '',
	guest_country        TEXT NOT NULL DEFAULT '',
	adults               INTEGER NOT NULL,
	children             INTEGER NOT NULL,
	children_ages        INTEGER[],
	effective_adults     INTEGER NOT NULL,
	effective_children   INTEGER NOT NULL,
	check_in             TIMESTAMPTZ NOT NULL,
	check_out            TIMESTAMPTZ NOT NULL,
	nights               INTEGER NOT NULL,
	price                JSONB NOT NULL,
	status               TEXT NOT NULL,
	payment_status       TEXT NOT NULL,
	notes                TEXT NOT NULL DEFAULT '',
	special_requests     TEXT NOT NULL DEFAULT '',
	cancellation_reason  TEXT NOT NULL DEFAULT '',
	refund_amount        DOUBLE PRECISION,
	checked_in_by        TEXT NOT NULL DEFAULT '',
	checked_out_by       TEXT NOT NULL DEFAULT '',
	extra_charges        DOUBLE PRECISION NOT NULL DEFAULT 0,
	charges_note         TEXT NOT NULL DEFAULT '',
	created_at           TIMESTAMPTZ NOT NULL,
	last_updated         TIMESTAMPTZ NOT NULL,
	cancelled_at         TIMESTAMPTZ,
	checked_in_at        TIMESTAMPTZ,
	checked_out_at       TIMESTAMPTZ,
	CHECK (check_in < check_out)
);

CREATE INDEX IF NOT EXISTS reservations_unit_dates_idx
	ON reservations (unit_id, check_in, check_out)
	WHERE status <> 'cancelled';

CREATE TABLE IF NOT EXISTS revenue_entries (
	id               UUID PRIMARY KEY,
	type             TEXT NOT NULL,
	source           TEXT NOT NULL,
	source_id        TEXT NOT NULL DEFAULT '',
	idempotency_key  TEXT UNIQUE,
	description      TEXT NOT NULL,
	amount           DOUBLE PRECISION NOT NULL,
	currency         TEXT NOT NULL,
	amount_usd       DOUBLE PRECISION NOT NULL,
	exchange_rate    DOUBLE PRECISION NOT NULL,
	entry_date       TIMESTAMPTZ NOT NULL,
	payment_method   TEXT NOT NULL DEFAULT '',
	tags             TEXT[],
	created_at       TIMESTAMPTZ NOT NULL
);
`

// Migrate creates the tables used by the Postgres repositories if they do
// not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
