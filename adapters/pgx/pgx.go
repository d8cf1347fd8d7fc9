// Package pgx stores the ledger in Postgres through a pgx connection pool.
package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/proplanet/ecoledger/core"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var (
	_ core.StorageAdapter = (*Adapter)(nil)
	_ core.Migrator       = (*Adapter)(nil)
)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}

// Connect opens a pool for databaseURL and checks that the server answers.
func Connect(ctx context.Context, databaseURL string) (*Adapter, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return New(pool), nil
}

func (a *Adapter) Close() {
	a.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL DEFAULT '',
	eco_coins  BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS accounts (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users (id),
	provider_id TEXT NOT NULL,
	account_id  TEXT NOT NULL,
	password    TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (provider_id, account_id)
);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users (id),
	token_hash TEXT NOT NULL UNIQUE,
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS redemptions (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL REFERENCES users (id),
	coins        BIGINT NOT NULL CHECK (coins > 0),
	amount_minor BIGINT NOT NULL,
	method       TEXT NOT NULL,
	destination  TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'pending',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS redemptions_user_created_idx ON redemptions (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS feedback (
	id         TEXT PRIMARY KEY,
	user_id    TEXT REFERENCES users (id),
	rating     SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
	message    TEXT NOT NULL,
	type       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the schema when it does not exist yet.
func (a *Adapter) Migrate(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
