package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/proplanet/ecoledger/adapters/memory"
	pgxadapter "github.com/proplanet/ecoledger/adapters/pgx"
	"github.com/proplanet/ecoledger/adapters/sqlite"
	"github.com/proplanet/ecoledger/core"
	"github.com/proplanet/ecoledger/pkg/config"
)

// openStorage opens the configured store. The returned func releases it.
func openStorage(ctx context.Context, cfg *config.Config) (core.StorageAdapter, func(), error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := pgxadapter.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using postgres storage")
		return db, db.Close, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("using sqlite storage", "path", cfg.SQLitePath)
		return db, func() {
			if err := db.Close(); err != nil {
				slog.Error("failed to close sqlite", "error", err)
			}
		}, nil

	case config.DriverMemory:
		slog.Warn("using in-memory storage, balances are lost on restart")
		return memory.New(), func() {}, nil
	}

	return nil, nil, fmt.Errorf("%w: %s", config.ErrUnknownDriver, cfg.StorageDriver)
}

// migrate applies the schema when the store owns one.
func migrate(ctx context.Context, db core.StorageAdapter) error {
	m, ok := db.(core.Migrator)
	if !ok {
		return nil
	}
	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
