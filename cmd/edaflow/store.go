package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leofalp/edaflow/internal/config"
	"github.com/leofalp/edaflow/providers/reportstore"
	"github.com/leofalp/edaflow/providers/reportstore/inmemory"
	"github.com/leofalp/edaflow/providers/reportstore/pgstore"
	"github.com/leofalp/edaflow/providers/reportstore/sqlitestore"
)

// openStore opens the configured report store. The returned close function
// is never nil.
func openStore(ctx context.Context, cfg config.Config) (reportstore.Store, func(), error) {
	switch cfg.Store {
	case config.StoreSQLite:
		store, err := sqlitestore.Open(ctx, cfg.StoreDSN)
		if err != nil {
			return nil, func() {}, err
		}
		return store, func() { _ = store.Close() }, nil

	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.StoreDSN)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connect to postgres: %w", err)
		}
		store := pgstore.New(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		return store, pool.Close, nil

	default:
		return inmemory.New(), func() {}, nil
	}
}
