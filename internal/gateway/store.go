// ABOUTME: Opens the configured store driver
// ABOUTME: SQLite by path or PostgreSQL by DSN, both migrated on open

package gateway

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2389/promptmesh-gateway/internal/config"
	"github.com/2389/promptmesh-gateway/internal/store"
	"github.com/2389/promptmesh-gateway/internal/store/postgres"
)

// OpenStore creates and returns a store based on config. The pool is non-nil
// only for the postgres driver.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, *pgxpool.Pool, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		s, err := store.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing store: %w", err)
		}
		return s, nil, nil

	case config.DriverPostgres:
		s, err := postgres.New(ctx, &postgres.PoolConfig{
			ConnString: cfg.DSN,
			MaxConns:   cfg.MaxConns,
			MinConns:   cfg.MinConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("initializing store: %w", err)
		}
		return s, s.Pool(), nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
