// Package postgres implements the user file repository on PostgreSQL using pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sagarc03/filetrail"
	"github.com/sagarc03/filetrail/database/internal"
	"github.com/sagarc03/filetrail/database/postgres/migrations"
)

type database struct {
	pool *pgxpool.Pool
}

// Connect creates a PostgreSQL connection pool. maxConns of zero keeps the
// pgx default. The pool connects lazily; call Ping to check reachability.
func Connect(ctx context.Context, dsn string, maxConns int32) (*database, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &database{pool: pool}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Migrate applies the embedded goose migrations.
func (d *database) Migrate(ctx context.Context) error {
	// closing the bridge would close the pool
	db := stdlib.OpenDBFromPool(d.pool)

	if err := internal.Migrate(ctx, db, migrations.FS, "pgx"); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.pool)
}

// GetRepo returns the UserFileRepo for database operations.
func (d *database) GetRepo() filetrail.UserFileRepo {
	return NewRepo(d.pool)
}

// Close closes the database connection pool.
func (d *database) Close() error {
	d.pool.Close()
	return nil
}
