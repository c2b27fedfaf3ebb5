// Package sqlite implements the user file repository on SQLite using
// modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sagarc03/filetrail"
	"github.com/sagarc03/filetrail/database/internal"
	"github.com/sagarc03/filetrail/database/sqlite/migrations"

	_ "modernc.org/sqlite" // SQLite driver
)

type database struct {
	db *sql.DB
}

// Connect opens a SQLite database. Foreign keys are enabled on every
// connection. An in-memory database is limited to one connection, since each
// connection would otherwise see its own empty database.
func Connect(ctx context.Context, dsn string) (*database, error) {
	db, err := sql.Open("sqlite", withForeignKeys(dsn))
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	return &database{db: db}, nil
}

func withForeignKeys(dsn string) string {
	const pragma = "_pragma=foreign_keys(1)"
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + pragma
	}
	return dsn + "?" + pragma
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate applies the embedded goose migrations.
func (d *database) Migrate(ctx context.Context) error {
	if err := internal.Migrate(ctx, d.db, migrations.FS, "sqlite3"); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db)
}

// GetRepo returns the UserFileRepo for database operations.
func (d *database) GetRepo() filetrail.UserFileRepo {
	return NewRepo(d.db)
}

// Close closes the database connection.
func (d *database) Close() error {
	return d.db.Close()
}
