package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/filetrail"
	"github.com/sagarc03/filetrail/database/postgres"
	"github.com/sagarc03/filetrail/database/sqlite"
)

// Config holds the configuration for connecting to the record database.
type Config struct {
	// Type specifies the database type: "postgres" or "sqlite"
	Type string `mapstructure:"type" yaml:"type" validate:"required,oneof=postgres sqlite"`
	// DSN is the data source name (connection string or file path)
	DSN string `mapstructure:"dsn" yaml:"dsn" validate:"required"`
	// AutoMigrate applies pending migrations when the server starts
	AutoMigrate bool `mapstructure:"auto_migrate" yaml:"auto_migrate"`
	// MaxConns caps the PostgreSQL pool size, zero keeps the driver default
	MaxConns int32 `mapstructure:"max_conns" yaml:"max_conns" validate:"gte=0"`
}

// Database is a handle on one record database backend.
type Database interface {
	// Ping verifies the database connection is alive.
	Ping(ctx context.Context) error
	// Migrate applies pending schema migrations.
	Migrate(ctx context.Context) error
	// Validate checks that the schema matches what the repository expects.
	Validate(ctx context.Context) error
	// GetRepo returns the repository backed by this database.
	GetRepo() filetrail.UserFileRepo
	// Close releases the underlying connections.
	Close() error
}

// Connect creates a handle for the configured backend. It does not contact
// the database; use Open for a ready to serve handle.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	switch cfg.Type {
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.DSN, cfg.MaxConns)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.Type)
	}
}

// Open connects, pings, migrates when cfg.AutoMigrate is set, and validates
// the schema. On any failure the handle is closed and the error returned.
func Open(ctx context.Context, cfg Config) (Database, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := prepare(ctx, db, cfg.AutoMigrate); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func prepare(ctx context.Context, db Database, migrate bool) error {
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if migrate {
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	if err := db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database: %w", err)
	}

	return nil
}
