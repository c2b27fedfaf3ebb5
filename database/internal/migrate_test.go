package internal_test

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/sagarc03/filetrail/database/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

var testMigrations = fstest.MapFS{
	"00001_widgets.sql": &fstest.MapFile{Data: []byte(`-- +goose Up
CREATE TABLE widgets (id INTEGER PRIMARY KEY);

-- +goose Down
DROP TABLE widgets;
`)},
}

func TestMigrate(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	require.NoError(t, internal.Migrate(ctx, db, testMigrations, "sqlite3"))

	var name string
	err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'widgets'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "widgets", name)

	// already applied migrations are skipped
	require.NoError(t, internal.Migrate(ctx, db, testMigrations, "sqlite3"))
}

func TestMigrate_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown dialect", func(t *testing.T) {
		err := internal.Migrate(ctx, openMemory(t), testMigrations, "oracle-ish")
		assert.Error(t, err)
	})

	t.Run("broken migration", func(t *testing.T) {
		broken := fstest.MapFS{
			"00001_broken.sql": &fstest.MapFile{Data: []byte("-- +goose Up\nCREATE TABLE (;\n")},
		}
		err := internal.Migrate(ctx, openMemory(t), broken, "sqlite3")
		assert.Error(t, err)
	})
}
