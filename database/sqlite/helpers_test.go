package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sagarc03/filetrail"
	"github.com/sagarc03/filetrail/database/sqlite"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

// setupTestRepo migrates a fresh in-memory database and returns its repo.
func setupTestRepo(t *testing.T) filetrail.UserFileRepo {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Connect(ctx, ":memory:")
	require.NoError(t, err, "failed to connect")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx), "failed to migrate")

	return db.GetRepo()
}

func tempDSN(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "filetrail.db")
}
