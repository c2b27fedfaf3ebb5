package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/sagarc03/filetrail"
	"github.com/sagarc03/filetrail/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_MigrateAndValidate(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Connect(ctx, ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, db.Ping(ctx))

	err = db.Validate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migrate is idempotent")
	assert.NoError(t, db.Validate(ctx))
}

func TestDatabase_FileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := tempDSN(t)

	db, err := sqlite.Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	created, err := db.GetRepo().Create(ctx, filetrail.UserFileEntry{OIDCSubject: "alice", Filename: "a", S3Key: "k"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = sqlite.Connect(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	require.NoError(t, db.Validate(ctx))

	key, err := db.GetRepo().StorageKey(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "k", key)
}

func TestValidateSchema_Mismatch(t *testing.T) {
	ctx := context.Background()
	raw, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	defer func() { _ = raw.Close() }()

	_, err = raw.ExecContext(ctx, `
		CREATE TABLE user_files (
			id TEXT PRIMARY KEY,
			oidc_subject TEXT NOT NULL,
			filename TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	require.NoError(t, err)

	err = sqlite.ValidateSchema(ctx, raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3_key: missing")
	assert.Contains(t, err.Error(), "id: expected type INTEGER, got TEXT")
	assert.Contains(t, err.Error(), "filename: expected nullable=false, got nullable=true")
}
