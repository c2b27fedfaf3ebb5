package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sagarc03/filetrail"
)

// Timestamps are stored as RFC 3339 text in UTC, set by the repo.
const timeFormat = time.RFC3339Nano

type Repo struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db, now: time.Now}
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a transaction, committing on success and rolling back on
// error or panic.
func withTx(ctx context.Context, db *sql.DB, fn func(tx dbtx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}

func (r *Repo) ListByOwner(ctx context.Context, subject string) ([]filetrail.UserFileRow, error) {
	query := `
		SELECT f.id, f.oidc_subject, f.filename, f.s3_key, f.created_at, f.updated_at,
			g.duration_secs, g.distance_ft, g.gained_elevation_ft, g.lost_elevation_ft
		FROM user_files f
		LEFT JOIN gpx_info g ON g.user_file_id = f.id
		WHERE f.oidc_subject = ?
	`

	rows, err := r.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("list by owner: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []filetrail.UserFileRow
	for rows.Next() {
		var (
			f                    filetrail.UserFileRow
			createdAt, updatedAt string
		)
		err := rows.Scan(
			&f.ID, &f.OIDCSubject, &f.Filename, &f.S3Key, &createdAt, &updatedAt,
			&f.GpxDurationSecs, &f.GpxDistanceFt, &f.GpxGainedElevationFt, &f.GpxLostElevationFt,
		)
		if err != nil {
			return nil, fmt.Errorf("list by owner: scan: %w", err)
		}

		if f.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("list by owner: parse created_at: %w", err)
		}
		if f.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
			return nil, fmt.Errorf("list by owner: parse updated_at: %w", err)
		}

		result = append(result, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list by owner: %w", err)
	}

	return result, nil
}

func (r *Repo) StorageKey(ctx context.Context, subject string, id int64) (string, error) {
	var key string
	err := r.db.QueryRowContext(ctx,
		`SELECT s3_key FROM user_files WHERE id = ? AND oidc_subject = ?`,
		id, subject,
	).Scan(&key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", filetrail.ErrNotFound
		}
		return "", fmt.Errorf("storage key: %w", err)
	}

	return key, nil
}

func (r *Repo) Create(ctx context.Context, entry filetrail.UserFileEntry) (filetrail.UserFile, error) {
	now := r.now().UTC()
	stamp := now.Format(timeFormat)

	f := filetrail.UserFile{
		OIDCSubject: entry.OIDCSubject,
		Filename:    entry.Filename,
		S3Key:       entry.S3Key,
	}

	err := withTx(ctx, r.db, func(tx dbtx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO user_files (oidc_subject, filename, s3_key, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id
		`, entry.OIDCSubject, entry.Filename, entry.S3Key, stamp, stamp).Scan(&f.ID)
		if err != nil {
			return fmt.Errorf("insert user file: %w", err)
		}

		if entry.GpxInfo == nil {
			return nil
		}

		g := *entry.GpxInfo
		g.UserFileID = f.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO gpx_info (user_file_id, duration_secs, distance_ft, gained_elevation_ft, lost_elevation_ft)
			VALUES (?, ?, ?, ?, ?)
		`, g.UserFileID, g.DurationSecs, g.DistanceFt, g.GainedElevationFt, g.LostElevationFt)
		if err != nil {
			return fmt.Errorf("insert gpx info: %w", err)
		}
		f.GpxInfo = &g

		return nil
	})
	if err != nil {
		return filetrail.UserFile{}, fmt.Errorf("create: %w", err)
	}

	// round trip through the stored text so callers see what List returns
	f.CreatedAt, _ = time.Parse(timeFormat, stamp)
	f.UpdatedAt = f.CreatedAt

	return f, nil
}
