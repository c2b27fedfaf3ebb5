package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/filetrail"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) ListByOwner(ctx context.Context, subject string) ([]filetrail.UserFileRow, error) {
	query := `
		SELECT f.id, f.oidc_subject, f.filename, f.s3_key, f.created_at, f.updated_at,
			g.duration_secs, g.distance_ft, g.gained_elevation_ft, g.lost_elevation_ft
		FROM user_files f
		LEFT JOIN gpx_info g ON g.user_file_id = f.id
		WHERE f.oidc_subject = $1
	`

	rows, err := r.pool.Query(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("list by owner: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (filetrail.UserFileRow, error) {
		var f filetrail.UserFileRow
		err := row.Scan(
			&f.ID, &f.OIDCSubject, &f.Filename, &f.S3Key, &f.CreatedAt, &f.UpdatedAt,
			&f.GpxDurationSecs, &f.GpxDistanceFt, &f.GpxGainedElevationFt, &f.GpxLostElevationFt,
		)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("list by owner: %w", err)
	}

	return result, nil
}

func (r *Repo) StorageKey(ctx context.Context, subject string, id int64) (string, error) {
	var key string
	err := r.pool.QueryRow(ctx,
		`SELECT s3_key FROM user_files WHERE id = $1 AND oidc_subject = $2`,
		id, subject,
	).Scan(&key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", filetrail.ErrNotFound
		}
		return "", fmt.Errorf("storage key: %w", err)
	}

	return key, nil
}

func (r *Repo) Create(ctx context.Context, entry filetrail.UserFileEntry) (filetrail.UserFile, error) {
	var f filetrail.UserFile

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO user_files (oidc_subject, filename, s3_key)
			VALUES ($1, $2, $3)
			RETURNING id, oidc_subject, filename, s3_key, created_at, updated_at
		`, entry.OIDCSubject, entry.Filename, entry.S3Key).Scan(
			&f.ID, &f.OIDCSubject, &f.Filename, &f.S3Key, &f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert user file: %w", err)
		}

		if entry.GpxInfo == nil {
			return nil
		}

		g := filetrail.GpxInfo{}
		err = tx.QueryRow(ctx, `
			INSERT INTO gpx_info (user_file_id, duration_secs, distance_ft, gained_elevation_ft, lost_elevation_ft)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING user_file_id, duration_secs, distance_ft, gained_elevation_ft, lost_elevation_ft
		`, f.ID, entry.GpxInfo.DurationSecs, entry.GpxInfo.DistanceFt,
			entry.GpxInfo.GainedElevationFt, entry.GpxInfo.LostElevationFt,
		).Scan(&g.UserFileID, &g.DurationSecs, &g.DistanceFt, &g.GainedElevationFt, &g.LostElevationFt)
		if err != nil {
			return fmt.Errorf("insert gpx info: %w", err)
		}
		f.GpxInfo = &g

		return nil
	})
	if err != nil {
		return filetrail.UserFile{}, fmt.Errorf("create: %w", err)
	}

	return f, nil
}
