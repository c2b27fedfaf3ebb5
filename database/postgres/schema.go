package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/filetrail/database/internal"
)

var expectedTables = []struct {
	name   string
	schema internal.TableSchema
}{
	{
		name: "user_files",
		schema: internal.TableSchema{
			"id":           {Type: "bigint"},
			"oidc_subject": {Type: "text"},
			"filename":     {Type: "text"},
			"s3_key":       {Type: "text"},
			"created_at":   {Type: "timestamp with time zone"},
			"updated_at":   {Type: "timestamp with time zone"},
		},
	},
	{
		name: "gpx_info",
		schema: internal.TableSchema{
			"id":                  {Type: "bigint"},
			"user_file_id":        {Type: "bigint"},
			"duration_secs":       {Type: "double precision", Nullable: true},
			"distance_ft":         {Type: "double precision", Nullable: true},
			"gained_elevation_ft": {Type: "double precision", Nullable: true},
			"lost_elevation_ft":   {Type: "double precision", Nullable: true},
		},
	},
}

// ValidateSchema checks that user_files and gpx_info exist in the current
// schema with the expected columns, types and nullability.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, table := range expectedTables {
		actual, err := tableColumns(ctx, pool, table.name)
		if err != nil {
			return fmt.Errorf("validate schema %s: %w", table.name, err)
		}
		if len(actual) == 0 {
			return fmt.Errorf("validate schema: table %s does not exist", table.name)
		}
		if err := internal.CompareColumns(table.name, table.schema, actual); err != nil {
			return fmt.Errorf("validate schema: %w", err)
		}
	}

	return nil
}

func tableColumns(ctx context.Context, pool *pgxpool.Pool, table string) (internal.TableSchema, error) {
	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
	`, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	columns := internal.TableSchema{}
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns[name] = internal.Column{Type: dataType, Nullable: nullable == "YES"}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return columns, nil
}
