package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/filetrail/database/internal"
)

var expectedTables = []struct {
	name   string
	schema internal.TableSchema
}{
	{
		name: "user_files",
		schema: internal.TableSchema{
			"id":           {Type: "INTEGER"},
			"oidc_subject": {Type: "TEXT"},
			"filename":     {Type: "TEXT"},
			"s3_key":       {Type: "TEXT"},
			"created_at":   {Type: "TEXT"},
			"updated_at":   {Type: "TEXT"},
		},
	},
	{
		name: "gpx_info",
		schema: internal.TableSchema{
			"id":                  {Type: "INTEGER"},
			"user_file_id":        {Type: "INTEGER"},
			"duration_secs":       {Type: "REAL", Nullable: true},
			"distance_ft":         {Type: "REAL", Nullable: true},
			"gained_elevation_ft": {Type: "REAL", Nullable: true},
			"lost_elevation_ft":   {Type: "REAL", Nullable: true},
		},
	},
}

// ValidateSchema checks that user_files and gpx_info exist with the expected
// columns, declared types and nullability.
func ValidateSchema(ctx context.Context, db *sql.DB) error {
	for _, table := range expectedTables {
		actual, err := tableColumns(ctx, db, table.name)
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

func tableColumns(ctx context.Context, db *sql.DB, table string) (internal.TableSchema, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, type, "notnull", pk FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns := internal.TableSchema{}
	for rows.Next() {
		var (
			name, colType string
			notNull, pk   int
		)
		if err := rows.Scan(&name, &colType, &notNull, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		// an INTEGER PRIMARY KEY is the rowid and can never be null
		columns[name] = internal.Column{Type: colType, Nullable: notNull == 0 && pk == 0}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return columns, nil
}
