package internal_test

import (
	"testing"

	"github.com/sagarc03/filetrail/database/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareColumns(t *testing.T) {
	expected := internal.TableSchema{
		"id":       {Type: "bigint"},
		"filename": {Type: "text"},
		"distance": {Type: "double precision", Nullable: true},
	}

	t.Run("match with extra columns", func(t *testing.T) {
		actual := internal.TableSchema{
			"id":       {Type: "BIGINT"},
			"filename": {Type: "text"},
			"distance": {Type: "double precision", Nullable: true},
			"extra":    {Type: "text", Nullable: true},
		}
		assert.NoError(t, internal.CompareColumns("t", expected, actual))
	})

	t.Run("mismatches", func(t *testing.T) {
		actual := internal.TableSchema{
			"id":       {Type: "text"},
			"distance": {Type: "double precision"},
		}

		err := internal.CompareColumns("t", expected, actual)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "table t schema mismatch")
		assert.Contains(t, err.Error(), "filename: missing")
		assert.Contains(t, err.Error(), "id: expected type bigint, got text")
		assert.Contains(t, err.Error(), "distance: expected nullable=true, got nullable=false")
	})
}
