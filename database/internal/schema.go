package internal

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Column describes one table column as reported by the database catalog.
type Column struct {
	Type     string
	Nullable bool
}

// TableSchema maps column names to their expected definition.
type TableSchema map[string]Column

// CompareColumns reports every expected column that is missing from actual
// or differs in type or nullability. Extra columns in actual are allowed.
func CompareColumns(table string, expected, actual TableSchema) error {
	var problems []string

	for _, name := range slices.Sorted(maps.Keys(expected)) {
		want := expected[name]
		got, ok := actual[name]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("%s: missing", name))
		case !strings.EqualFold(got.Type, want.Type):
			problems = append(problems, fmt.Sprintf("%s: expected type %s, got %s", name, want.Type, got.Type))
		case got.Nullable != want.Nullable:
			problems = append(problems, fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", name, want.Nullable, got.Nullable))
		}
	}

	if len(problems) == 0 {
		return nil
	}

	return errors.New("table " + table + " schema mismatch:\n  - " + strings.Join(problems, "\n  - "))
}
