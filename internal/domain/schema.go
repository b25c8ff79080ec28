package domain

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns absent from a table.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ValidateSchema checks that every required column is present. Extra columns
// and the row count are irrelevant. Missing columns are reported in the order
// of required.
func ValidateSchema(ds *Dataset, required []string) error {
	var missing []string
	for _, col := range required {
		if !ds.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}
