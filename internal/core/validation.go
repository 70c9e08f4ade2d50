package core

import (
	"fmt"
	"strings"
)

// HeaderError lists expected columns a source header lacks.
type HeaderError struct {
	Source  string
	Missing []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%s: missing columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

// MissingColumns returns the expected columns absent from idx, in the
// order given. Matching is case-insensitive, like MakeHeaderIndex.
func MissingColumns(idx HeaderIndex, expected []string) []string {
	var missing []string
	for _, name := range expected {
		if _, ok := idx[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// ValidateHeaders checks raw's header against the columns a table reads.
// A missing column is not fatal: its values parse as NULL. Returns nil when
// every column is present.
func ValidateHeaders(raw *RawTable, cols []Column) error {
	missing := MissingColumns(raw.Index, ColumnNames(cols))
	if len(missing) == 0 {
		return nil
	}
	return &HeaderError{Source: raw.Name, Missing: missing}
}
