// Package enums holds the string enumerations persisted in the database and
// exchanged over the API.
package enums

import (
	"fmt"
	"slices"
	"strings"
)

// parse matches raw against valid ignoring case and surrounding whitespace.
func parse[T ~string](kind, raw string, valid []T) (T, error) {
	normalized := T(strings.ToUpper(strings.TrimSpace(raw)))
	if slices.Contains(valid, normalized) {
		return normalized, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, raw)
}
