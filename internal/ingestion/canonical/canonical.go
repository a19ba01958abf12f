// Package canonical folds tag and URL strings to the form used as a
// storage key.
package canonical

import (
	"sort"
	"strings"
)

type Result struct {
	// Values holds the distinct canonical strings in sorted order.
	Values []string
	// Dropped counts inputs that were empty or blank.
	Dropped int
}

// Normalize trims and lowercases values, drops blanks and removes
// duplicates. It never fails.
func Normalize(values []string) Result {
	seen := make(map[string]struct{}, len(values))
	out := Result{Values: make([]string, 0, len(values))}
	for _, v := range values {
		c := Fold(v)
		if c == "" {
			out.Dropped++
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out.Values = append(out.Values, c)
	}
	sort.Strings(out.Values)
	return out
}

// Fold is the per-value canonical form.
func Fold(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
