package model

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// SortForDisplay orders records the way the catalog lists them:
// favorites first, then most recently updated first. Ties keep their input order.
func SortForDisplay(records []StoreRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.IsFavorite != b.IsFavorite {
			return a.IsFavorite
		}
		return a.UpdatedAt > b.UpdatedAt
	})
}

// Matches reports whether query occurs in the record's name or notes,
// ignoring case. An empty query matches everything.
func Matches(r StoreRecord, query string) bool {
	if query == "" {
		return true
	}
	fold := cases.Fold()
	q := fold.String(query)
	return strings.Contains(fold.String(r.Name), q) ||
		strings.Contains(fold.String(r.Notes), q)
}

// Filter returns the records matching query, preserving order.
func Filter(records []StoreRecord, query string) []StoreRecord {
	if query == "" {
		return records
	}
	out := make([]StoreRecord, 0, len(records))
	for _, r := range records {
		if Matches(r, query) {
			out = append(out, r)
		}
	}
	return out
}
