package backup

import (
	"fmt"
	"strings"
)

// Mode selects how an import reconciles with the records already stored.
type Mode string

const (
	// ModeMerge keeps existing records and updates those whose name matches.
	ModeMerge Mode = "merge"

	// ModeReplace discards every existing record before importing.
	ModeReplace Mode = "replace"
)

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is one of the two known modes.
func (m Mode) Valid() bool {
	return m == ModeMerge || m == ModeReplace
}

// ParseMode converts a user-supplied name to a Mode. Matching ignores case
// and surrounding space.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown import mode %q (want %q or %q)", s, ModeMerge, ModeReplace)
	}
	return m, nil
}
