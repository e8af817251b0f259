package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Threshold is the minimum order amount for delivery.
//
// The zero value is "unknown". A known amount of 0 means free delivery.
// Negative and non-finite amounts are never representable as known values.
type Threshold struct {
	Amount float64
	Known  bool
}

// UnknownThreshold returns the "not recorded" threshold.
func UnknownThreshold() Threshold {
	return Threshold{}
}

// ThresholdOf returns a known threshold, or unknown if v is negative or not finite.
func ThresholdOf(v float64) Threshold {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return Threshold{}
	}
	return Threshold{Amount: v, Known: true}
}

// IsZero reports whether the threshold is unknown.
// encoding/json uses it to omit unknown thresholds under omitzero.
func (t Threshold) IsZero() bool {
	return !t.Known
}

// IsFree reports whether delivery is free regardless of order size.
func (t Threshold) IsFree() bool {
	return t.Known && t.Amount == 0
}

// String renders the threshold for text output.
func (t Threshold) String() string {
	switch {
	case !t.Known:
		return "unknown"
	case t.Amount == 0:
		return "free"
	default:
		return strconv.FormatFloat(t.Amount, 'f', -1, 64)
	}
}

// MarshalJSON writes a number, or null when unknown.
func (t Threshold) MarshalJSON() ([]byte, error) {
	if !t.Known {
		return []byte("null"), nil
	}
	return json.Marshal(t.Amount)
}

// UnmarshalJSON accepts a number, a numeric string, an empty string, or null.
// Empty string and null decode to unknown; negative amounts decode to unknown.
func (t *Threshold) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Threshold{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("delivery threshold: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*t = Threshold{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("delivery threshold %q is not a number", s)
		}
		*t = ThresholdOf(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("delivery threshold: %w", err)
	}
	*t = ThresholdOf(v)
	return nil
}

// ParseThreshold parses a threshold typed by a user. Blank input is unknown.
// Unlike UnmarshalJSON, a negative amount is an error rather than unknown.
func ParseThreshold(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Threshold{}, fmt.Errorf("delivery threshold %q is not a number", s)
	}
	if v < 0 {
		return Threshold{}, fmt.Errorf("delivery threshold %q must not be negative", s)
	}
	return ThresholdOf(v), nil
}
