package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Measure is an optional positive quantity (sets, reps, kg, seconds).
// The zero value means "not recorded", which is distinct from a recorded zero
// in the UI but is never stored: non-positive values collapse to absent.
type Measure struct {
	Value float64
	Valid bool
}

// Some returns a recorded measure, or an absent one when v is not a finite
// positive number.
func Some(v float64) Measure {
	if !(v > 0) || math.IsInf(v, 0) {
		return Measure{}
	}
	return Measure{Value: v, Valid: true}
}

// ParseMeasure parses user input such as "12", " 62.5 " or "".
// Anything that is not a positive number is treated as not recorded.
func ParseMeasure(s string) Measure {
	s = strings.TrimSpace(s)
	if s == "" {
		return Measure{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Measure{}
	}
	return Some(v)
}

// OrZero returns the value, or 0 when absent.
func (m Measure) OrZero() float64 {
	if !m.Valid {
		return 0
	}
	return m.Value
}

// String formats the value without trailing zeros; absent measures format as "".
func (m Measure) String() string {
	if !m.Valid {
		return ""
	}
	return FormatNumber(m.Value)
}

// FormatNumber renders 60 as "60" and 62.5 as "62.5".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MarshalJSON writes null for absent measures and for values JSON cannot hold.
func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid || math.IsInf(m.Value, 0) || math.IsNaN(m.Value) {
		return []byte("null"), nil
	}
	return []byte(FormatNumber(m.Value)), nil
}

// UnmarshalJSON accepts numbers, numeric strings, "" and null. Older logs
// written by the browser app stored form input verbatim, so unparsable
// values decode as absent instead of failing the whole blob.
func (m *Measure) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*m = Measure{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = ParseMeasure(s)
	default:
		*m = ParseMeasure(string(data))
	}
	return nil
}
