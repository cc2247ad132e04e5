package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexInt accepts both native JSON numbers and string-encoded numbers.
// The game server's Lua JSON encoder is not consistent about quoting.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	// Fast path: native number
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt(n)
		return nil
	}

	// Slow path: quoted number
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flex int: %w", err)
	}
	if s == "" {
		*f = 0
		return nil
	}
	v, ok := ParseNumber(s)
	if !ok {
		return fmt.Errorf("flex int: %q is not a number", s)
	}
	*f = FlexInt(v)
	return nil
}

// ParseNumber coerces a loosely typed value into a finite float64.
// Strings are parsed ("28.5" -> 28.5); anything else reports false.
func ParseNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case int32:
		n = float64(x)
	case uint64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case FlexInt:
		n = float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
