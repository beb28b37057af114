package station

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/mcoot/stationscore/internal/model"
)

// CoerceStatus maps any representation of a station status to open (true) or
// closed (false). true, 1, and the strings "true", "1" and "on" (any case,
// surrounding space ignored) mean open. Every other value means closed.
func CoerceStatus(v any) bool {
	switch s := v.(type) {
	case bool:
		return s
	case string:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "on":
			return true
		}
		return false
	case json.Number:
		return CoerceStatus(s.String())
	case int:
		return s == 1
	case int32:
		return s == 1
	case int64:
		return s == 1
	case float32:
		return s == 1
	case float64:
		return s == 1
	default:
		return false
	}
}

// ParseDelay parses a delay given as whole seconds
func ParseDelay(s string) (int, error) {
	delay, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, model.InvalidInput("delay must be a whole number of seconds, got %q", s)
	}
	if delay < 0 {
		return 0, model.InvalidInput("delay must not be negative")
	}
	return delay, nil
}

// CoerceDelay accepts a delay decoded from JSON, either a number or a numeric string
func CoerceDelay(v any) (int, error) {
	switch d := v.(type) {
	case string:
		return ParseDelay(d)
	case json.Number:
		return ParseDelay(d.String())
	case int:
		if d < 0 {
			return 0, model.InvalidInput("delay must not be negative")
		}
		return d, nil
	case float64:
		if d != math.Trunc(d) || d < 0 || d > math.MaxInt32 {
			return 0, model.InvalidInput("delay must be a whole, non-negative number of seconds")
		}
		return int(d), nil
	case nil:
		return 0, model.InvalidInput("delay is required")
	default:
		return 0, model.InvalidInput("delay must be a number")
	}
}
