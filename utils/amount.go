package utils

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts the loosely typed amount values the backend emits into a number.
// Comma grouped strings are accepted and every character other than digits and "." is
// dropped. nil means "unknown", which callers must keep distinct from zero.
func ParseAmount(value any) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return finite(float64(v))
	case int64:
		return finite(float64(v))
	case int32:
		return finite(float64(v))
	case uint:
		return finite(float64(v))
	case uint64:
		return finite(float64(v))
	case json.Number:
		return ParseAmount(v.String())
	case decimal.Decimal:
		return finite(v.InexactFloat64())
	case *float64:
		if v == nil {
			return nil
		}
		return finite(*v)
	case string:
		return parseAmountString(v)
	default:
		return nil
	}
}

func parseAmountString(raw string) *float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "." {
		return nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return finite(d.InexactFloat64())
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseBool accepts native booleans, numeric 0/1 and the string forms
// "true", "1", "yes", "y" (case-insensitive). Anything else is false.
func ParseBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v == 1
	case int:
		return v == 1
	case int64:
		return v == 1
	case json.Number:
		return ParseBool(v.String())
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "y":
			return true
		}
		return false
	default:
		return false
	}
}

// ParseID parses a positive integer id, returning nil for anything else.
func ParseID(value any) *int {
	var n int
	switch v := value.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		if v != math.Trunc(v) {
			return nil
		}
		n = int(v)
	case json.Number:
		return ParseID(v.String())
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n <= 0 {
		return nil
	}
	return &n
}
