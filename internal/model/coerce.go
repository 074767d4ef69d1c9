package model

import (
	"fmt"
	"strconv"
)

// Coercion helpers for duck-typed model output. The generation backend may
// return a scalar where a list was requested, a string where a number was
// requested, or nested maps of arbitrary shape; these helpers normalize
// values into the target schema instead of trusting the response shape.

// ToString renders a scalar JSON value as a string. Booleans stringify as
// "True"/"False" to keep the wire format stable for existing consumers.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// ToStringList coerces a JSON value into a list of strings. Scalars and
// booleans become a single-element list; nil becomes an empty list.
func ToStringList(v any) []string {
	switch x := v.(type) {
	case nil:
		return []string{}
	case []string:
		out := make([]string, len(x))
		copy(out, x)
		return out
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			out = append(out, ToString(item))
		}
		return out
	default:
		return []string{ToString(x)}
	}
}

// SafeFloat coerces a JSON value into a float64, falling back to def when
// the value is missing or not numeric.
func SafeFloat(v any, def float64) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
		return def
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return def
	}
}

// SafeBool coerces a JSON value into a bool.
func SafeBool(v any, def bool) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		if b, err := strconv.ParseBool(x); err == nil {
			return b
		}
		return def
	case float64:
		return x != 0
	default:
		return def
	}
}

// ToStringMap returns v as a map when it is a JSON object, nil otherwise.
func ToStringMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}
