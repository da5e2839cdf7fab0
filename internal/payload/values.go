package payload

import (
	"strconv"
	"strings"
)

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

func asArray(v any) []any {
	arr, _ := v.([]any)
	return arr
}

// asString renders scalars as text. Model output mixes "-4.5" and -4.5 freely.
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		s := strings.TrimPrefix(strings.TrimSpace(t), "+")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	default:
		return false
	}
}

// lookup returns the first non-nil value among keys, searching the objects
// in order.
func lookup(objs []map[string]any, keys ...string) any {
	for _, m := range objs {
		if m == nil {
			continue
		}
		for _, k := range keys {
			if v, ok := m[k]; ok && v != nil {
				return v
			}
		}
	}
	return nil
}

// lookupText is lookup restricted to non-empty renderings.
func lookupText(objs []map[string]any, keys ...string) string {
	for _, m := range objs {
		if m == nil {
			continue
		}
		for _, k := range keys {
			if s := asString(m[k]); s != "" {
				return s
			}
		}
	}
	return ""
}

func lookupFold(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
