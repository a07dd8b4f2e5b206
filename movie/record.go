package movie

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one catalog entry as the data source delivered it. Keys vary by
// provider (title vs Title, genre vs Genres), so nothing past Normalize
// should read a Record directly.
type Record map[string]any

// Pick returns the value of the first candidate key that is present with a
// usable value, or fallback when none is. A value is unusable when it is
// nil (absent or JSON null) or the empty string.
func Pick(r Record, candidates []string, fallback any) any {
	for _, key := range candidates {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v
	}
	return fallback
}

// PickString is Pick with the result rendered as a string.
func PickString(r Record, candidates []string, fallback string) string {
	return stringify(Pick(r, candidates, fallback))
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, stringify(p))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// splitList turns a genres-like value into a list. Strings are split on
// commas ("Action, Crime, Drama"); arrays are taken element by element.
func splitList(v any) []string {
	var raw []string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []any:
		for _, p := range t {
			raw = append(raw, stringify(p))
		}
	default:
		raw = []string{stringify(t)}
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
