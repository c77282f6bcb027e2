package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// field returns the first non-nil value stored under any of keys.
// Older prompt revisions used snake_case keys, so callers pass both spellings.
func field(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// text coerces scalars to a string; everything else becomes "".
func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func boolean(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	}
	return false
}

// textList keeps scalar elements in order and drops the rest.
// The result is never nil.
func textList(v any) []string {
	arr, _ := v.([]any)
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		switch e.(type) {
		case string, float64, json.Number, bool:
			out = append(out, text(e))
		}
	}
	return out
}

// positiveInt accepts integral numbers and numeric strings greater than zero.
func positiveInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t >= 1 && t == math.Trunc(t) && t <= math.MaxInt32 {
			return int(t), true
		}
	case json.Number:
		if n, err := t.Int64(); err == nil && n >= 1 && n <= math.MaxInt32 {
			return int(n), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil && n >= 1 {
			return n, true
		}
	}
	return 0, false
}

// score keeps a non-blank score string, turns a bare number n into "n/10"
// and otherwise returns fallback.
func score(v any, fallback string) string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return s
		}
	case float64, json.Number:
		return text(t) + "/10"
	}
	return fallback
}
