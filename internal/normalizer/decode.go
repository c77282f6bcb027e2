package normalizer

import (
	"encoding/json"
	"errors"
	"strings"

	"hazmate/internal/domain"
)

const (
	fence          = "```"
	maxRawInErrors = 500
)

// StripCodeFences removes a leading markdown code fence (with optional json
// language tag) and a trailing fence, each independently. Fences inside the
// JSON text are left alone, so applying it to clean JSON is a no-op.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, fence) {
		s = strings.TrimPrefix(s, fence)
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, fence) {
		s = strings.TrimSpace(strings.TrimSuffix(s, fence))
	}
	return s
}

// DecodeJSON strips fences and parses vendor text into a generic JSON value.
func DecodeJSON(vendor domain.Vendor, raw string) (any, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return nil, &domain.ParseError{Vendor: vendor, Err: errors.New("empty completion")}
	}
	var v any
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return nil, &domain.ParseError{Vendor: vendor, Raw: domain.Truncate(raw, maxRawInErrors), Err: err}
	}
	return v, nil
}

// DecodeObject is DecodeJSON for callers that require a top-level JSON object.
func DecodeObject(vendor domain.Vendor, raw string) (map[string]any, error) {
	v, err := DecodeJSON(vendor, raw)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &domain.ParseError{
			Vendor: vendor,
			Raw:    domain.Truncate(raw, maxRawInErrors),
			Err:    errors.New("expected a JSON object"),
		}
	}
	return m, nil
}
