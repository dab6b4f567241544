package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stripCodeFences removes a surrounding markdown code fence if the model
// ignored the raw-JSON instruction.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// decodeObject unmarshals lenient model output into a generic map, tolerating
// code fences.
func decodeObject(raw string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &m); err != nil {
		return nil, fmt.Errorf("decoding model JSON: %w", err)
	}
	return m, nil
}

// cleanFieldMap drops null and empty-string values so extraction stays
// best-effort: an undeterminable field is omitted, never an error.
func cleanFieldMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(t) == "" {
				continue
			}
			out[k] = strings.TrimSpace(t)
		default:
			out[k] = v
		}
	}
	return out
}

// clamp01 bounds a model-reported confidence into [0,1].
func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// asFloat coerces JSON scalar types the model may use for confidence.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(t), "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

// asString coerces JSON scalar types to a display string.
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", t), "0"), ".")
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		return ""
	}
}
