package pipeline

import (
	"encoding/json"
	"strings"
)

// ExtractJSON attempts a strict JSON parse of model output; on failure it
// extracts the first top-level {...} substring and parses that. Returns nil
// when no JSON object can be recovered.
func ExtractJSON(text string) map[string]any {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		return parsed
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return nil
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil
	}
	return parsed
}
