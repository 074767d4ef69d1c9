package pipeline

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantKey string
		wantNil bool
	}{
		{"strict object", `{"a": 1}`, "a", false},
		{"fenced object", "```json\n{\"a\": 1}\n```", "a", false},
		{"prose around object", `Sure! Here it is: {"a": 1} Hope that helps.`, "a", false},
		{"no json", "I cannot help with that.", "", true},
		{"empty", "", "", true},
		{"whitespace", "   \n\t ", "", true},
		{"broken braces", "} not json {", "", true},
		{"unclosed object", `{"a": 1`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.in)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected parse, got nil")
			}
			if _, ok := got[tt.wantKey]; !ok {
				t.Errorf("expected key %q in %v", tt.wantKey, got)
			}
		})
	}
}

func TestExtractJSON_NestedBraces(t *testing.T) {
	parsed := ExtractJSON(`noise {"outer": {"inner": 2}} trailing`)
	if parsed == nil {
		t.Fatal("expected parse")
	}
	inner, ok := parsed["outer"].(map[string]any)
	if !ok || inner["inner"] != float64(2) {
		t.Errorf("nested object not preserved: %v", parsed)
	}
}
