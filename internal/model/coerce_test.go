package model

import (
	"reflect"
	"testing"
)

func TestToString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{true, "True"},
		{false, "False"},
		{0.5, "0.5"},
		{float64(3), "3"},
		{7, "7"},
	}
	for _, tt := range tests {
		if got := ToString(tt.in); got != tt.want {
			t.Errorf("ToString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToStringList(t *testing.T) {
	tests := []struct {
		in   any
		want []string
	}{
		{nil, []string{}},
		{"solo", []string{"solo"}},
		{true, []string{"True"}},
		{[]any{"a", true, 0.5}, []string{"a", "True", "0.5"}},
		{[]string{"x", "y"}, []string{"x", "y"}},
	}
	for _, tt := range tests {
		if got := ToStringList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ToStringList(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSafeFloat(t *testing.T) {
	tests := []struct {
		in   any
		def  float64
		want float64
	}{
		{0.7, 0.5, 0.7},
		{"0.9", 0.5, 0.9},
		{"not a number", 0.5, 0.5},
		{nil, 0.3, 0.3},
		{true, 0.5, 1},
		{false, 0.5, 0},
	}
	for _, tt := range tests {
		if got := SafeFloat(tt.in, tt.def); got != tt.want {
			t.Errorf("SafeFloat(%v, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}

func TestSafeBool(t *testing.T) {
	tests := []struct {
		in   any
		def  bool
		want bool
	}{
		{true, false, true},
		{"true", false, true},
		{"nope", true, true},
		{float64(1), false, true},
		{float64(0), true, false},
		{nil, false, false},
	}
	for _, tt := range tests {
		if got := SafeBool(tt.in, tt.def); got != tt.want {
			t.Errorf("SafeBool(%v, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
		}
	}
}

func TestToStringMap(t *testing.T) {
	if m := ToStringMap(map[string]any{"a": 1}); m == nil {
		t.Errorf("expected map, got nil")
	}
	if m := ToStringMap("not a map"); m != nil {
		t.Errorf("expected nil for non-map, got %v", m)
	}
	if m := ToStringMap(nil); m != nil {
		t.Errorf("expected nil for nil, got %v", m)
	}
}
