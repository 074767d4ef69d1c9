package pipeline

import (
	"reflect"
	"testing"
)

func TestBackfill_EmptyAssessment(t *testing.T) {
	assessment := map[string]any{}

	filled := Backfill(assessment, "sess-1a2b3c4d")
	want := []string{
		"claim_reference_id",
		"damage_summary.main_impact_area",
		"damage_summary.severity",
		"eligibility",
		"eligibility_reason",
		"fraud_risk_level",
		"recommendation.action",
	}
	if !reflect.DeepEqual(filled, want) {
		t.Errorf("filled = %v, want %v", filled, want)
	}

	if assessment["claim_reference_id"] != "sess-1a2b3c4d" {
		t.Errorf("claim reference not backfilled: %v", assessment["claim_reference_id"])
	}
	if assessment["eligibility"] != "Review" {
		t.Errorf("eligibility not backfilled: %v", assessment["eligibility"])
	}
	if assessment["eligibility_reason"] != autoFilledReason {
		t.Errorf("reason not backfilled: %v", assessment["eligibility_reason"])
	}
	rec := assessment["recommendation"].(map[string]any)
	if rec["action"] != "Escalate_To_Human" {
		t.Errorf("action not backfilled: %v", rec["action"])
	}
	ds := assessment["damage_summary"].(map[string]any)
	if ds["severity"] != "Unknown" || ds["main_impact_area"] != "Unknown" {
		t.Errorf("damage summary not backfilled: %v", ds)
	}
}

func TestBackfill_PreservesPresentFields(t *testing.T) {
	assessment := map[string]any{
		"claim_reference_id": "sess-cafebabe",
		"eligibility":        "Approved",
		"eligibility_reason": "Covered peril.",
		"fraud_risk_level":   "Low",
		"recommendation":     map[string]any{"action": "Auto_Approve"},
		"damage_summary":     map[string]any{"severity": "Minor", "main_impact_area": "Rear"},
	}

	filled := Backfill(assessment, "sess-other")
	if len(filled) != 0 {
		t.Errorf("complete assessment must not be touched, filled %v", filled)
	}
	if assessment["eligibility"] != "Approved" {
		t.Errorf("present field overwritten: %v", assessment["eligibility"])
	}
}

func TestBackfill_Idempotent(t *testing.T) {
	assessment := map[string]any{}
	Backfill(assessment, "sess-1a2b3c4d")

	again := Backfill(assessment, "sess-1a2b3c4d")
	if len(again) != 0 {
		t.Errorf("second pass must fill nothing, got %v", again)
	}
}

func TestBackfill_NormalizesListFields(t *testing.T) {
	assessment := map[string]any{
		"fraud_flags":         true, // bare boolean
		"coverage_applicable": "OwnDamage",
		"excluded_reasons":    []any{"x", 1},
	}
	Backfill(assessment, "sess-1a2b3c4d")

	if !reflect.DeepEqual(assessment["fraud_flags"], []any{"True"}) {
		t.Errorf("boolean fraud_flags must become [\"True\"], got %v", assessment["fraud_flags"])
	}
	if !reflect.DeepEqual(assessment["coverage_applicable"], []any{"OwnDamage"}) {
		t.Errorf("scalar coverage must become a singleton list, got %v", assessment["coverage_applicable"])
	}
	if !reflect.DeepEqual(assessment["excluded_reasons"], []any{"x", "1"}) {
		t.Errorf("mixed list must be stringified, got %v", assessment["excluded_reasons"])
	}
	if _, ok := assessment["audit_log"].([]any); !ok {
		t.Errorf("audit_log must be ensured as a list")
	}
	ds := assessment["damage_summary"].(map[string]any)
	if _, ok := ds["damaged_parts"].([]any); !ok {
		t.Errorf("damaged_parts must be ensured as a list")
	}
}

func TestBackfill_CoercesScalarDamagedParts(t *testing.T) {
	assessment := map[string]any{
		"damage_summary": map[string]any{
			"severity":         "Minor",
			"main_impact_area": "Rear",
			"damaged_parts":    "rear bumper",
		},
	}
	Backfill(assessment, "sess-1a2b3c4d")

	ds := assessment["damage_summary"].(map[string]any)
	if !reflect.DeepEqual(ds["damaged_parts"], []any{"rear bumper"}) {
		t.Errorf("scalar damaged_parts must become a singleton list, got %v", ds["damaged_parts"])
	}

	ds["damaged_parts"] = []any{"hood", 2}
	Backfill(assessment, "sess-1a2b3c4d")
	if !reflect.DeepEqual(ds["damaged_parts"], []any{"hood", "2"}) {
		t.Errorf("damaged_parts list must be stringified, got %v", ds["damaged_parts"])
	}
}
