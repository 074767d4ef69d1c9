package pipeline

import (
	"sort"
	"strings"

	"github.com/claimops/claimassist/internal/model"
)

// autoFilledReason is the stable wire-visible text for a backfilled
// eligibility reason.
const autoFilledReason = "Auto-filled: model returned empty eligibility reason."

// assessmentListFields are the assessment fields that must be string lists
// in the final object regardless of what the model returned.
var assessmentListFields = []string{
	"coverage_applicable",
	"excluded_reasons",
	"required_followups",
	"fraud_flags",
}

// Backfill substitutes a fixed safe default for every required assessment
// field still missing or empty, and normalizes list-typed fields (scalars
// and booleans become stringified singletons). It mutates the map in place
// and returns the sorted names of the fields it filled.
//
// Backfill is idempotent: a field present and non-empty is never
// overwritten, so applying it twice yields the same object. This stage
// never fails; it is the pipeline's guarantee of a structurally complete
// assessment.
func Backfill(assessment map[string]any, sessionID string) []string {
	var filled []string
	fill := func(key string, def any) {
		if isBlank(assessment[key]) {
			assessment[key] = def
			filled = append(filled, key)
		}
	}

	fill("claim_reference_id", sessionID)
	fill("eligibility", model.EligibilityReview)
	fill("eligibility_reason", autoFilledReason)
	fill("fraud_risk_level", "Unknown")

	rec := model.ToStringMap(assessment["recommendation"])
	if rec == nil {
		rec = map[string]any{}
		assessment["recommendation"] = rec
	}
	if isBlank(rec["action"]) {
		rec["action"] = "Escalate_To_Human"
		filled = append(filled, "recommendation.action")
	}
	if _, ok := rec["notes_for_handler"]; !ok {
		rec["notes_for_handler"] = ""
	}

	ds := model.ToStringMap(assessment["damage_summary"])
	if ds == nil {
		ds = map[string]any{}
		assessment["damage_summary"] = ds
	}
	if isBlank(ds["main_impact_area"]) {
		ds["main_impact_area"] = "Unknown"
		filled = append(filled, "damage_summary.main_impact_area")
	}
	if isBlank(ds["severity"]) {
		ds["severity"] = "Unknown"
		filled = append(filled, "damage_summary.severity")
	}
	ds["damaged_parts"] = anyList(model.ToStringList(ds["damaged_parts"]))

	for _, key := range assessmentListFields {
		assessment[key] = anyList(model.ToStringList(assessment[key]))
	}
	if _, ok := assessment["audit_log"].([]any); !ok {
		assessment["audit_log"] = []any{}
	}

	sort.Strings(filled)
	return filled
}

func anyList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case map[string]any:
		return len(x) == 0
	default:
		return false
	}
}
