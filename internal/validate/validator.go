// Package validate holds the pure, deterministic structural checks applied
// to model output. The same functions decide mid-pipeline whether an
// assessment needs repair and produce the final verification attached to
// the result.
package validate

import (
	"strings"
	"time"

	"github.com/claimops/claimassist/internal/model"
)

// Field names the orchestrator demands from the assessment, keyed by the
// error code CheckAssessment emits for them.
var assessmentFieldForCode = map[string]string{
	"missing_claim_reference_id":              "claim_reference_id",
	"missing_eligibility":                     "eligibility",
	"missing_eligibility_reason":              "eligibility_reason",
	"missing_fraud_risk_level":                "fraud_risk_level",
	"missing_recommendation":                  "recommendation",
	"missing_recommendation_action":           "recommendation.action",
	"missing_damage_summary_severity":         "damage_summary.severity",
	"missing_damage_summary_main_impact_area": "damage_summary.main_impact_area",
}

// FieldForCode maps a CheckAssessment error code to the dotted field path
// used in repair prompts.
func FieldForCode(code string) string {
	if f, ok := assessmentFieldForCode[code]; ok {
		return f
	}
	return strings.TrimPrefix(code, "missing_")
}

// CheckAssessment returns one error code per missing or empty required
// field of a claim assessment map. Pure and deterministic: no I/O, no
// mutation of the input.
func CheckAssessment(data map[string]any) []string {
	errs := []string{}
	for _, key := range []string{"claim_reference_id", "eligibility", "eligibility_reason", "fraud_risk_level", "recommendation"} {
		if isEmpty(data[key]) {
			errs = append(errs, "missing_"+key)
		}
	}

	rec := model.ToStringMap(data["recommendation"])
	if isEmpty(rec["action"]) {
		errs = append(errs, "missing_recommendation_action")
	}

	ds := model.ToStringMap(data["damage_summary"])
	if isEmpty(ds["severity"]) {
		errs = append(errs, "missing_damage_summary_severity")
	}
	if isEmpty(ds["main_impact_area"]) {
		errs = append(errs, "missing_damage_summary_main_impact_area")
	}
	return errs
}

// incidentTimeLayouts are the timestamp shapes the intake emits
var incidentTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CheckPackageBasics applies deterministic sanity checks to a claim
// package: unparsable incident timestamp, missing description with no
// damage regions to compensate, and an unresolved coverage indicator.
// Passed is true iff no issues were raised.
func CheckPackageBasics(pkg model.ClaimPackage, claim model.Claim) model.Verification {
	issues := []string{}

	if pkg.IncidentTime != "" && !parseableTime(pkg.IncidentTime) {
		issues = append(issues, "incident_time_unparsable")
	}
	if claim.Incident.Description == "" && len(pkg.DamageRegions) == 0 {
		issues = append(issues, "missing_description")
	}
	if pkg.CoverageIndicator == "" || strings.EqualFold(pkg.CoverageIndicator, "unknown") {
		issues = append(issues, "coverage_unknown")
	}

	return model.Verification{
		Issues: issues,
		Passed: len(issues) == 0,
	}
}

func parseableTime(value string) bool {
	for _, layout := range incidentTimeLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// isEmpty reports whether a required scalar/object field is absent or
// empty. Zero numbers and false booleans count as present: only nil,
// empty strings, and empty maps are gaps.
func isEmpty(v any) bool {
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
