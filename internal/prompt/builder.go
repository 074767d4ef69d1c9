// Package prompt renders claims, retrieved rules and task instructions into
// generation requests. All functions are pure; rule and field text is
// whitespace-collapsed and truncated to fixed bounds so prompt size is
// deterministic.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/claimops/claimassist/internal/model"
)

const (
	maxDescriptionChars = 600
	maxRuleChars        = 450
)

// Request is one generation request: a system instruction and a user payload
type Request struct {
	System string
	User   string
}

// RuleSet groups retrieved rules by concern for prompt budgeting
type RuleSet struct {
	Fraud    []model.RetrievedRule
	Coverage []model.RetrievedRule
	General  []model.RetrievedRule
}

// All flattens the rule set in fraud, coverage, general order
func (rs RuleSet) All() []model.RetrievedRule {
	out := make([]model.RetrievedRule, 0, len(rs.Fraud)+len(rs.Coverage)+len(rs.General))
	out = append(out, rs.Fraud...)
	out = append(out, rs.Coverage...)
	out = append(out, rs.General...)
	return out
}

const generationSystem = `You are ClaimAssist, a strict JSON-only assistant for insurance FNOL intake.
Return a single JSON object with keys: fnol_package, claim_assessment, summary, confidence.
fnol_package MUST include: session_id (string), incident_time (string), incident_location (string), damage_regions (array of strings), photos (array), severity_score (number 0-1), coverage_indicator ("covered"|"not_covered"|"unknown"), missing_fields (array), fraud_flags (array), requires_manual_review (boolean), cited_docs (array of {doc_id, excerpt}).
claim_assessment MUST include: claim_reference_id (string), eligibility ("Approved"|"Rejected"|"Review"), eligibility_reason (non-empty string), coverage_applicable (array of strings), excluded_reasons (array), required_followups (array), fraud_risk_level (non-empty string), fraud_flags (array), damage_summary ({main_impact_area, severity, damaged_parts}), recommendation ({action, notes_for_handler}), audit_log (array of {rule_id, decision_effect, note}).
Set "confidence" to a numeric value between 0 and 1; NEVER leave it null or omit it.
Set "severity_score" to a numeric value between 0 and 1; NEVER leave it null or omit it.
Ground every coverage and fraud conclusion ONLY in the supplied rule excerpts, citing rule ids in audit_log. If a conclusion cannot be grounded in the excerpts, set coverage_indicator to "unknown" and eligibility to "Review" instead of guessing.
Do NOT output any text outside the JSON object.`

// Generation builds the full-generation request: claim package plus
// assessment in one response.
func Generation(claim model.Claim, rules RuleSet) Request {
	user := fmt.Sprintf(
		"Claim (SANITIZED TOKENIZED FIELDS ONLY):\n%s\n\n%s\nReturn the JSON now.",
		renderClaim(claim), renderRuleSet(rules))
	return Request{System: generationSystem, User: user}
}

const assessmentSystem = `You are ClaimAssist, a strict JSON-only assistant for insurance claim assessment.
The fnol_package below is already validated; do NOT modify or restate it.
Return a single JSON object with keys: claim_assessment, summary, confidence.
claim_assessment MUST include: claim_reference_id (string), eligibility ("Approved"|"Rejected"|"Review"), eligibility_reason (non-empty string), coverage_applicable (array of strings), excluded_reasons (array), required_followups (array), fraud_risk_level (non-empty string), fraud_flags (array), damage_summary ({main_impact_area, severity, damaged_parts}), recommendation ({action, notes_for_handler}), audit_log (array of {rule_id, decision_effect, note}).
Set "confidence" to a numeric value between 0 and 1; NEVER leave it null or omit it.
Ground every coverage and fraud conclusion ONLY in the supplied rule excerpts. If a conclusion cannot be grounded, set eligibility to "Review" instead of guessing.
Do NOT output any text outside the JSON object.`

// Assessment builds the assessment-only request over an already-trusted
// claim package; the narrower surface lowers the chance of malformed output.
func Assessment(pkg model.ClaimPackage, claim model.Claim, rules RuleSet) Request {
	pkgJSON, _ := json.Marshal(pkg)
	user := fmt.Sprintf(
		"Validated fnol_package:\n%s\n\nClaim (SANITIZED TOKENIZED FIELDS ONLY):\n%s\n\n%s\nReturn the JSON now.",
		pkgJSON, renderClaim(claim), renderRuleSet(rules))
	return Request{System: assessmentSystem, User: user}
}

const repairSystem = `You are ClaimAssist, a strict JSON-only assistant repairing an incomplete claim_assessment.
You will receive the current claim_assessment JSON and a list of missing or empty fields.
Return the SAME claim_assessment JSON object with ONLY the listed fields filled in.
Preserve every other field verbatim. Do NOT add new keys. Do NOT output any text outside the JSON object.`

// Repair builds the targeted repair request: fill only the named missing
// fields of the current assessment, preserving everything else.
func Repair(assessment map[string]any, missing []string, rules []model.RetrievedRule) Request {
	current, _ := json.Marshal(assessment)
	user := fmt.Sprintf(
		"Current claim_assessment:\n%s\n\nMissing or empty fields to fill: %s\n\n%s\nReturn the repaired claim_assessment JSON now.",
		current, strings.Join(missing, ", "), renderRules("Rule excerpts (ground your values in these)", rules))
	return Request{System: repairSystem, User: user}
}

// workedExample shows the model a complete assessment so the field-list
// retry has a concrete shape to imitate.
const workedExample = `{"claim_reference_id": "sess-1a2b3c4d", "eligibility": "Review", "eligibility_reason": "Policy active but photos below SOP minimum.", "coverage_applicable": ["OwnDamage"], "excluded_reasons": [], "required_followups": ["Request remaining photos"], "fraud_risk_level": "Low", "fraud_flags": [], "damage_summary": {"main_impact_area": "Front", "severity": "Moderate", "damaged_parts": [{"part_name": "Bumper", "severity": "Moderate"}]}, "recommendation": {"action": "Escalate_To_Human", "notes_for_handler": "Verify photo set before approval."}, "audit_log": [{"rule_id": "KB-SOP-PHOTO-01", "decision_effect": "followup", "note": "photo count below minimum"}]}`

// GenerationRetry amends the full-generation request with the validation
// errors from the previous attempt and a worked example of a complete
// claim_assessment.
func GenerationRetry(claim model.Claim, rules RuleSet, missing []string) Request {
	base := Generation(claim, rules)
	base.User = fmt.Sprintf(
		"%s\n\nYour previous response was missing or left empty these required fields: %s\nA complete claim_assessment looks like this worked example:\n%s\n\nReturn the corrected JSON now, with every listed field present and non-empty.",
		base.User, strings.Join(missing, ", "), workedExample)
	return base
}

// StrictJSONRetry amends a request after a parse failure, demanding raw
// JSON only.
func StrictJSONRetry(req Request) Request {
	req.User += "\n\nYour previous response was not valid JSON. Respond again with ONLY the raw JSON object: no prose, no markdown fences, no explanations."
	return req
}

// renderClaim serializes the claim with its free-text description collapsed
// and truncated so structured fields keep dominating the prompt.
func renderClaim(claim model.Claim) string {
	claim.Incident.Description = Collapse(claim.Incident.Description, maxDescriptionChars)
	out, err := json.Marshal(claim)
	if err != nil {
		return "{}"
	}
	return string(out)
}

func renderRuleSet(rules RuleSet) string {
	var b strings.Builder
	if len(rules.Fraud) > 0 {
		b.WriteString(renderRules("Fraud rules", rules.Fraud))
		b.WriteString("\n")
	}
	if len(rules.Coverage) > 0 {
		b.WriteString(renderRules("Coverage rules", rules.Coverage))
		b.WriteString("\n")
	}
	b.WriteString(renderRules("General rules", rules.General))
	b.WriteString("\n")
	return b.String()
}

func renderRules(heading string, rules []model.RetrievedRule) string {
	var b strings.Builder
	b.WriteString(heading)
	b.WriteString(":\n")
	if len(rules) == 0 {
		b.WriteString("(none)\n")
		return b.String()
	}
	for _, r := range rules {
		fmt.Fprintf(&b, "[%s] %s\n", r.ID, Collapse(r.Text, maxRuleChars))
	}
	return b.String()
}

// Collapse squashes embedded whitespace runs to single spaces and truncates
// to max characters.
func Collapse(text string, max int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if len(collapsed) > max {
		collapsed = collapsed[:max]
	}
	return collapsed
}
