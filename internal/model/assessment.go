package model

// Eligibility outcomes for a claim assessment
const (
	EligibilityApproved = "Approved"
	EligibilityRejected = "Rejected"
	EligibilityReview   = "Review"
)

// DamagePart is one damaged part in the damage summary
type DamagePart struct {
	PartName string `json:"part_name"`
	Severity string `json:"severity"`
}

// DamageSummary aggregates the damage picture for handlers
type DamageSummary struct {
	MainImpactArea string       `json:"main_impact_area"`
	Severity       string       `json:"severity"`
	DamagedParts   []DamagePart `json:"damaged_parts"`
}

// Recommendation is the suggested next action for the claim handler
type Recommendation struct {
	Action          string `json:"action"`
	NotesForHandler string `json:"notes_for_handler"`
}

// AuditLogEntry records which rule influenced the decision and how
type AuditLogEntry struct {
	RuleID         string `json:"rule_id"`
	DecisionEffect string `json:"decision_effect"`
	Note           string `json:"note"`
}

// ClaimAssessment is the eligibility/fraud/recommendation decision object.
// The pipeline guarantees every non-list required field is present and
// non-empty in the final emitted object; gaps are filled by backfill, never
// by rejecting the claim.
type ClaimAssessment struct {
	ClaimReferenceID   string          `json:"claim_reference_id"`
	Eligibility        string          `json:"eligibility"`
	EligibilityReason  string          `json:"eligibility_reason"`
	CoverageApplicable []string        `json:"coverage_applicable"`
	ExcludedReasons    []string        `json:"excluded_reasons"`
	RequiredFollowups  []string        `json:"required_followups"`
	FraudRiskLevel     string          `json:"fraud_risk_level"`
	FraudFlags         []string        `json:"fraud_flags"`
	DamageSummary      DamageSummary   `json:"damage_summary"`
	Recommendation     Recommendation  `json:"recommendation"`
	AuditLog           []AuditLogEntry `json:"audit_log"`
}

// DefaultClaimAssessment returns a safe Review assessment used as the
// validation fallback. It passes CheckAssessment with zero errors.
func DefaultClaimAssessment(sessionID string) ClaimAssessment {
	return ClaimAssessment{
		ClaimReferenceID:   sessionID,
		Eligibility:        EligibilityReview,
		EligibilityReason:  "Validation fallback",
		CoverageApplicable: []string{},
		ExcludedReasons:    []string{},
		RequiredFollowups:  []string{},
		FraudRiskLevel:     "Medium",
		FraudFlags:         []string{},
		DamageSummary: DamageSummary{
			MainImpactArea: "Unknown",
			Severity:       "Minor",
			DamagedParts:   []DamagePart{},
		},
		Recommendation: Recommendation{
			Action:          "Escalate_To_Human",
			NotesForHandler: "Model output missing required fields; manual review needed.",
		},
		AuditLog: []AuditLogEntry{},
	}
}

// AssessmentFromMap builds a ClaimAssessment from a decoded (and backfilled)
// model response map. Every field is coerced individually.
func AssessmentFromMap(m map[string]any, sessionID string) ClaimAssessment {
	ca := ClaimAssessment{
		ClaimReferenceID:   ToString(m["claim_reference_id"]),
		Eligibility:        ToString(m["eligibility"]),
		EligibilityReason:  ToString(m["eligibility_reason"]),
		CoverageApplicable: ToStringList(m["coverage_applicable"]),
		ExcludedReasons:    ToStringList(m["excluded_reasons"]),
		RequiredFollowups:  ToStringList(m["required_followups"]),
		FraudRiskLevel:     ToString(m["fraud_risk_level"]),
		FraudFlags:         ToStringList(m["fraud_flags"]),
	}
	if ca.ClaimReferenceID == "" {
		ca.ClaimReferenceID = sessionID
	}

	ds := ToStringMap(m["damage_summary"])
	ca.DamageSummary = DamageSummary{
		MainImpactArea: ToString(ds["main_impact_area"]),
		Severity:       ToString(ds["severity"]),
		DamagedParts:   []DamagePart{},
	}
	if raw, ok := ds["damaged_parts"].([]any); ok {
		for _, item := range raw {
			if part := ToStringMap(item); part != nil {
				ca.DamageSummary.DamagedParts = append(ca.DamageSummary.DamagedParts, DamagePart{
					PartName: ToString(part["part_name"]),
					Severity: ToString(part["severity"]),
				})
			}
		}
	}

	rec := ToStringMap(m["recommendation"])
	ca.Recommendation = Recommendation{
		Action:          ToString(rec["action"]),
		NotesForHandler: ToString(rec["notes_for_handler"]),
	}

	ca.AuditLog = []AuditLogEntry{}
	if raw, ok := m["audit_log"].([]any); ok {
		for _, item := range raw {
			if entry := ToStringMap(item); entry != nil {
				ca.AuditLog = append(ca.AuditLog, AuditLogEntry{
					RuleID:         ToString(entry["rule_id"]),
					DecisionEffect: ToString(entry["decision_effect"]),
					Note:           ToString(entry["note"]),
				})
			}
		}
	}
	return ca
}
