package pipeline

import (
	"strings"

	"github.com/claimops/claimassist/internal/model"
)

// fallbackConfidence marks deterministic fallback output; low enough to
// stand out, high enough that ordering by confidence keeps it usable.
const fallbackConfidence = 0.75

// Fallback builds a deterministic claim package and assessment purely from
// the claim's own text and the retrieved rule excerpts. Used when the
// generation backend is unreachable or its output is unusable, so the
// caller always receives a structurally complete result.
func Fallback(claim model.Claim, sessionID string, rules []model.RetrievedRule) *model.FallbackResult {
	desc := strings.ToLower(claim.Incident.Description)

	var regions []string
	for _, region := range []string{"rear", "front", "side", "windshield"} {
		if strings.Contains(desc, region) {
			regions = append(regions, region)
		}
	}
	if len(regions) == 0 {
		regions = []string{"general"}
	}

	severity := 0.3
	switch {
	case strings.Contains(desc, "minor") || strings.Contains(desc, "scratch"):
		severity = 0.2
	case strings.Contains(desc, "collision") || strings.Contains(desc, "airbag"):
		severity = 0.6
	}

	coverage := "unknown"
	for _, rule := range rules {
		if strings.Contains(strings.ToLower(rule.Text), "collision") {
			coverage = "covered"
		}
	}

	location := claim.Incident.Location
	if location == "" {
		location = "[redacted]"
	}

	missing := []string{}
	if claim.Incident.Description == "" {
		missing = append(missing, "incident_description")
	}

	cited := make([]model.CitedDoc, 0, len(rules))
	for _, rule := range rules {
		excerpt := rule.Text
		if len(excerpt) > 200 {
			excerpt = excerpt[:200]
		}
		cited = append(cited, model.CitedDoc{DocID: rule.ID, Excerpt: excerpt})
	}

	pkg := model.ClaimPackage{
		SessionID:            sessionID,
		IncidentTime:         incidentTimestamp(claim),
		IncidentLocation:     location,
		DamageRegions:        regions,
		Photos:               []string{},
		SeverityScore:        severity,
		CoverageIndicator:    coverage,
		MissingFields:        missing,
		FraudFlags:           []string{},
		RequiresManualReview: coverage == "unknown",
		CitedDocs:            cited,
	}

	return &model.FallbackResult{
		Package:    pkg,
		Assessment: model.DefaultClaimAssessment(sessionID),
		Summary:    "(fallback) generated",
		Confidence: fallbackConfidence,
	}
}

// incidentTimestamp joins the claim's incident date and time back into the
// single display timestamp consumers expect.
func incidentTimestamp(claim model.Claim) string {
	switch {
	case claim.Incident.Date == "":
		return ""
	case claim.Incident.Time == "":
		return claim.Incident.Date
	default:
		return claim.Incident.Date + "T" + claim.Incident.Time
	}
}
