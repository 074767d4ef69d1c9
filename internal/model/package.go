package model

// CitedDoc links a package or assessment conclusion back to a knowledge-base
// excerpt used to ground it.
type CitedDoc struct {
	DocID   string `json:"doc_id"`
	Excerpt string `json:"excerpt"`
}

// ClaimPackage is the structured FNOL package derived from a claim: the
// incident facts plus derived fields (damage regions, severity, coverage
// indicator). Field names are the wire contract toward the dashboard and
// export consumers.
type ClaimPackage struct {
	SessionID            string     `json:"session_id"`
	IncidentTime         string     `json:"incident_time"`
	IncidentLocation     string     `json:"incident_location"`
	DamageRegions        []string   `json:"damage_regions"`
	Photos               []string   `json:"photos"`
	SeverityScore        float64    `json:"severity_score"`
	CoverageIndicator    string     `json:"coverage_indicator"`
	MissingFields        []string   `json:"missing_fields"`
	FraudFlags           []string   `json:"fraud_flags"`
	RequiresManualReview bool       `json:"requires_manual_review"`
	CitedDocs            []CitedDoc `json:"cited_docs"`
}

// PackageFromMap builds a ClaimPackage from a decoded model response,
// coercing every field individually. The response shape is never trusted:
// lists may arrive as scalars, numbers as strings, and anything may be
// absent.
func PackageFromMap(m map[string]any, sessionID string) ClaimPackage {
	pkg := ClaimPackage{
		SessionID:            ToString(m["session_id"]),
		IncidentTime:         ToString(m["incident_time"]),
		IncidentLocation:     ToString(m["incident_location"]),
		DamageRegions:        ToStringList(m["damage_regions"]),
		Photos:               ToStringList(m["photos"]),
		SeverityScore:        SafeFloat(m["severity_score"], 0.3),
		CoverageIndicator:    ToString(m["coverage_indicator"]),
		MissingFields:        ToStringList(m["missing_fields"]),
		FraudFlags:           ToStringList(m["fraud_flags"]),
		RequiresManualReview: SafeBool(m["requires_manual_review"], false),
	}
	if pkg.SessionID == "" {
		pkg.SessionID = sessionID
	}
	if raw, ok := m["cited_docs"].([]any); ok {
		for _, item := range raw {
			if doc := ToStringMap(item); doc != nil {
				pkg.CitedDocs = append(pkg.CitedDocs, CitedDoc{
					DocID:   ToString(doc["doc_id"]),
					Excerpt: ToString(doc["excerpt"]),
				})
			}
		}
	}
	if pkg.CitedDocs == nil {
		pkg.CitedDocs = []CitedDoc{}
	}
	return pkg
}
