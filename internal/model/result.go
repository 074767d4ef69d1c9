package model

// Error codes surfaced on PipelineResult. Only the remote-call and parse
// failures are ever surfaced; validation gaps are absorbed by backfill.
const (
	ErrCallFailed    = "ollama_call_failed"
	ErrInvalidOutput = "invalid_model_output"
	ReasonNoJSON     = "no_json_parsed"
	ReasonPackageBad = "fnol_package_missing_or_invalid"
)

// RetrievedRule is one ranked knowledge-base excerpt attached to a result
type RetrievedRule struct {
	ID     string   `json:"id"`
	Text   string   `json:"text"`
	Tags   []string `json:"tags,omitempty"`
	Source string   `json:"source,omitempty"`
	Score  float64  `json:"score"`
}

// Verification is the deterministic check outcome attached to every result
type Verification struct {
	Issues []string `json:"issues"`
	Passed bool     `json:"passed"`
}

// GenerationMeta records how the result was produced, for audit and debugging
type GenerationMeta struct {
	Provider      string   `json:"provider,omitempty"`
	Model         string   `json:"model,omitempty"`
	Attempts      int      `json:"attempts"`
	RepairRounds  int      `json:"repair_rounds,omitempty"`
	BackfilledKey []string `json:"backfilled_fields,omitempty"`
	TokensUsed    int      `json:"tokens_used,omitempty"`
	CacheHit      bool     `json:"cache_hit,omitempty"`
}

// FallbackResult is the deterministic best-effort payload attached when a
// terminal failure is surfaced, so callers always receive a usable object.
type FallbackResult struct {
	Package    ClaimPackage    `json:"fnol_package"`
	Assessment ClaimAssessment `json:"claim_assessment"`
	Summary    string          `json:"summary"`
	Confidence float64         `json:"confidence"`
}

// PipelineResult is the externally visible output of processing one claim.
// Once returned it is immutable, and it serializes losslessly to a nested
// key-value document.
type PipelineResult struct {
	Package      ClaimPackage    `json:"fnol_package"`
	Assessment   ClaimAssessment `json:"claim_assessment"`
	Summary      string          `json:"summary"`
	Confidence   float64         `json:"confidence"`
	Retrieved    []RetrievedRule `json:"retrieved_rules,omitempty"`
	Verification Verification    `json:"verification"`
	Meta         GenerationMeta  `json:"generation_meta"`

	Error        string          `json:"error,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	RawModelText string          `json:"raw_model_text,omitempty"`
	Fallback     *FallbackResult `json:"fallback,omitempty"`
}
