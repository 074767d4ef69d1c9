package retrieve

import (
	"strings"
	"testing"

	"github.com/claimops/claimassist/internal/kb"
	"github.com/claimops/claimassist/internal/model"
)

func testClaim() model.Claim {
	return model.Claim{
		Policy: model.Policy{
			Status:       "Active",
			CoverageType: "Comprehensive",
		},
		Incident: model.Incident{
			Type:        "Collision",
			ImpactPoint: "Rear",
			Description: "rear bumper collision at low speed",
		},
	}
}

func TestRetriever_Retrieve_TopK(t *testing.T) {
	chunks := []kb.Chunk{
		{ID: "a", Text: "rear bumper collision damage", Source: "kb.md"},
		{ID: "b", Text: "staged accident fraud patterns", Source: "kb.md"},
		{ID: "c", Text: "premium payment grace period", Source: "kb.md"},
	}
	r := New(chunks)

	rules := r.Retrieve(testClaim(), 2)
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].ID != "a" {
		t.Errorf("expected best lexical match first, got %q", rules[0].ID)
	}
	if rules[0].Score <= 0 {
		t.Errorf("expected positive score for matching rule, got %v", rules[0].Score)
	}
}

func TestRetriever_Retrieve_TagPreference(t *testing.T) {
	// The general chunk matches the claim text better, but a TPL policy
	// prefers tpl-tagged rules: preferred chunks come first, skipped ones
	// still fill the remaining slots.
	chunks := []kb.Chunk{
		{ID: "gen", Text: "rear bumper collision damage rules", Source: "kb.md"},
		{ID: "tpl", Text: "third party liability obligations", Tags: []string{"tpl"}, Source: "kb-tpl.md"},
	}
	r := New(chunks)

	claim := testClaim()
	claim.Policy.CoverageType = "TPL Only"

	rules := r.Retrieve(claim, 2)
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].ID != "tpl" {
		t.Errorf("expected tpl-tagged rule first for TPL policy, got %q", rules[0].ID)
	}
	if rules[1].ID != "gen" {
		t.Errorf("expected skipped rule to backfill, got %q", rules[1].ID)
	}
}

func TestRetriever_Retrieve_ZeroDepAddon(t *testing.T) {
	chunks := []kb.Chunk{
		{ID: "gen", Text: "rear bumper collision damage rules", Source: "kb.md"},
		{ID: "zd", Text: "zero depreciation addon terms", Tags: []string{"zerodep"}, Source: "kb-zd.md"},
	}
	r := New(chunks)

	claim := testClaim()
	claim.Policy.Addons = []string{"ZeroDep Plus"}

	rules := r.Retrieve(claim, 1)
	if len(rules) != 1 || rules[0].ID != "zd" {
		t.Fatalf("expected zerodep rule preferred for zerodep addon, got %v", rules)
	}
}

func TestRetriever_Retrieve_EmptyInputs(t *testing.T) {
	r := New(nil)
	if rules := r.Retrieve(testClaim(), 5); rules != nil {
		t.Errorf("expected nil for empty corpus, got %v", rules)
	}

	r = New([]kb.Chunk{{ID: "a", Text: "text", Source: "kb.md"}})
	if rules := r.Retrieve(testClaim(), 0); rules != nil {
		t.Errorf("expected nil for topK=0, got %v", rules)
	}
}

func TestRetriever_RetrieveSplit_Buckets(t *testing.T) {
	chunks := []kb.Chunk{
		{ID: "f1", Text: "collision fraud staged accident", Tags: []string{"fraud"}, Source: "fraud.md"},
		{ID: "c1", Text: "collision coverage own damage", Tags: []string{"coverage"}, Source: "coverage.md"},
		{ID: "g1", Text: "collision general triage steps", Source: "sop1.md"},
		{ID: "g2", Text: "collision escalation thresholds", Source: "sop2.md"},
	}
	r := New(chunks)

	split := r.RetrieveSplit(testClaim(), 3, 1, 1)
	if len(split.Fraud) != 1 || split.Fraud[0].ID != "f1" {
		t.Errorf("expected fraud bucket [f1], got %v", split.Fraud)
	}
	if len(split.Coverage) != 1 || split.Coverage[0].ID != "c1" {
		t.Errorf("expected coverage bucket [c1], got %v", split.Coverage)
	}
	if len(split.General) != 1 {
		t.Errorf("expected general clipped to remaining budget 1, got %d", len(split.General))
	}
	if got := len(split.All()); got != 3 {
		t.Errorf("expected 3 rules total, got %d", got)
	}
}

func TestRetriever_RetrieveSplit_FraudSourcePrefix(t *testing.T) {
	chunks := []kb.Chunk{
		{ID: "f1", Text: "collision repeated claims pattern", Source: "kb-fraud-patterns.md"},
		{ID: "g1", Text: "collision general steps", Source: "sop.md"},
	}
	r := New(chunks)

	split := r.RetrieveSplit(testClaim(), 2, 1, 1)
	if len(split.Fraud) != 1 || split.Fraud[0].ID != "f1" {
		t.Errorf("expected kb-fraud source to land in fraud bucket, got %v", split.Fraud)
	}
}

func TestRetriever_ExcerptCap(t *testing.T) {
	long := strings.Repeat("collision ", 200)
	r := New([]kb.Chunk{{ID: "a", Text: long, Source: "kb.md"}})

	rules := r.Retrieve(testClaim(), 1)
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if len(rules[0].Text) > excerptChars {
		t.Errorf("expected excerpt capped at %d chars, got %d", excerptChars, len(rules[0].Text))
	}
}

func TestBuildQuery(t *testing.T) {
	claim := testClaim()
	claim.Incident.Description = strings.Repeat("x", 300)

	q := BuildQuery(claim)
	if !strings.Contains(q, "coverage_type Comprehensive") {
		t.Errorf("query missing coverage type: %q", q)
	}
	if !strings.Contains(q, "impact_point Rear") {
		t.Errorf("query missing impact point: %q", q)
	}
	if strings.Contains(q, strings.Repeat("x", 201)) {
		t.Errorf("description not truncated to 200 chars")
	}
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	if len(rules) != 3 {
		t.Fatalf("expected 3 default rules, got %d", len(rules))
	}
	for _, rule := range rules {
		if rule.ID == "" || rule.Text == "" {
			t.Errorf("default rule incomplete: %+v", rule)
		}
	}
}
