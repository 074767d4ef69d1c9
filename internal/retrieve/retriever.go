// Package retrieve ranks knowledge-base chunks against a structured claim
// and applies tag-preference re-ranking and concern bucketing.
package retrieve

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/claimops/claimassist/internal/index"
	"github.com/claimops/claimassist/internal/kb"
	"github.com/claimops/claimassist/internal/model"
)

// excerptChars caps the text carried on each retrieved rule so prompt size
// stays bounded regardless of chunk size.
const excerptChars = 800

// Retriever answers rule queries for claims against an immutable chunk
// corpus. Build once at startup; safe for concurrent readers.
type Retriever struct {
	chunks []kb.Chunk
	index  *index.Index
}

// New builds a retriever over the given chunks
func New(chunks []kb.Chunk) *Retriever {
	docs := make([]string, len(chunks))
	for i, c := range chunks {
		docs[i] = c.Text
	}
	return &Retriever{chunks: chunks, index: index.New(docs)}
}

// SplitRules is the bucketed form of a retrieval result, letting prompting
// budget tokens across concern areas rather than by raw rank alone.
type SplitRules struct {
	Fraud    []model.RetrievedRule
	Coverage []model.RetrievedRule
	General  []model.RetrievedRule
}

// All flattens the buckets in fraud, coverage, general order
func (s SplitRules) All() []model.RetrievedRule {
	out := make([]model.RetrievedRule, 0, len(s.Fraud)+len(s.Coverage)+len(s.General))
	out = append(out, s.Fraud...)
	out = append(out, s.Coverage...)
	out = append(out, s.General...)
	return out
}

// Retrieve ranks chunks against the claim and returns up to topK rules.
// Tag preference is advisory, not exclusionary: chunks carrying a preferred
// tag are taken first in rank order, then remaining slots are filled from
// the skipped chunks in rank order.
func (r *Retriever) Retrieve(claim model.Claim, topK int) []model.RetrievedRule {
	if topK <= 0 || len(r.chunks) == 0 {
		return nil
	}

	query := BuildQuery(claim)
	hits := r.index.Similarity(query, topK*2)
	preferred := preferredTags(claim)

	var results []model.RetrievedRule
	var skipped []index.Hit
	for _, h := range hits {
		if len(results) >= topK {
			break
		}
		if len(preferred) > 0 && !r.chunks[h.Index].HasAnyTag(preferred) {
			skipped = append(skipped, h)
			continue
		}
		results = append(results, r.ruleFromHit(h))
	}
	for _, h := range skipped {
		if len(results) >= topK {
			break
		}
		results = append(results, r.ruleFromHit(h))
	}

	log.Debug().Int("rules", len(results)).Strs("preferred_tags", preferred).Msg("rule retrieval complete")
	return results
}

// RetrieveSplit buckets a 2x-topK ranked set into fraud, coverage and
// general groups. A chunk lands in at most one bucket, fraud taking
// priority over coverage; general fills whatever budget remains.
func (r *Retriever) RetrieveSplit(claim model.Claim, topK, fraudK, coverageK int) SplitRules {
	ranked := r.Retrieve(claim, topK*2)

	var split SplitRules
	for _, rule := range ranked {
		tags := rule.Tags
		if containsTag(tags, "fraud") || strings.HasPrefix(strings.ToLower(rule.Source), "kb-fraud") {
			if len(split.Fraud) < fraudK {
				split.Fraud = append(split.Fraud, rule)
				continue
			}
		}
		if containsTag(tags, "coverage") || containsTag(tags, "comp") || containsTag(tags, "tpl") || containsTag(tags, "zerodep") {
			if len(split.Coverage) < coverageK {
				split.Coverage = append(split.Coverage, rule)
				continue
			}
		}
		split.General = append(split.General, rule)
	}

	remaining := topK - len(split.Fraud) - len(split.Coverage)
	if remaining < 0 {
		remaining = 0
	}
	if len(split.General) > remaining {
		split.General = split.General[:remaining]
	}
	return split
}

// DefaultRules is the retrieval-failure substitute: the synthetic default
// chunks rendered as rules. Never surfaced as an error to the caller.
func DefaultRules() []model.RetrievedRule {
	chunks := kb.DefaultChunks()
	rules := make([]model.RetrievedRule, len(chunks))
	for i, c := range chunks {
		rules[i] = model.RetrievedRule{ID: c.ID, Text: c.Text, Tags: c.Tags, Source: c.Source}
	}
	return rules
}

// BuildQuery concatenates labeled claim fields in a fixed order so that
// structured attributes dominate lexical matching over free text. Only the
// first 200 characters of the description are included.
func BuildQuery(claim model.Claim) string {
	desc := claim.Incident.Description
	if len(desc) > 200 {
		desc = desc[:200]
	}
	parts := []string{
		fmt.Sprintf("coverage_type %s", claim.Policy.CoverageType),
		fmt.Sprintf("policy_status %s", claim.Policy.Status),
		fmt.Sprintf("incident_type %s", claim.Incident.Type),
		fmt.Sprintf("impact_point %s", claim.Incident.ImpactPoint),
		fmt.Sprintf("location %s", claim.Incident.Location),
		fmt.Sprintf("photos_count %d", claim.Documents.PhotosCount),
		fmt.Sprintf("addons %s", strings.Join(claim.Policy.Addons, " ")),
		desc,
	}
	return strings.Join(parts, " | ")
}

func (r *Retriever) ruleFromHit(h index.Hit) model.RetrievedRule {
	c := r.chunks[h.Index]
	text := c.Text
	if len(text) > excerptChars {
		text = text[:excerptChars]
	}
	return model.RetrievedRule{
		ID:     c.ID,
		Text:   text,
		Tags:   c.Tags,
		Source: c.Source,
		Score:  h.Score,
	}
}

// preferredTags derives advisory tag preferences from the claim: TPL
// policies prefer tpl-tagged rules, comprehensive policies comp-tagged,
// zero-depreciation add-ons zerodep-tagged.
func preferredTags(claim model.Claim) []string {
	var tags []string
	cov := strings.ToLower(claim.Policy.CoverageType)
	if strings.HasPrefix(cov, "tpl") {
		tags = append(tags, "tpl")
	}
	if strings.Contains(cov, "comp") {
		tags = append(tags, "comp")
	}
	for _, addon := range claim.Policy.Addons {
		if strings.Contains(strings.ToLower(addon), "zerodep") {
			tags = append(tags, "zerodep")
			break
		}
	}
	return tags
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
