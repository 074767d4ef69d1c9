// Package pipeline drives a claim through retrieval, prompting, generation,
// validation, repair and backfill. Process never returns an error to the
// caller: every failure mode degrades to a structured result carrying an
// error code and a deterministic fallback payload.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/claimops/claimassist/internal/cache"
	"github.com/claimops/claimassist/internal/llm"
	"github.com/claimops/claimassist/internal/model"
	"github.com/claimops/claimassist/internal/prompt"
	"github.com/claimops/claimassist/internal/retrieve"
	"github.com/claimops/claimassist/internal/validate"
)

// maxRepairRounds caps assessment repair round-trips; together with the
// single parse retry this bounds a claim at four generation requests.
const maxRepairRounds = 2

// Pipeline orchestrates the complete intake process for one claim at a
// time. The retriever and provider are shared and read-only; Process may be
// called repeatedly.
type Pipeline struct {
	retriever *retrieve.Retriever
	provider  llm.Provider
	cache     cache.Cache
	config    *model.Config
}

// New creates a pipeline with the given configuration, rule retriever and
// generation backend.
func New(cfg *model.Config, retriever *retrieve.Retriever, provider llm.Provider) *Pipeline {
	var respCache cache.Cache
	if cfg.Cache.Enabled {
		respCache = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
	}
	return &Pipeline{
		retriever: retriever,
		provider:  provider,
		cache:     respCache,
		config:    cfg,
	}
}

// NewSessionID generates a claim session identifier
func NewSessionID() string {
	return "sess-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// Process runs one claim through the full pipeline: rule retrieval, full
// generation, validation with bounded repair, deterministic backfill.
func (p *Pipeline) Process(ctx context.Context, claim model.Claim) *model.PipelineResult {
	session := NewSessionID()
	log.Info().Str("session_id", session).Msg("starting claim processing")
	rules := p.rulesFor(claim)
	req := prompt.Generation(claim, rules)
	return p.run(ctx, req, claim, session, rules, nil)
}

// AssessPackage re-assesses an already-trusted claim package (e.g. after a
// handler edited it): only the assessment, summary and confidence are
// requested from the model. Shares the parse/validate/repair/backfill
// machinery with Process.
func (p *Pipeline) AssessPackage(ctx context.Context, pkg model.ClaimPackage, claim model.Claim) *model.PipelineResult {
	session := pkg.SessionID
	if session == "" {
		session = NewSessionID()
		pkg.SessionID = session
	}
	log.Info().Str("session_id", session).Msg("starting assessment-only processing")
	rules := p.rulesFor(claim)
	req := prompt.Assessment(pkg, claim, rules)
	return p.run(ctx, req, claim, session, rules, &pkg)
}

// run executes the generation state machine. trustedPkg is non-nil for the
// assessment-only path, in which case the package is taken as given instead
// of read from the model response.
func (p *Pipeline) run(ctx context.Context, req prompt.Request, claim model.Claim, session string, rules prompt.RuleSet, trustedPkg *model.ClaimPackage) *model.PipelineResult {
	flat := rules.All()
	meta := model.GenerationMeta{
		Provider: p.provider.Name(),
		Model:    p.config.LLM.Model,
	}

	text, err := p.callModel(ctx, req, &meta)
	if err != nil {
		log.Error().Err(err).Str("session_id", session).Msg("generation call failed; returning fallback")
		return p.callFailedResult(claim, session, flat, meta, err)
	}

	parsed := ExtractJSON(text)
	if parsed == nil {
		log.Warn().Str("session_id", session).Msg("no JSON in model output; retrying with strict-JSON prompt")
		text, err = p.callModel(ctx, prompt.StrictJSONRetry(req), &meta)
		if err != nil {
			return p.callFailedResult(claim, session, flat, meta, err)
		}
		parsed = ExtractJSON(text)
		if parsed == nil {
			log.Error().Str("session_id", session).Msg("no JSON parsed after strict retry")
			return p.invalidOutputResult(claim, session, flat, meta, model.ReasonNoJSON, text)
		}
	}

	var pkg model.ClaimPackage
	if trustedPkg != nil {
		pkg = *trustedPkg
	} else {
		pkgMap := model.ToStringMap(parsed["fnol_package"])
		if pkgMap == nil {
			log.Error().Str("session_id", session).Msg("fnol_package missing or invalid in model output")
			return p.invalidOutputResult(claim, session, flat, meta, model.ReasonPackageBad, text)
		}
		pkg = model.PackageFromMap(pkgMap, session)
	}

	// Numeric fields default independently; they never trigger the repair
	// loop.
	confidence := model.SafeFloat(parsed["confidence"], 0.5)

	assessment := model.ToStringMap(parsed["claim_assessment"])
	if assessment == nil {
		assessment = map[string]any{}
	}

	missing := validate.CheckAssessment(assessment)
	for round := 0; len(missing) > 0 && round < maxRepairRounds; round++ {
		fields := fieldsForCodes(missing)
		log.Warn().Str("session_id", session).Int("round", round+1).Strs("missing", fields).Msg("assessment incomplete; issuing repair request")

		var repairReq prompt.Request
		if round == 0 {
			repairReq = prompt.GenerationRetry(claim, rules, fields)
		} else {
			repairReq = prompt.Repair(assessment, fields, flat)
		}

		meta.RepairRounds++
		repairText, err := p.callModel(ctx, repairReq, &meta)
		if err != nil {
			log.Warn().Err(err).Str("session_id", session).Msg("repair call failed; relying on backfill")
			break
		}
		repairParsed := ExtractJSON(repairText)
		if repairParsed == nil {
			continue
		}
		mergeMissing(assessment, repairAssessment(repairParsed), missing)
		missing = validate.CheckAssessment(assessment)
	}

	backfilled := Backfill(assessment, session)
	meta.BackfilledKey = backfilled
	if containsField(backfilled, "fraud_risk_level") {
		pkg.RequiresManualReview = true
	}

	if len(pkg.CitedDocs) == 0 {
		pkg.CitedDocs = citedDocsFromRules(flat)
	}

	verification := validate.CheckPackageBasics(pkg, claim)
	if !verification.Passed {
		pkg.RequiresManualReview = true
	}

	summary := model.ToString(parsed["summary"])
	if summary == "" {
		summary = "(no summary provided)"
	}

	log.Info().
		Str("session_id", session).
		Bool("verification_passed", verification.Passed).
		Int("backfilled_fields", len(backfilled)).
		Msg("claim processing complete")

	return &model.PipelineResult{
		Package:      pkg,
		Assessment:   model.AssessmentFromMap(assessment, session),
		Summary:      summary,
		Confidence:   confidence,
		Retrieved:    flat,
		Verification: verification,
		Meta:         meta,
	}
}

// rulesFor retrieves the bucketed rule set for a claim. An empty retrieval
// result is recovered locally with the fixed default rule set, never
// surfaced as an error.
func (p *Pipeline) rulesFor(claim model.Claim) prompt.RuleSet {
	cfg := p.config.Retrieval
	split := p.retriever.RetrieveSplit(claim, cfg.TopK, cfg.FraudK, cfg.CoverageK)
	rules := prompt.RuleSet{
		Fraud:    split.Fraud,
		Coverage: split.Coverage,
		General:  split.General,
	}
	if len(rules.All()) == 0 {
		log.Warn().Msg("rule retrieval returned nothing; substituting default rules")
		rules.General = retrieve.DefaultRules()
	}
	return rules
}

// callModel issues one generation request, consulting the response cache
// first and retrying a transport failure once before surfacing it.
func (p *Pipeline) callModel(ctx context.Context, req prompt.Request, meta *model.GenerationMeta) (string, error) {
	key := cache.RequestKey(req.System, req.User, p.config.LLM.Model)
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			meta.CacheHit = true
			return string(cached), nil
		}
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		meta.Attempts++
		resp, err := p.provider.Generate(ctx, llm.GenerateRequest{
			System:      req.System,
			Prompt:      req.User,
			Model:       p.config.LLM.Model,
			MaxTokens:   p.config.LLM.MaxTokens,
			Temperature: p.config.LLM.Temperature,
			NumCtx:      p.config.LLM.NumCtx,
		})
		if err != nil {
			lastErr = err
			continue
		}
		meta.TokensUsed += resp.TokensUsed
		if resp.Model != "" {
			meta.Model = resp.Model
		}
		if p.cache != nil {
			_ = p.cache.Set(key, []byte(resp.Text), p.config.Cache.TTL)
		}
		return resp.Text, nil
	}
	return "", lastErr
}

func (p *Pipeline) callFailedResult(claim model.Claim, session string, rules []model.RetrievedRule, meta model.GenerationMeta, err error) *model.PipelineResult {
	fb := Fallback(claim, session, rules)
	return &model.PipelineResult{
		Package:      fb.Package,
		Assessment:   fb.Assessment,
		Summary:      fb.Summary,
		Confidence:   fb.Confidence,
		Retrieved:    rules,
		Verification: validate.CheckPackageBasics(fb.Package, claim),
		Meta:         meta,
		Error:        model.ErrCallFailed,
		Reason:       err.Error(),
		Fallback:     fb,
	}
}

func (p *Pipeline) invalidOutputResult(claim model.Claim, session string, rules []model.RetrievedRule, meta model.GenerationMeta, reason, rawText string) *model.PipelineResult {
	fb := Fallback(claim, session, rules)
	return &model.PipelineResult{
		Package:      fb.Package,
		Assessment:   fb.Assessment,
		Summary:      fb.Summary,
		Confidence:   fb.Confidence,
		Retrieved:    rules,
		Verification: validate.CheckPackageBasics(fb.Package, claim),
		Meta:         meta,
		Error:        model.ErrInvalidOutput,
		Reason:       reason,
		RawModelText: rawText,
		Fallback:     fb,
	}
}

// repairAssessment locates the assessment object inside a repair response:
// the model may return the full wrapper, a claim_assessment envelope, or
// the bare assessment object.
func repairAssessment(parsed map[string]any) map[string]any {
	if m := model.ToStringMap(parsed["claim_assessment"]); m != nil {
		return m
	}
	return parsed
}

// mergeMissing copies only the previously-missing fields from src into
// dst; fields already present and non-empty are never overwritten.
func mergeMissing(dst, src map[string]any, missingCodes []string) {
	if src == nil {
		return
	}
	for _, code := range missingCodes {
		path := strings.Split(validate.FieldForCode(code), ".")
		copyPath(dst, src, path)
	}
}

func copyPath(dst, src map[string]any, path []string) {
	key := path[0]
	if len(path) == 1 {
		if isBlank(dst[key]) && !isBlank(src[key]) {
			dst[key] = src[key]
		}
		return
	}

	srcChild := model.ToStringMap(src[key])
	if srcChild == nil {
		return
	}
	dstChild := model.ToStringMap(dst[key])
	if dstChild == nil {
		dstChild = map[string]any{}
		dst[key] = dstChild
	}
	copyPath(dstChild, srcChild, path[1:])
}

func fieldsForCodes(codes []string) []string {
	fields := make([]string, 0, len(codes))
	for _, code := range codes {
		fields = append(fields, validate.FieldForCode(code))
	}
	return fields
}

func citedDocsFromRules(rules []model.RetrievedRule) []model.CitedDoc {
	docs := make([]model.CitedDoc, 0, len(rules))
	for _, rule := range rules {
		excerpt := rule.Text
		if len(excerpt) > 200 {
			excerpt = excerpt[:200]
		}
		docs = append(docs, model.CitedDoc{DocID: rule.ID, Excerpt: excerpt})
	}
	return docs
}

func containsField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
