// Package worker runs batches of claims through a claim processor with
// bounded concurrency and request pacing.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/claimops/claimassist/internal/model"
)

// Processor handles one claim end to end.
type Processor interface {
	Process(ctx context.Context, claim model.Claim) *model.PipelineResult
}

// Runner processes batches of claims. Each claim waits for limiter
// clearance before its processor call, and results keep the input order.
type Runner struct {
	processor Processor
	limiter   *Limiter
	workers   int
}

// NewRunner creates a batch runner with the given concurrency
func NewRunner(processor Processor, limiter *Limiter, workers int) *Runner {
	if workers <= 0 {
		workers = 1
	}

	return &Runner{
		processor: processor,
		limiter:   limiter,
		workers:   workers,
	}
}

// ProcessClaims processes claims concurrently and returns results in input
// order. When the context is cancelled mid-batch, entries for claims never
// reached remain nil.
func (r *Runner) ProcessClaims(ctx context.Context, claims []model.Claim) []*model.PipelineResult {
	results := make([]*model.PipelineResult, len(claims))
	if len(claims) == 0 {
		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := r.limiter.Wait(ctx); err != nil {
					log.Warn().Err(err).Int("claim_index", i).Msg("batch interrupted waiting for rate limit")
					return
				}
				results[i] = r.processor.Process(ctx, claims[i])
			}
		}()
	}

feed:
	for i := range claims {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// ProcessFile reads claims from a CSV, JSON or JSONL file and processes
// them as one batch.
func (r *Runner) ProcessFile(ctx context.Context, path string) ([]*model.PipelineResult, error) {
	claims, err := ReadClaimsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	log.Info().Int("claims", len(claims)).Str("file", path).Msg("starting batch run")

	return r.ProcessClaims(ctx, claims), nil
}
