package worker

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/claimops/claimassist/internal/model"
)

// countingProcessor tags each result with the claim's policy id so batch
// ordering can be verified.
type countingProcessor struct {
	calls int64
}

func (p *countingProcessor) Process(ctx context.Context, claim model.Claim) *model.PipelineResult {
	atomic.AddInt64(&p.calls, 1)
	return &model.PipelineResult{
		Package: model.ClaimPackage{SessionID: claim.Policy.PolicyID},
	}
}

func testClaims(n int) []model.Claim {
	claims := make([]model.Claim, n)
	for i := range claims {
		claims[i] = model.Claim{Policy: model.Policy{PolicyID: string(rune('a' + i))}}
	}
	return claims
}

func TestRunner_ProcessClaims_OrderPreserved(t *testing.T) {
	processor := &countingProcessor{}
	runner := NewRunner(processor, NewLimiter(60000, 100), 3)

	claims := testClaims(5)
	results := runner.ProcessClaims(context.Background(), claims)

	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	for i, result := range results {
		if result == nil {
			t.Fatalf("result %d missing", i)
		}
		if result.Package.SessionID != claims[i].Policy.PolicyID {
			t.Errorf("result %d out of order: got %q, want %q", i, result.Package.SessionID, claims[i].Policy.PolicyID)
		}
	}
	if got := atomic.LoadInt64(&processor.calls); got != 5 {
		t.Errorf("expected 5 processor calls, got %d", got)
	}
}

func TestRunner_ProcessClaims_Empty(t *testing.T) {
	runner := NewRunner(&countingProcessor{}, NewLimiter(60000, 100), 2)
	results := runner.ProcessClaims(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}

func TestRunner_ProcessClaims_CancelledContext(t *testing.T) {
	// With the burst exhausted and the context cancelled, claims are left
	// unprocessed rather than hanging.
	processor := &countingProcessor{}
	limiter := NewLimiter(1, 1)
	limiter.Allow()
	runner := NewRunner(processor, limiter, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := runner.ProcessClaims(ctx, testClaims(3))
	if len(results) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(results))
	}
	for _, result := range results {
		if result != nil {
			t.Errorf("cancelled batch must not process claims")
		}
	}
}

func TestNewRunner_WorkerFloor(t *testing.T) {
	runner := NewRunner(&countingProcessor{}, NewLimiter(60000, 100), 0)
	if runner.workers != 1 {
		t.Errorf("worker count must floor at 1, got %d", runner.workers)
	}
}
