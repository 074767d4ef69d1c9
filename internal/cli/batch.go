package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/claimops/claimassist/internal/worker"
)

var (
	concurrency  int
	rpm          float64
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Process a batch of claims from a CSV, JSON or JSONL file",
	Long: `Batch processes every claim in the input file:
- CSV files need a header row; JSON files hold an array of claim objects;
  JSONL/NDJSON files hold one claim object per line
- Claims are processed with a bounded worker count, paced to a
  requests-per-minute budget so a local model is not overwhelmed
- Each claim produces an individual JSON result named by session ID

Example:
  claimassist batch claims.csv
  claimassist batch claims.jsonl --concurrency 4 --rpm 60
  claimassist batch claims.csv --output-dir ./results --timeout 1h`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 2, "number of concurrent workers")
	batchCmd.Flags().Float64Var(&rpm, "rpm", 0, "generation requests per minute (default: from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./claimassist-results", "output directory for results")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	batchCmd.Flags().StringVar(&kbDir, "kb", "", "knowledge base directory (default: knowledge_base)")
	batchCmd.Flags().StringVar(&llmProvider, "provider", "", "LLM provider (ollama, openai)")
	batchCmd.Flags().StringVar(&llmModel, "model", "", "LLM model name")
	batchCmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	applyLLMFlags(cmd, cfg)
	if noCache {
		cfg.Cache.Enabled = false
	}
	if cmd.Flags().Changed("rpm") {
		cfg.Batch.RequestsPerMinute = rpm
	}
	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Rate:         %.0f requests/min\n", cfg.Batch.RequestsPerMinute)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Provider:     %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "\n")

	limiter := worker.NewLimiter(cfg.Batch.RequestsPerMinute, cfg.Batch.Burst)
	runner := worker.NewRunner(p, limiter, concurrency)

	results, err := runner.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	okCount := 0
	degradedCount := 0
	skippedCount := 0

	for i, result := range results {
		if result == nil {
			skippedCount++
			fmt.Fprintf(os.Stderr, "✗ claim %d: not processed (batch interrupted)\n", i+1)
			continue
		}

		path := filepath.Join(outputDir, result.Package.SessionID+".json")
		if err := writeResult(result, path, pretty); err != nil {
			fmt.Fprintf(os.Stderr, "✗ claim %d: %v\n", i+1, err)
			continue
		}

		if result.Error != "" {
			degradedCount++
			fmt.Fprintf(os.Stderr, "! %s: %s (%s)\n", result.Package.SessionID, result.Error, result.Reason)
			continue
		}

		okCount++
		fmt.Fprintf(os.Stderr, "✓ %s: %s\n", result.Package.SessionID, result.Assessment.Eligibility)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d claims\n", len(results))
	fmt.Fprintf(os.Stderr, "  Clean:     %d\n", okCount)
	fmt.Fprintf(os.Stderr, "  Degraded:  %d\n", degradedCount)
	if skippedCount > 0 {
		fmt.Fprintf(os.Stderr, "  Skipped:   %d\n", skippedCount)
	}
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
