package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/claimops/claimassist/internal/model"
	"github.com/claimops/claimassist/internal/worker"
)

var (
	kbDir       string
	llmProvider string
	llmModel    string
	outJSON     string
	pretty      bool
	noCache     bool
	procTimeout time.Duration
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Process a single claim into a structured FNOL package",
	Long: `Process runs one claim through the full intake pipeline:
- Retrieve relevant policy, fraud and triage rules from the knowledge base
- Generate a structured claim package and eligibility assessment
- Validate the output, repair gaps, backfill safe defaults
- Attach rule citations and a deterministic verification record

The input file holds one claim: a JSON object, or the first row of a
CSV/JSONL batch file.

Example:
  claimassist process claim.json
  claimassist process claims.csv --json result.json --pretty
  claimassist process claim.json --provider openai --model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&kbDir, "kb", "", "knowledge base directory (default: knowledge_base)")
	processCmd.Flags().StringVar(&llmProvider, "provider", "", "LLM provider (ollama, openai)")
	processCmd.Flags().StringVar(&llmModel, "model", "", "LLM model name")
	processCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: stdout)")
	processCmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	processCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")
	processCmd.Flags().DurationVar(&procTimeout, "timeout", 2*time.Minute, "overall processing timeout")
}

func runProcess(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), procTimeout)
	defer cancel()

	cfg := loadConfig()
	applyLLMFlags(cmd, cfg)
	if noCache {
		cfg.Cache.Enabled = false
	}
	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	claim, err := readClaim(file)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Processing: %s\n", file)
		fmt.Fprintf(os.Stderr, "Provider:   %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintln(os.Stderr)
	}

	result := p.Process(ctx, claim)

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Session: %s\n", result.Package.SessionID)
		fmt.Fprintf(os.Stderr, "✓ Eligibility: %s\n", result.Assessment.Eligibility)
		fmt.Fprintf(os.Stderr, "✓ Rules cited: %d\n", len(result.Retrieved))
		if result.Error != "" {
			fmt.Fprintf(os.Stderr, "✗ Degraded: %s (%s)\n", result.Error, result.Reason)
		}
		if result.Package.RequiresManualReview {
			fmt.Fprintf(os.Stderr, "! Requires manual review\n")
		}
		fmt.Fprintln(os.Stderr)
	}

	return writeResult(result, outJSON, pretty)
}

// applyLLMFlags lets command-line flags override the merged configuration
func applyLLMFlags(cmd *cobra.Command, cfg *model.Config) {
	if cmd.Flags().Changed("kb") {
		cfg.KB.Dir = kbDir
	}
	if cmd.Flags().Changed("provider") {
		cfg.LLM.Provider = llmProvider
	}
	if cmd.Flags().Changed("model") {
		cfg.LLM.Model = llmModel
	}
}

// readClaim loads a single claim: a bare JSON object, or the first entry of
// a batch file.
func readClaim(path string) (model.Claim, error) {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		data, err := os.ReadFile(path)
		if err != nil {
			return model.Claim{}, fmt.Errorf("read file: %w", err)
		}
		var row map[string]any
		if err := json.Unmarshal(data, &row); err == nil {
			return model.ClaimFromRow(row), nil
		}
	}

	claims, err := worker.ReadClaimsFromFile(path)
	if err != nil {
		return model.Claim{}, err
	}
	if len(claims) == 0 {
		return model.Claim{}, fmt.Errorf("no claims found in %s", path)
	}
	return claims[0], nil
}

// writeResult renders a pipeline result as JSON to a file or stdout
func writeResult(result *model.PipelineResult, path string, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	}
	return nil
}
