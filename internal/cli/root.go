// Package cli wires the claimassist commands together: configuration
// loading, logging setup, and the shared pipeline construction used by the
// process and batch commands.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/claimops/claimassist/internal/kb"
	"github.com/claimops/claimassist/internal/llm"
	"github.com/claimops/claimassist/internal/model"
	"github.com/claimops/claimassist/internal/pipeline"
	"github.com/claimops/claimassist/internal/retrieve"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimassist",
	Short: "ClaimAssist - Structured first-notice-of-loss intake for motor claims",
	Long: `ClaimAssist turns raw first-notice-of-loss reports into structured claim
packages and eligibility assessments.

For each claim it retrieves the relevant policy, fraud and triage rules
from a local knowledge base, asks a language model for a structured
package grounded in those rules, validates the output, repairs what it
can, and backfills safe defaults for the rest.

The pipeline never fails a claim: transport errors and unusable model
output degrade to a deterministic fallback package flagged for manual
review.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for ClaimAssist.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("claimassist v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimassist/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables, and sets up logging
func initConfig() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zlog.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.claimassist")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CLAIMASSIST_*
	viper.SetEnvPrefix("CLAIMASSIST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges the config file over the built-in defaults
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		zlog.Warn().Err(err).Msg("config file could not be decoded; using defaults")
	}
	cfg.Output.Verbose = verbose
	return cfg
}

// resolveAPIKey pulls provider credentials from the environment the way the
// provider expects them; the config file never has to hold a key.
func resolveAPIKey(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama", "":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

// buildPipeline assembles the full processing pipeline from configuration:
// knowledge base, retriever, provider, cache.
func buildPipeline(cfg *model.Config) (*pipeline.Pipeline, error) {
	chunks, err := kb.Load(cfg.KB.Dir)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}

	return pipeline.New(cfg, retrieve.New(chunks), provider), nil
}
