package model

import "time"

// Config is the full configuration tree, loadable from
// ~/.claimassist/config.yaml, CLAIMASSIST_* environment variables, and flags.
type Config struct {
	KB        KBConfig        `yaml:"kb" mapstructure:"kb"`
	Retrieval RetrievalConfig `yaml:"retrieval" mapstructure:"retrieval"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
}

// KBConfig locates the knowledge base on disk
type KBConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// RetrievalConfig bounds how many rules reach the prompt
type RetrievalConfig struct {
	TopK      int `yaml:"top_k" mapstructure:"top_k"`
	FraudK    int `yaml:"fraud_k" mapstructure:"fraud_k"`
	CoverageK int `yaml:"coverage_k" mapstructure:"coverage_k"`
}

// LLMConfig selects and tunes the generation backend
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	NumCtx      int     `yaml:"num_ctx" mapstructure:"num_ctx"`
}

// CacheConfig controls the in-memory generation response cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// BatchConfig paces sequential batch processing
type BatchConfig struct {
	RequestsPerMinute float64 `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// OutputConfig controls result rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	Pretty  bool `yaml:"pretty" mapstructure:"pretty"`
}

// DefaultConfig returns sensible defaults: local Ollama backend, knowledge
// base in ./knowledge_base, retrieval budget matching the prompt size caps.
func DefaultConfig() *Config {
	return &Config{
		KB: KBConfig{
			Dir: "knowledge_base",
		},
		Retrieval: RetrievalConfig{
			TopK:      12,
			FraudK:    6,
			CoverageK: 6,
		},
		LLM: LLMConfig{
			Provider:    "ollama",
			Model:       "llama3.2:3b",
			Timeout:     60,
			MaxTokens:   700,
			Temperature: 0.2,
			NumCtx:      4096,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30 * time.Minute,
		},
		Batch: BatchConfig{
			RequestsPerMinute: 30,
			Burst:             1,
		},
		Output: OutputConfig{
			Pretty: true,
		},
	}
}
