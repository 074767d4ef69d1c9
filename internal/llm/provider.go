package llm

import "context"

// Provider defines the interface for text-generation backends. Any backend
// accepting a system instruction, a user instruction and generation options
// and returning a text completion is substitutable.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces a text completion for one request
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for one generation call
type GenerateRequest struct {
	// System is the system instruction (task contract, output schema)
	System string

	// Prompt is the user payload (claim data, retrieved rules)
	Prompt string

	// Model overrides the configured model (provider-specific name)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling; structured output wants it low
	Temperature float64

	// NumCtx sets the context window for backends that expose it
	NumCtx int
}

// GenerateResponse contains one text completion
type GenerateResponse struct {
	// Text is the raw completion text
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption (estimated if not reported)
	TokensUsed int
}

// Config holds generation backend configuration
type Config struct {
	// Provider name: "ollama", "openai", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted backends
	APIKey string

	// BaseURL for custom endpoints (e.g. a local Ollama server)
	BaseURL string

	// Timeout for one request, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float64

	// NumCtx context window size (Ollama)
	NumCtx int
}

// DefaultConfig returns sensible defaults for a local Ollama backend
func DefaultConfig() Config {
	return Config{
		Provider:    "ollama",
		Model:       "llama3.2:3b",
		Timeout:     60,
		MaxTokens:   700,
		Temperature: 0.2,
		NumCtx:      4096,
	}
}
