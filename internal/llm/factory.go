package llm

import (
	"context"
	"os"

	"github.com/ziadkadry99/portfolio-ai/internal/apperr"
)

// NewProvider creates a new LLM provider based on the given provider type and model.
// Supported provider types: "anthropic", "openai", "google", "ollama".
// A missing API key is a configuration error.
func NewProvider(providerType string, model string, opts ...Option) (Provider, error) {
	switch providerType {
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, apperr.Configuration("ANTHROPIC_API_KEY environment variable is not set")
		}
		return NewAnthropicProvider(apiKey, model, opts...), nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, apperr.Configuration("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model, opts...), nil

	case "google":
		apiKey := os.Getenv("GOOGLE_API_KEY")
		if apiKey == "" {
			return nil, apperr.Configuration("GOOGLE_API_KEY environment variable is not set")
		}
		return NewGoogleProvider(apiKey, model, opts...), nil

	case "ollama":
		return NewOllamaProvider(os.Getenv("OLLAMA_HOST"), model, opts...), nil

	default:
		return nil, apperr.Configuration("unsupported provider type: %s", providerType)
	}
}

// Unconfigured is a Provider that fails every call with the error it was
// built from. The server starts without credentials and reports the problem
// on each request instead.
type Unconfigured struct {
	Err          error
	ProviderName string
}

func (u Unconfigured) Name() string { return u.ProviderName }

func (u Unconfigured) Complete(context.Context, CompletionRequest) (*CompletionResponse, error) {
	return nil, u.Err
}
