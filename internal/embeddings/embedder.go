package embeddings

import (
	"context"
	"os"

	"github.com/ziadkadry99/portfolio-ai/internal/apperr"
)

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}

// New returns the embedder for provider, or nil when provider is empty,
// which disables semantic pre-ranking.
func New(provider, model string) (Embedder, error) {
	switch provider {
	case "":
		return nil, nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, apperr.Configuration("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIEmbedder(apiKey, OpenAIModel(model), ""), nil
	case "ollama":
		return NewOllamaEmbedder(model, 0, os.Getenv("OLLAMA_HOST")), nil
	default:
		return nil, apperr.Configuration("unsupported embedding provider: %s", provider)
	}
}
