package embeddings

import (
	"context"
	"errors"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

// ToChromemFunc is the embedding function of the document ranker's per-call
// chromem collection. Documents arrive pre-embedded, so in practice it embeds
// the search query that the collection ranks them against. An empty result
// from e is an error: chromem cannot score documents without a query vector.
func ToChromemFunc(e Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vecs, err := e.Embed(ctx, []string{text})
		if err != nil {
			return nil, fmt.Errorf("embedding ranking text: %w", err)
		}
		if len(vecs) == 0 {
			return nil, errors.New("embedding ranking text: backend returned no vector")
		}
		return vecs[0], nil
	}
}
