package vectordb

import (
	"context"
	"fmt"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/ziadkadry99/portfolio-ai/internal/embeddings"
	"github.com/ziadkadry99/portfolio-ai/internal/portfolio"
)

const collectionName = "documents"

// maxEmbedRunes caps how much of a document body is embedded.
const maxEmbedRunes = 2000

// Ranked is a document with its cosine similarity to the query.
type Ranked struct {
	Document   portfolio.Document
	Similarity float32
}

// Ranker orders portfolio documents by semantic similarity to a query.
// Each call builds its own in-memory chromem collection, so nothing is
// shared between requests.
type Ranker struct {
	embedder embeddings.Embedder
}

// NewRanker creates a ranker backed by embedder.
func NewRanker(embedder embeddings.Embedder) *Ranker {
	return &Ranker{embedder: embedder}
}

// Rank returns at most topK of docs ordered by similarity to query, most
// similar first. topK <= 0 ranks every document.
func (r *Ranker) Rank(ctx context.Context, query string, docs []portfolio.Document, topK int) ([]Ranked, error) {
	if len(docs) == 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if topK <= 0 || topK > len(docs) {
		topK = len(docs)
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = embedText(d)
	}
	vectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	col, err := chromem.NewDB().CreateCollection(collectionName, nil, embeddings.ToChromemFunc(r.embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	byID := make(map[string]portfolio.Document, len(docs))
	chromDocs := make([]chromem.Document, 0, len(docs))
	for i, d := range docs {
		if _, dup := byID[d.ID]; dup {
			continue
		}
		byID[d.ID] = d
		chromDocs = append(chromDocs, chromem.Document{
			ID:        d.ID,
			Content:   texts[i],
			Embedding: vectors[i],
			Metadata: map[string]string{
				"doc_type": d.DocType,
				"project":  d.ProjectCode,
				"area":     d.Area,
			},
		})
	}
	if err := col.AddDocuments(ctx, chromDocs, 1); err != nil {
		return nil, fmt.Errorf("index documents: %w", err)
	}

	// chromem-go requires nResults <= collection size.
	if n := col.Count(); topK > n {
		topK = n
	}
	results, err := col.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	ranked := make([]Ranked, 0, len(results))
	for _, res := range results {
		ranked = append(ranked, Ranked{Document: byID[res.ID], Similarity: res.Similarity})
	}
	return ranked, nil
}

func embedText(d portfolio.Document) string {
	var sb strings.Builder
	sb.WriteString(d.Title)
	if len(d.Tags) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(d.Tags, ", "))
	}
	sb.WriteString("\n")
	body := []rune(d.Content)
	if len(body) > maxEmbedRunes {
		body = body[:maxEmbedRunes]
	}
	sb.WriteString(string(body))
	return sb.String()
}
