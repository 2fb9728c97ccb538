package insights

import (
	"context"
	"time"

	"github.com/ziadkadry99/portfolio-ai/internal/apperr"
	"github.com/ziadkadry99/portfolio-ai/internal/interactions"
	"github.com/ziadkadry99/portfolio-ai/internal/metrics"
	"github.com/ziadkadry99/portfolio-ai/internal/portfolio"
	"github.com/ziadkadry99/portfolio-ai/internal/vectordb"
)

// Ranker orders candidate documents by relevance to a query.
type Ranker interface {
	Rank(ctx context.Context, query string, docs []portfolio.Document, topK int) ([]vectordb.Ranked, error)
}

// InteractionLog stores finished runs.
type InteractionLog interface {
	Record(ctx context.Context, rec interactions.Record) (string, error)
}

// Option configures an Engine.
type Option func(*Engine)

// WithModel sets the model name sent to the provider.
func WithModel(model string) Option {
	return func(e *Engine) { e.model = model }
}

// WithRanker enables semantic pre-ranking of search candidates.
func WithRanker(r Ranker, topK int) Option {
	return func(e *Engine) {
		e.ranker = r
		e.topK = topK
	}
}

// WithPrefilter toggles server-side application of search filters. When
// off, filters are only described to the model.
func WithPrefilter(on bool) Option {
	return func(e *Engine) { e.prefilter = on }
}

// WithInteractionLog records every run.
func WithInteractionLog(l InteractionLog) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics sets the Prometheus recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithReporter sets where unexpected failures are reported.
func WithReporter(r apperr.Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}
