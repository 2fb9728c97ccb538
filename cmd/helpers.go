package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ziadkadry99/portfolio-ai/internal/apperr"
	"github.com/ziadkadry99/portfolio-ai/internal/config"
	"github.com/ziadkadry99/portfolio-ai/internal/db"
	"github.com/ziadkadry99/portfolio-ai/internal/embeddings"
	"github.com/ziadkadry99/portfolio-ai/internal/insights"
	"github.com/ziadkadry99/portfolio-ai/internal/interactions"
	"github.com/ziadkadry99/portfolio-ai/internal/llm"
	"github.com/ziadkadry99/portfolio-ai/internal/logging"
	"github.com/ziadkadry99/portfolio-ai/internal/metrics"
	"github.com/ziadkadry99/portfolio-ai/internal/portfolio"
	"github.com/ziadkadry99/portfolio-ai/internal/vectordb"
)

// app holds the components shared by the server, MCP and one-off commands.
type app struct {
	cfg          *config.Config
	logger       zerolog.Logger
	db           *db.DB
	portfolio    *portfolio.Store
	interactions *interactions.Store
	metrics      *metrics.Recorder
	reporter     apperr.Reporter
	engine       *insights.Engine
}

// newApp opens the store and wires the insight engine. Missing provider
// credentials do not fail startup: every request reports a configuration
// error instead.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr),
		metrics: metrics.NewRecorder(),
	}

	a.reporter, err = apperr.NewReporter(cfg.SentryDSN, os.Getenv("PORTFOLIOAI_ENV"), Version)
	if err != nil {
		a.logger.Warn().Err(err).Msg("sentry disabled")
		a.reporter = apperr.NopReporter{}
	}

	a.db, err = db.Open(ctx, string(cfg.Database.Driver), cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a.portfolio = portfolio.NewStore(a.db)
	a.interactions = interactions.NewStore(a.db)

	opts := []insights.Option{
		insights.WithModel(cfg.Model),
		insights.WithPrefilter(cfg.Search.Prefilter),
		insights.WithInteractionLog(a.interactions),
		insights.WithMetrics(a.metrics),
		insights.WithReporter(a.reporter),
	}
	if ranker := a.ranker(); ranker != nil {
		opts = append(opts, insights.WithRanker(ranker, cfg.Search.TopK))
	}

	assembler := portfolio.NewAssembler(a.portfolio, portfolio.Limits{
		Projects:     cfg.Context.MaxProjects,
		Transactions: cfg.Context.MaxTransactions,
		Baselines:    cfg.Context.MaxBaselines,
		Documents:    cfg.Context.MaxDocuments,
	})

	a.engine, err = insights.NewEngine(a.provider(), assembler, opts...)
	if err != nil {
		a.db.Close()
		return nil, fmt.Errorf("creating insight engine: %w", err)
	}
	return a, nil
}

// provider builds the completion provider with retries and rate limiting.
func (a *app) provider() llm.Provider {
	p, err := llm.NewProvider(string(a.cfg.Provider), a.cfg.Model, llm.WithTimeout(a.cfg.LLM.Timeout))
	if err != nil {
		a.logger.Warn().Err(err).Str("provider", string(a.cfg.Provider)).Msg("completion provider not configured")
		return llm.Unconfigured{Err: err, ProviderName: string(a.cfg.Provider)}
	}
	if a.cfg.LLM.MaxRetries > 0 {
		p = llm.NewRetryProvider(p, a.cfg.LLM.MaxRetries, a.cfg.LLM.RetryBackoff)
	}
	if a.cfg.LLM.RequestsPerMinute > 0 {
		p = llm.NewRateLimitedProvider(p, a.cfg.LLM.RequestsPerMinute)
	}
	return p
}

// ranker returns the semantic ranker, or nil when no embedding provider is
// configured or it cannot be built.
func (a *app) ranker() *vectordb.Ranker {
	embedder, err := embeddings.New(string(a.cfg.Search.EmbeddingProvider), a.cfg.Search.EmbeddingModel)
	if err != nil {
		a.logger.Warn().Err(err).Msg("semantic ranking disabled")
		return nil
	}
	if embedder == nil {
		return nil
	}
	a.logger.Info().Str("embedder", embedder.Name()).Msg("semantic ranking enabled")
	return vectordb.NewRanker(embedder)
}

// context returns ctx carrying the app logger.
func (a *app) context(ctx context.Context) context.Context {
	return a.logger.WithContext(ctx)
}

func (a *app) Close() {
	a.reporter.Flush(2 * time.Second)
	if err := a.db.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("closing database")
	}
}

// contextRunner attaches the app logger to every request context.
type contextRunner struct{ a *app }

func (r contextRunner) Run(ctx context.Context, req insights.Request) (*insights.Response, error) {
	return r.a.engine.Run(r.a.context(ctx), req)
}
