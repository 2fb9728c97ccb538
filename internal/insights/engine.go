package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ziadkadry99/portfolio-ai/internal/apperr"
	"github.com/ziadkadry99/portfolio-ai/internal/interactions"
	"github.com/ziadkadry99/portfolio-ai/internal/llm"
	"github.com/ziadkadry99/portfolio-ai/internal/metrics"
	"github.com/ziadkadry99/portfolio-ai/internal/portfolio"
	"github.com/ziadkadry99/portfolio-ai/internal/prompts"
	"github.com/ziadkadry99/portfolio-ai/internal/render"
	"github.com/ziadkadry99/portfolio-ai/internal/result"
)

// Engine validates a request, assembles portfolio context, calls the
// completion provider once and turns the answer into a payload.
type Engine struct {
	provider  llm.Provider
	model     string
	assembler *portfolio.Assembler
	parser    *result.Parser
	markdown  *render.Markdown

	ranker    Ranker
	topK      int
	prefilter bool

	log      InteractionLog
	metrics  *metrics.Recorder
	reporter apperr.Reporter
	now      func() time.Time
}

// NewEngine creates an Engine. Search filters are applied server-side
// unless WithPrefilter(false) is given.
func NewEngine(provider llm.Provider, assembler *portfolio.Assembler, opts ...Option) (*Engine, error) {
	parser, err := result.NewParser()
	if err != nil {
		return nil, fmt.Errorf("creating parser: %w", err)
	}
	e := &Engine{
		provider:  provider,
		assembler: assembler,
		parser:    parser,
		markdown:  render.NewMarkdown(),
		prefilter: true,
		reporter:  apperr.NopReporter{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.NewRecorder()
	}
	return e, nil
}

// Provider returns the completion provider name.
func (e *Engine) Provider() string { return e.provider.Name() }

// run carries the per-request state through the pipeline.
type run struct {
	req      Request
	tmpl     prompts.Template
	now      time.Time
	start    time.Time
	prompt   prompts.Prompt
	resp     *llm.CompletionResponse
	latency  time.Duration
	response Response
}

// Run executes req. The returned Response is never nil; its Data holds the
// use case's default when err is non-nil. Validation failures return
// before any provider call; parse failures become a fallback, not an error.
func (e *Engine) Run(ctx context.Context, req Request) (*Response, error) {
	r := &run{req: req, now: e.now(), start: time.Now()}
	r.req.Text = strings.TrimSpace(req.Text)
	r.response = Response{UseCase: req.UseCase}

	tmpl, err := prompts.For(req.UseCase)
	if err != nil {
		return e.fail(ctx, r, apperr.Validation("unknown use case %q", req.UseCase))
	}
	r.tmpl = tmpl
	r.response.Kind = tmpl.Kind

	if field := InputField(req.UseCase); field != "" && r.req.Text == "" {
		return e.fail(ctx, r, apperr.Required(field))
	}

	var filter portfolio.DocumentFilter
	if req.UseCase == prompts.Search {
		filter, err = portfolio.ParseFilters(req.Filters, r.now)
		if err != nil {
			return e.fail(ctx, r, apperr.Validation("invalid filters: %v", err))
		}
	}

	dc := e.context(ctx, r, filter)

	r.prompt = tmpl.Build(prompts.Input{
		Text:    r.req.Text,
		Context: dc,
		Filter:  filter,
		Now:     r.now,
	})

	if err := e.complete(ctx, r); err != nil {
		return e.fail(ctx, r, err)
	}

	e.parse(ctx, r)
	return e.finish(ctx, r, nil)
}

// context fetches the collections the template needs. Fetch failures
// degrade to empty collections.
func (e *Engine) context(ctx context.Context, r *run, filter portfolio.DocumentFilter) portfolio.DataContext {
	need := r.tmpl.Need
	if need.Documents && e.prefilter {
		need.Filter = filter
	}

	snap := e.assembler.Fetch(ctx, need)
	r.response.Degraded = snap.Degraded

	if need.Documents && e.ranker != nil && len(snap.Documents) > 0 {
		ranked, err := e.ranker.Rank(ctx, r.req.Text, snap.Documents, e.topK)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("semantic ranking failed, using unranked documents")
		} else {
			docs := make([]portfolio.Document, len(ranked))
			for i, rd := range ranked {
				docs[i] = rd.Document
			}
			snap.Documents = docs
		}
	}

	return e.assembler.Build(snap, need)
}

func (e *Engine) complete(ctx context.Context, r *run) error {
	req := llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: r.prompt.System},
			{Role: llm.RoleUser, Content: r.prompt.User},
		},
		MaxTokens:   r.prompt.MaxTokens,
		Temperature: r.prompt.Temperature,
		JSONMode:    r.prompt.Kind.Structured(),
	}

	start := time.Now()
	resp, err := e.provider.Complete(ctx, req)
	r.latency = time.Since(start)
	if err != nil {
		e.metrics.ObserveProvider(e.provider.Name(), "error", r.latency)
		return err
	}
	e.metrics.ObserveProvider(e.provider.Name(), "ok", r.latency)
	e.metrics.ObserveTokens(string(r.req.UseCase), resp.InputTokens, resp.OutputTokens)
	r.resp = resp
	return nil
}

func (e *Engine) parse(ctx context.Context, r *run) {
	content := r.resp.Content
	r.response.Outcome = metrics.OutcomeSuccess

	if !r.tmpl.Kind.Structured() {
		e.parseText(ctx, r, content)
		return
	}

	var fallback any
	switch r.req.UseCase {
	case prompts.Suggestions:
		fallback = result.FallbackSuggestions()
	case prompts.Report:
		fallback = result.FallbackReport(content)
	default:
		fallback = result.EmptySearch(r.req.Text)
	}

	res := e.parser.Parse(r.tmpl.Kind, content, fallback)
	r.response.Data = res.Data
	r.response.SchemaErrors = res.SchemaErrors
	if !res.Fallback {
		return
	}

	r.response.Outcome = metrics.OutcomeFallback
	log := zerolog.Ctx(ctx).Warn().Str("use_case", string(r.req.UseCase)).Str("kind", string(r.tmpl.Kind))
	if len(res.SchemaErrors) > 0 {
		e.metrics.ObserveSchemaMismatch(string(r.tmpl.Kind))
		log.Strs("schema_errors", res.SchemaErrors).Msg("completion does not match schema, using fallback")
		return
	}
	log.Str("parse_error", res.ParseError).Msg("completion is not JSON, using fallback")
}

func (e *Engine) parseText(ctx context.Context, r *run, content string) {
	if strings.TrimSpace(content) == "" {
		r.response.Outcome = metrics.OutcomeFallback
		zerolog.Ctx(ctx).Warn().Str("use_case", string(r.req.UseCase)).Msg("empty completion, using fallback")
		r.response.Data = Default(r.req.UseCase, r.req.Text, r.now)
		return
	}

	htmlOut, err := e.markdown.HTML(content)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("markdown rendering failed, escaping text")
		htmlOut = result.EscapeHTML(content)
	}

	if r.req.UseCase == prompts.Explain {
		r.response.Data = result.MustMarshal(result.Explanation{Explanation: content, ExplanationHTML: htmlOut})
		return
	}
	r.response.Data = result.MustMarshal(result.ChatAnswer{Response: content, Question: r.req.Text, ResponseHTML: htmlOut})
}

func (e *Engine) fail(ctx context.Context, r *run, err error) (*Response, error) {
	r.response.Outcome = metrics.OutcomeError
	r.response.Data = Default(r.req.UseCase, r.req.Text, r.now)
	return e.finish(ctx, r, apperr.As(err))
}

// finish records metrics and the interaction log entry.
func (e *Engine) finish(ctx context.Context, r *run, err *apperr.Error) (*Response, error) {
	uc := string(r.req.UseCase)
	e.metrics.ObserveRequest(uc, r.response.Outcome)

	rec := interactions.Record{
		CreatedAt:    r.now.UTC(),
		UseCase:      uc,
		Prompt:       r.req.Text,
		Outcome:      string(r.response.Outcome),
		SchemaErrors: r.response.SchemaErrors,
		Provider:     e.provider.Name(),
		Model:        e.model,
		LatencyMS:    time.Since(r.start).Milliseconds(),
	}
	if r.resp != nil {
		if r.resp.Model != "" {
			rec.Model = r.resp.Model
		}
		rec.InputTokens = r.resp.InputTokens
		rec.OutputTokens = r.resp.OutputTokens
		rec.CostUSD = llm.EstimateCost(rec.Model, rec.InputTokens, rec.OutputTokens)
		rec.Response = r.resp.Content
	}

	log := zerolog.Ctx(ctx)
	if err != nil {
		rec.ErrorKind = string(err.Kind)
		rec.ErrorMessage = err.Error()
		ev := log.Warn()
		if err.Kind != apperr.KindValidation {
			ev = log.Error()
			e.reporter.Capture(ctx, err, map[string]string{"use_case": uc})
		}
		ev.Err(err).Str("use_case", uc).Str("error_kind", string(err.Kind)).Msg("insight request failed")
	} else {
		log.Info().
			Str("use_case", uc).
			Str("outcome", string(r.response.Outcome)).
			Int("input_tokens", rec.InputTokens).
			Int("output_tokens", rec.OutputTokens).
			Float64("cost_usd", rec.CostUSD).
			Dur("provider_latency", r.latency).
			Msg("insight request completed")
	}

	// Validation failures never reach the pipeline and are not logged.
	if e.log != nil && (err == nil || err.Kind != apperr.KindValidation) {
		id, logErr := e.log.Record(ctx, rec)
		if logErr != nil {
			log.Warn().Err(logErr).Msg("recording interaction failed")
		}
		r.response.InteractionID = id
	}

	resp := r.response
	if err != nil {
		return &resp, err
	}
	return &resp, nil
}
