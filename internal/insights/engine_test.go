package insights

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/portfolio-ai/internal/apperr"
	"github.com/ziadkadry99/portfolio-ai/internal/interactions"
	"github.com/ziadkadry99/portfolio-ai/internal/llm/llmtest"
	"github.com/ziadkadry99/portfolio-ai/internal/metrics"
	"github.com/ziadkadry99/portfolio-ai/internal/portfolio"
	"github.com/ziadkadry99/portfolio-ai/internal/portfolio/portfoliotest"
	"github.com/ziadkadry99/portfolio-ai/internal/prompts"
	"github.com/ziadkadry99/portfolio-ai/internal/result"
	"github.com/ziadkadry99/portfolio-ai/internal/vectordb"
)

var fixedNow = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

type harness struct {
	engine   *Engine
	provider *llmtest.MockProvider
	log      *interactions.Store
	metrics  *metrics.Recorder
}

func newHarness(t *testing.T, content string, opts ...Option) *harness {
	t.Helper()
	store, database := portfoliotest.NewStore(t)
	f := portfoliotest.Small()
	f.Documents = portfoliotest.Documents()
	portfoliotest.Seed(t, store, f)

	h := &harness{
		provider: llmtest.NewMockProvider(content),
		log:      interactions.NewStore(database),
		metrics:  metrics.NewRecorder(),
	}
	assembler := portfolio.NewAssembler(store, portfolio.Limits{Projects: 50, Transactions: 100, Baselines: 50, Documents: 20})
	base := []Option{
		WithModel("gpt-4o-mini"),
		WithClock(func() time.Time { return fixedNow }),
		WithInteractionLog(h.log),
		WithMetrics(h.metrics),
	}
	engine, err := NewEngine(h.provider, assembler, append(base, opts...)...)
	require.NoError(t, err)
	h.engine = engine
	return h
}

func TestReportRoundTrip(t *testing.T) {
	table := `{"kind":"table","title":"Desvio por projeto","headers":["Projeto","Desvio"],"rows":[["PRJ-001","12.5%"],["PRJ-002","-10%"]]}`
	h := newHarness(t, table)

	resp, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Report, Text: "  Desvio por projeto  "})
	require.NoError(t, err)

	assert.JSONEq(t, table, string(resp.Data))
	assert.Equal(t, metrics.OutcomeSuccess, resp.Outcome)
	assert.Equal(t, result.KindReport, resp.Kind)

	require.Equal(t, 1, h.provider.CallCount())
	call := h.provider.LastCall()
	assert.Equal(t, 0.1, call.Temperature)
	assert.Equal(t, 2500, call.MaxTokens)
	assert.True(t, call.JSONMode)
	assert.Equal(t, "gpt-4o-mini", call.Model)
	require.Len(t, call.Messages, 2)
	system := call.Messages[0].Content
	assert.Contains(t, system, "PROJETOS (2):")
	assert.Contains(t, system, "TRANSACOES (3):")
	assert.Contains(t, system, "BASELINES (1):")
	assert.Contains(t, system, "PRJ-001")
	assert.Equal(t, "Desvio por projeto", call.Messages[1].Content)
}

func TestChatEmptyQuestionIsRejectedWithoutProviderCall(t *testing.T) {
	h := newHarness(t, "unused")

	resp, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Chat, Text: "   "})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "question is required", apperr.PublicMessage(err))
	assert.Equal(t, 0, h.provider.CallCount())
	assert.Equal(t, metrics.OutcomeError, resp.Outcome)

	var answer result.ChatAnswer
	require.NoError(t, json.Unmarshal(resp.Data, &answer))
	assert.Equal(t, result.ChatApology, answer.Response)

	recs, err := h.log.List(context.Background(), interactions.Filter{})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRequiredFieldPerUseCase(t *testing.T) {
	h := newHarness(t, "unused")
	cases := map[prompts.UseCase]string{
		prompts.Chat:    "question is required",
		prompts.Explain: "query is required",
		prompts.Report:  "prompt is required",
		prompts.Search:  "query is required",
	}
	for uc, msg := range cases {
		_, err := h.engine.Run(context.Background(), Request{UseCase: uc})
		require.Error(t, err, uc)
		assert.Equal(t, msg, apperr.PublicMessage(err), uc)
	}
	assert.Equal(t, 0, h.provider.CallCount())
}

func TestExplainPassesProseThrough(t *testing.T) {
	prose := "O **CPI** (Cost Performance Index) mede a eficiência de custo.\n\nValores abaixo de 1 indicam estouro."
	h := newHarness(t, prose)

	resp, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Explain, Text: "O que é CPI?"})
	require.NoError(t, err)

	var exp result.Explanation
	require.NoError(t, json.Unmarshal(resp.Data, &exp))
	assert.Equal(t, prose, exp.Explanation)
	assert.Contains(t, exp.ExplanationHTML, "<strong>CPI</strong>")

	call := h.provider.LastCall()
	assert.Equal(t, 0.3, call.Temperature)
	assert.Equal(t, 1000, call.MaxTokens)
	assert.False(t, call.JSONMode)
}

func TestChatAnswerEchoesQuestion(t *testing.T) {
	h := newHarness(t, "O projeto PRJ-001 está acima do orçamento.")

	resp, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Chat, Text: "Qual projeto estourou?"})
	require.NoError(t, err)

	var answer result.ChatAnswer
	require.NoError(t, json.Unmarshal(resp.Data, &answer))
	assert.Equal(t, "O projeto PRJ-001 está acima do orçamento.", answer.Response)
	assert.Equal(t, "Qual projeto estourou?", answer.Question)
	assert.Equal(t, 0.7, h.provider.LastCall().Temperature)
}

func TestEmptyCompletionFallsBack(t *testing.T) {
	h := newHarness(t, "  \n ")

	resp, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Chat, Text: "Oi"})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeFallback, resp.Outcome)

	var answer result.ChatAnswer
	require.NoError(t, json.Unmarshal(resp.Data, &answer))
	assert.Equal(t, result.ChatApology, answer.Response)
	assert.Equal(t, "Oi", answer.Question)
}

func TestMalformedSuggestionsFallBack(t *testing.T) {
	h := newHarness(t, "Aqui estão as sugestões: {isto não é json")

	resp, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Suggestions})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeFallback, resp.Outcome)

	var list result.SuggestionList
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list.Suggestions, 1)
	assert.Equal(t, result.PriorityHigh, list.Suggestions[0].Priority)
	assert.Equal(t, result.CategoryFinancial, list.Suggestions[0].Category)
	assert.Equal(t, 1, list.Summary.TotalSuggestions)
	assert.Equal(t, result.FallbackAnalysisTimestamp, list.Summary.AnalysisTimestamp)

	// The default user prompt is used when no text is sent.
	assert.NotEmpty(t, h.provider.LastCall().Messages[1].Content)
}

func TestFallbackIsDeterministic(t *testing.T) {
	h := newHarness(t, "not json")
	later := newHarness(t, "{broken", WithClock(func() time.Time { return fixedNow.Add(36 * time.Hour) }))

	first, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Suggestions})
	require.NoError(t, err)
	second, err := later.engine.Run(context.Background(), Request{UseCase: prompts.Suggestions})
	require.NoError(t, err)
	assert.Equal(t, string(first.Data), string(second.Data))
	assert.Equal(t, string(result.MustMarshal(result.FallbackSuggestions())), string(first.Data))
}

func TestSchemaMismatchFallsBackAndIsRecorded(t *testing.T) {
	h := newHarness(t, `{"kind":"table","title":"x","headers":"Projeto"}`)

	resp, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Report, Text: "tabela"})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeFallback, resp.Outcome)
	assert.NotEmpty(t, resp.SchemaErrors)

	var summary result.Summary
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.Equal(t, "summary", summary.Kind)
	assert.Contains(t, summary.HTMLContent, "&#34;kind&#34;")

	n, err := testutil.GatherAndCount(h.metrics.Registry(), "portfolioai_schema_mismatches_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, err := h.log.Get(context.Background(), resp.InteractionID)
	require.NoError(t, err)
	assert.Equal(t, "fallback", rec.Outcome)
	assert.NotEmpty(t, rec.SchemaErrors)
}

func TestProviderErrorReturnsDefault(t *testing.T) {
	h := newHarness(t, "")
	h.provider.Err = apperr.Provider(http.StatusServiceUnavailable, errors.New("overloaded"))

	resp, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Suggestions})
	require.Error(t, err)
	assert.Equal(t, apperr.KindProvider, apperr.KindOf(err))
	assert.Equal(t, "Provider API error: 503", apperr.PublicMessage(err))
	assert.Equal(t, metrics.OutcomeError, resp.Outcome)

	var list result.SuggestionList
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Empty(t, list.Suggestions)

	rec, err := h.log.Get(context.Background(), resp.InteractionID)
	require.NoError(t, err)
	assert.Equal(t, "provider", rec.ErrorKind)
}

func TestConfigurationErrorSurfaces(t *testing.T) {
	h := newHarness(t, "")
	h.provider.Err = apperr.Configuration("ANTHROPIC_API_KEY environment variable is not set")

	_, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Report, Text: "x"})
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
}

func TestUnclassifiedErrorIsInternal(t *testing.T) {
	h := newHarness(t, "")
	h.provider.Err = errors.New("dial tcp: connection refused")

	_, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Explain, Text: "CPI"})
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestSearchPrefiltersDocuments(t *testing.T) {
	h := newHarness(t, `{"results":[],"total":0,"query_intent":"contratos"}`)

	_, err := h.engine.Run(context.Background(), Request{
		UseCase: prompts.Search,
		Text:    "contratos vigentes",
		Filters: map[string]any{"documentType": "contrato", "area": "all"},
	})
	require.NoError(t, err)

	system := h.provider.LastCall().Messages[0].Content
	assert.Contains(t, system, "DOCUMENTOS (2):")
	assert.Contains(t, system, `"doc-1"`)
	assert.Contains(t, system, `"doc-3"`)
	assert.NotContains(t, system, `"doc-2"`)
	assert.Contains(t, system, "tipo de documento = contrato")
}

func TestSearchWithoutPrefilterDescribesFiltersOnly(t *testing.T) {
	h := newHarness(t, `{"results":[],"total":0,"query_intent":"contratos"}`, WithPrefilter(false))

	_, err := h.engine.Run(context.Background(), Request{
		UseCase: prompts.Search,
		Text:    "contratos",
		Filters: map[string]any{"documentType": "contrato"},
	})
	require.NoError(t, err)

	system := h.provider.LastCall().Messages[0].Content
	assert.Contains(t, system, "DOCUMENTOS (3):")
	assert.Contains(t, system, "tipo de documento = contrato")
}

func TestSearchInvalidFilters(t *testing.T) {
	h := newHarness(t, "unused")

	_, err := h.engine.Run(context.Background(), Request{
		UseCase: prompts.Search,
		Text:    "contratos",
		Filters: map[string]any{"dateRange": map[string]any{"start": "ontem"}},
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, 0, h.provider.CallCount())
}

func TestSearchResultsPassThrough(t *testing.T) {
	payload := `{"results":[{"id":"doc-1","title":"Contrato","docType":"contrato","excerpt":"...","project":"PRJ-001","area":"Engenharia","date":"2024-01-05","relevanceScore":0.92,"tags":["fornecedor"]}],"total":1,"query_intent":"contratos de fornecimento"}`
	h := newHarness(t, payload)

	resp, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Search, Text: "fornecimento"})
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(resp.Data))
	assert.Equal(t, 0.1, h.provider.LastCall().Temperature)
	assert.Equal(t, 2000, h.provider.LastCall().MaxTokens)
}

type stubRanker struct {
	ids []string
	err error
}

func (s stubRanker) Rank(_ context.Context, _ string, docs []portfolio.Document, topK int) ([]vectordb.Ranked, error) {
	if s.err != nil {
		return nil, s.err
	}
	byID := map[string]portfolio.Document{}
	for _, d := range docs {
		byID[d.ID] = d
	}
	var out []vectordb.Ranked
	for _, id := range s.ids {
		if d, ok := byID[id]; ok && len(out) < topK {
			out = append(out, vectordb.Ranked{Document: d, Similarity: 0.9})
		}
	}
	return out, nil
}

func TestSearchUsesRanker(t *testing.T) {
	h := newHarness(t, `{"results":[],"total":0,"query_intent":"ata"}`, WithRanker(stubRanker{ids: []string{"doc-2"}}, 1))

	_, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Search, Text: "ata"})
	require.NoError(t, err)

	system := h.provider.LastCall().Messages[0].Content
	assert.Contains(t, system, "DOCUMENTOS (1):")
	assert.Contains(t, system, `"doc-2"`)
}

func TestSearchRankerFailureKeepsDocuments(t *testing.T) {
	h := newHarness(t, `{"results":[],"total":0,"query_intent":"ata"}`, WithRanker(stubRanker{err: errors.New("embedding down")}, 1))

	resp, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Search, Text: "ata"})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeSuccess, resp.Outcome)
	assert.Contains(t, h.provider.LastCall().Messages[0].Content, "DOCUMENTOS (3):")
}

// prj001Indicators is how PRJ-001 of the small fixture appears in the
// project section: 900000 realized against an 800000 baseline.
const prj001Indicators = `"orcado_baseline":"800000","realizado":"900000","comprometido":"0","desvio_pct":"12.5"`

func TestIndicatorsInEveryPrompt(t *testing.T) {
	tests := []struct {
		uc   prompts.UseCase
		text string
	}{
		{prompts.Report, "Desvio por projeto"},
		{prompts.Explain, "O que é desvio orçamentário?"},
		{prompts.Search, "contratos"},
		{prompts.Chat, "Qual projeto está acima do orçamento?"},
		{prompts.Suggestions, ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.uc), func(t *testing.T) {
			h := newHarness(t, "{}")
			_, _ = h.engine.Run(context.Background(), Request{UseCase: tt.uc, Text: tt.text})
			require.Equal(t, 1, h.provider.CallCount())
			assert.Contains(t, h.provider.LastCall().Messages[0].Content, prj001Indicators)
		})
	}
}

func TestIndicatorsIgnoreTransactionCap(t *testing.T) {
	store, _ := portfoliotest.NewStore(t)
	portfoliotest.Seed(t, store, portfoliotest.Small())
	provider := llmtest.NewMockProvider("Resposta.")
	assembler := portfolio.NewAssembler(store, portfolio.Limits{Projects: 10, Transactions: 1, Baselines: 1})
	engine, err := NewEngine(provider, assembler)
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), Request{UseCase: prompts.Chat, Text: "Como está o PRJ-001?"})
	require.NoError(t, err)

	m, err := store.ProjectMetrics(context.Background(), "PRJ-001")
	require.NoError(t, err)
	assert.Equal(t, "12.5", m.Deviation.String())

	system := provider.LastCall().Messages[0].Content
	assert.Contains(t, system, "TRANSACOES (1):")
	assert.Contains(t, system, prj001Indicators)
}

type brokenSource struct{}

func (brokenSource) ListProjects(context.Context, int) ([]portfolio.Project, error) {
	return nil, errors.New("relation projects does not exist")
}
func (brokenSource) ListTransactions(context.Context, int) ([]portfolio.Transaction, error) {
	return nil, errors.New("timeout")
}
func (brokenSource) ListBaselines(context.Context, int) ([]portfolio.Baseline, error) {
	return []portfolio.Baseline{}, nil
}
func (brokenSource) ListDocuments(context.Context, portfolio.DocumentFilter, int) ([]portfolio.Document, error) {
	return nil, errors.New("timeout")
}

func TestUpstreamDataFailureIsSoft(t *testing.T) {
	provider := llmtest.NewMockProvider("Sem dados suficientes.")
	engine, err := NewEngine(provider, portfolio.NewAssembler(brokenSource{}, portfolio.Limits{}))
	require.NoError(t, err)

	resp, err := engine.Run(context.Background(), Request{UseCase: prompts.Chat, Text: "Como está o portfólio?"})
	require.NoError(t, err)
	assert.Equal(t, metrics.OutcomeSuccess, resp.Outcome)
	assert.ElementsMatch(t, []string{"projects", "transactions"}, resp.Degraded)

	system := provider.LastCall().Messages[0].Content
	assert.Contains(t, system, "PROJETOS (0):\n[]")
	assert.Contains(t, system, "TRANSACOES (0):\n[]")
}

func TestInteractionRecorded(t *testing.T) {
	h := newHarness(t, "Resposta")

	resp, err := h.engine.Run(context.Background(), Request{UseCase: prompts.Chat, Text: "Pergunta"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.InteractionID)

	rec, err := h.log.Get(context.Background(), resp.InteractionID)
	require.NoError(t, err)
	assert.Equal(t, "chat", rec.UseCase)
	assert.Equal(t, "Pergunta", rec.Prompt)
	assert.Equal(t, "success", rec.Outcome)
	assert.Equal(t, "mock", rec.Provider)
	assert.Equal(t, "mock-model", rec.Model)
	assert.Equal(t, 10, rec.InputTokens)
	assert.Equal(t, 20, rec.OutputTokens)
	assert.Equal(t, "Resposta", rec.Response)

	n, err := testutil.GatherAndCount(h.metrics.Registry(), "portfolioai_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUnknownUseCase(t *testing.T) {
	h := newHarness(t, "unused")
	_, err := h.engine.Run(context.Background(), Request{UseCase: "forecast", Text: "x"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDefaults(t *testing.T) {
	for _, uc := range prompts.UseCases() {
		data := Default(uc, "consulta", fixedNow)
		assert.True(t, json.Valid(data), uc)
		assert.False(t, strings.HasPrefix(string(data), "null"), uc)
	}
	assert.JSONEq(t, `{"results":[],"total":0,"query_intent":"consulta"}`, string(Default(prompts.Search, "consulta", fixedNow)))
}
