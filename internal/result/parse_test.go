package result

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser()
	require.NoError(t, err)
	return p
}

const validTable = `{"kind":"table","title":"Desvio por projeto","headers":["Projeto","Desvio"],"rows":[["PRJ-001","-25%"],["PRJ-002","12%"]]}`

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Segue o resultado: {\"a\":{\"b\":2}} espero ter ajudado", `{"a":{"b":2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestExtractErrors(t *testing.T) {
	_, err := Extract("BU significa Budget Utilization.")
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = Extract(`{"suggestions": [ {"id": 1,}`)
	assert.Error(t, err)

	_, err = Extract(`{"a":1} and {"b":2}`)
	assert.Error(t, err)
}

func TestParseTablePassesThroughUnchanged(t *testing.T) {
	p := newTestParser(t)
	r := p.Parse(KindReport, validTable, FallbackReport(validTable))

	assert.False(t, r.Fallback)
	assert.Empty(t, r.SchemaErrors)
	assert.JSONEq(t, validTable, string(r.Data))
}

func TestParseSummaryPassesThroughWithExtraFields(t *testing.T) {
	p := newTestParser(t)
	in := `{"kind":"summary","title":"Resumo","htmlContent":"<p>ok</p>","metrics":[{"label":"BU","value":87.5,"iconKey":"gauge"}],"note":"extra"}`
	r := p.Parse(KindReport, in, EmptyReport())

	assert.False(t, r.Fallback)
	assert.JSONEq(t, in, string(r.Data))
}

func TestParseMalformedSuggestionsFallsBack(t *testing.T) {
	p := newTestParser(t)
	r := p.Parse(KindSuggestions, `{"suggestions": [ {"title": "Cortar custos"`, FallbackSuggestions())

	require.True(t, r.Fallback)
	assert.NotEmpty(t, r.ParseError)

	var got SuggestionList
	require.NoError(t, json.Unmarshal(r.Data, &got))
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, PriorityHigh, got.Suggestions[0].Priority)
	assert.Equal(t, CategoryFinancial, got.Suggestions[0].Category)
	assert.Equal(t, 1, got.Summary.TotalSuggestions)

	// Any unusable input, at any time, gives the same bytes.
	again := p.Parse(KindSuggestions, `not json at all`, FallbackSuggestions())
	assert.Equal(t, string(r.Data), string(again.Data))
	assert.Equal(t, FallbackAnalysisTimestamp, got.Summary.AnalysisTimestamp)
}

func TestParseSchemaMismatchFallsBack(t *testing.T) {
	p := newTestParser(t)
	in := `{"suggestions":[{"id":"1","title":"t","description":"d","priority":"urgent","category":"financial","recommendedAction":"a"}],"summary":{"total_suggestions":1}}`
	r := p.Parse(KindSuggestions, in, FallbackSuggestions())

	assert.True(t, r.Fallback)
	assert.Empty(t, r.ParseError)
	assert.NotEmpty(t, r.SchemaErrors)
}

func TestParseValidSuggestions(t *testing.T) {
	p := newTestParser(t)
	in := `{"suggestions":[{"id":"s1","title":"Rever contrato","description":"Desvio de 12%","priority":"critical","category":"financial","recommendedAction":"Renegociar","expectedImpact":"Economia","sources":["PRJ-002"]}],"summary":{"total_suggestions":1,"critical_count":1,"main_concerns":["Estouro"],"analysis_timestamp":"2024-06-30T12:00:00Z"}}`
	r := p.Parse(KindSuggestions, in, FallbackSuggestions())

	assert.False(t, r.Fallback)
	assert.JSONEq(t, in, string(r.Data))
}

func TestParseSearch(t *testing.T) {
	p := newTestParser(t)

	valid := `{"results":[{"id":"doc-1","title":"Contrato","docType":"contract","relevanceScore":0.92,"tags":["contrato"]}],"total":1,"query_intent":"localizar contratos"}`
	r := p.Parse(KindSearch, valid, EmptySearch("contratos"))
	assert.False(t, r.Fallback)

	outOfRange := `{"results":[{"id":"doc-1","title":"Contrato","relevanceScore":1.7}],"total":1,"query_intent":"x"}`
	r = p.Parse(KindSearch, outOfRange, EmptySearch("contratos"))
	assert.True(t, r.Fallback)
	assert.JSONEq(t, `{"results":[],"total":0,"query_intent":"contratos"}`, string(r.Data))
}

func TestParseReportRejectsWrongKind(t *testing.T) {
	p := newTestParser(t)
	r := p.Parse(KindReport, `{"kind":"chart","title":"x"}`, FallbackReport("raw"))
	assert.True(t, r.Fallback)
	assert.NotEmpty(t, r.SchemaErrors)
}

func TestFallbackReportEscapesRaw(t *testing.T) {
	s := FallbackReport("<script>alert(1)</script>\n\nSegundo parágrafo")
	assert.Equal(t, "summary", s.Kind)
	assert.Equal(t, "<p>&lt;script&gt;alert(1)&lt;/script&gt;</p><p>Segundo parágrafo</p>", s.HTMLContent)
	assert.NotNil(t, s.Metrics)
}

func TestFallbackShapesConform(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	assert.Empty(t, v.Validate(KindSuggestions, MustMarshal(FallbackSuggestions())))
	assert.Empty(t, v.Validate(KindSuggestions, MustMarshal(EmptySuggestions(fixedNow))))
	assert.Empty(t, v.Validate(KindReport, MustMarshal(FallbackReport("texto"))))
	assert.Empty(t, v.Validate(KindReport, MustMarshal(EmptyReport())))
	assert.Empty(t, v.Validate(KindSearch, MustMarshal(EmptySearch("q"))))
}

func TestKindStructured(t *testing.T) {
	assert.False(t, KindText.Structured())
	assert.True(t, KindReport.Structured())
	assert.True(t, KindSearch.Structured())
}
