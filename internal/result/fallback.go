package result

import (
	"html"
	"strings"
	"time"
)

// FallbackAnalysisTimestamp marks a suggestions payload that no analysis
// produced.
const FallbackAnalysisTimestamp = "1970-01-01T00:00:00Z"

// FallbackSuggestions is returned when the suggestions completion cannot be
// used. Every call returns the same bytes.
func FallbackSuggestions() SuggestionList {
	return SuggestionList{
		Suggestions: []Suggestion{{
			ID:                "fallback-1",
			Title:             "Revisar desvios orçamentários do portfólio",
			Description:       "Não foi possível processar a análise automática. Recomenda-se revisar manualmente os projetos com maior desvio entre orçado e realizado.",
			Priority:          PriorityHigh,
			Category:          CategoryFinancial,
			RecommendedAction: "Revisar os projetos com desvio acima de 10% e validar as baselines aprovadas.",
			ExpectedImpact:    "Maior controle sobre a execução orçamentária.",
			Sources:           []string{"Análise automática indisponível"},
		}},
		Summary: SuggestionSummary{
			TotalSuggestions:  1,
			CriticalCount:     0,
			MainConcerns:      []string{"Análise automática indisponível"},
			AnalysisTimestamp: FallbackAnalysisTimestamp,
		},
	}
}

// EmptySuggestions is the suggestions payload carried by error envelopes.
func EmptySuggestions(now time.Time) SuggestionList {
	return SuggestionList{
		Suggestions: []Suggestion{},
		Summary: SuggestionSummary{
			MainConcerns:      []string{},
			AnalysisTimestamp: timestamp(now),
		},
	}
}

// FallbackReport echoes the raw completion as an escaped summary.
func FallbackReport(raw string) Summary {
	return Summary{
		Kind:        "summary",
		Title:       "Relatório",
		HTMLContent: EscapeHTML(raw),
		Metrics:     []Metric{},
	}
}

// EmptyReport is the report payload carried by error envelopes.
func EmptyReport() Summary {
	return Summary{
		Kind:    "summary",
		Title:   "Relatório indisponível",
		Metrics: []Metric{},
	}
}

// EmptySearch is both the search fallback and its error default.
func EmptySearch(query string) SearchResults {
	return SearchResults{
		Results:     []SearchItem{},
		Total:       0,
		QueryIntent: query,
	}
}

// ChatApology is the chat answer used when no completion is available.
const ChatApology = "Desculpe, não foi possível processar sua pergunta no momento. Tente novamente em instantes."

// FallbackChat is the chat payload for an empty completion or an error.
func FallbackChat(question string) ChatAnswer {
	return ChatAnswer{
		Response:     ChatApology,
		Question:     question,
		ResponseHTML: EscapeHTML(ChatApology),
	}
}

// ExplanationUnavailable is the explanation used when no completion is
// available.
const ExplanationUnavailable = "Não foi possível gerar a explicação no momento."

// FallbackExplanation is the explain payload for an empty completion or an
// error.
func FallbackExplanation() Explanation {
	return Explanation{
		Explanation:     ExplanationUnavailable,
		ExplanationHTML: EscapeHTML(ExplanationUnavailable),
	}
}

// EscapeHTML renders untrusted text as paragraphs with escaped content.
func EscapeHTML(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var sb strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		sb.WriteString("</p>")
	}
	return sb.String()
}

func timestamp(now time.Time) string {
	return now.UTC().Format(time.RFC3339)
}
