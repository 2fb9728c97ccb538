// Package prompts holds the fixed system templates of each insight use case.
package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/portfolio-ai/internal/portfolio"
	"github.com/ziadkadry99/portfolio-ai/internal/result"
)

// UseCase identifies one insight endpoint.
type UseCase string

const (
	Chat        UseCase = "chat"
	Explain     UseCase = "explain"
	Suggestions UseCase = "suggestions"
	Report      UseCase = "report"
	Search      UseCase = "search"
)

// UseCases lists every use case in endpoint order.
func UseCases() []UseCase {
	return []UseCase{Chat, Explain, Suggestions, Report, Search}
}

// Template is the fixed prompt recipe of a use case.
type Template struct {
	UseCase     UseCase
	Kind        result.Kind
	Temperature float64
	MaxTokens   int
	// Need lists the portfolio collections embedded in the prompt.
	Need portfolio.Need

	role   string
	task   string
	schema string
}

// Prompt is a built (system, user) pair plus sampling parameters.
type Prompt struct {
	UseCase     UseCase
	Kind        result.Kind
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Input carries the per-request values a template embeds.
type Input struct {
	// Text is the caller's free text; trimmed and passed as opaque data.
	Text    string
	Context portfolio.DataContext
	Filter  portfolio.DocumentFilter
	Now     time.Time
}

// For returns the template of uc.
func For(uc UseCase) (Template, error) {
	switch uc {
	case Chat:
		return chatTemplate(), nil
	case Explain:
		return explainTemplate(), nil
	case Suggestions:
		return suggestionsTemplate(), nil
	case Report:
		return reportTemplate(), nil
	case Search:
		return searchTemplate(), nil
	default:
		return Template{}, fmt.Errorf("unknown use case %q", uc)
	}
}

// Build renders the system instructions and user prompt.
func (t Template) Build(in Input) Prompt {
	var sb strings.Builder

	sb.WriteString(t.role)
	sb.WriteString("\n\n")
	sb.WriteString(vocabulary)
	sb.WriteString("\n\n## Fórmulas de negócio\n")
	sb.WriteString(formulas)

	if !in.Now.IsZero() {
		fmt.Fprintf(&sb, "\nData de referência: %s\n", in.Now.Format("2006-01-02"))
	}

	sb.WriteString("\n## Dados do portfólio\n")
	if strings.TrimSpace(in.Context.Text) == "" {
		sb.WriteString("(nenhum dado disponível)\n")
	} else {
		sb.WriteString(in.Context.Text)
		sb.WriteString("\n")
	}

	if desc := in.Filter.Describe(); desc != "" && t.UseCase == Search {
		fmt.Fprintf(&sb, "\n## Filtros solicitados\nConsidere apenas documentos que atendam: %s.\n", desc)
	}

	sb.WriteString("\n## Tarefa\n")
	sb.WriteString(t.task)
	sb.WriteString("\n")

	sb.WriteString("\n## Formato de saída\n")
	sb.WriteString(t.schema)
	sb.WriteString("\n")

	return Prompt{
		UseCase:     t.UseCase,
		Kind:        t.Kind,
		System:      sb.String(),
		User:        t.userText(in.Text),
		Temperature: t.Temperature,
		MaxTokens:   t.MaxTokens,
	}
}

func (t Template) userText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" && t.UseCase == Suggestions {
		return "Analise o portfólio completo e gere as sugestões de ação."
	}
	return text
}
