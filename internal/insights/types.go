// Package insights runs the prompt-to-structured-result pipeline shared by
// every insight endpoint.
package insights

import (
	"encoding/json"
	"time"

	"github.com/ziadkadry99/portfolio-ai/internal/metrics"
	"github.com/ziadkadry99/portfolio-ai/internal/prompts"
	"github.com/ziadkadry99/portfolio-ai/internal/result"
)

// Request is one insight call.
type Request struct {
	UseCase prompts.UseCase
	// Text is the question, query or report prompt. Ignored by
	// suggestions.
	Text string
	// Filters are the raw search filters (documentType, area, project,
	// dateRange). Ignored outside search.
	Filters map[string]any
}

// Response is the outcome of one pipeline run. Data is always set: on
// error it holds the use case's empty default.
type Response struct {
	UseCase       prompts.UseCase
	Kind          result.Kind
	Data          json.RawMessage
	Outcome       metrics.Outcome
	InteractionID string
	// Degraded names collections that could not be read.
	Degraded     []string
	SchemaErrors []string
}

// InputField is the request field that carries Text for uc, or "" when the
// use case takes no input.
func InputField(uc prompts.UseCase) string {
	switch uc {
	case prompts.Chat:
		return "question"
	case prompts.Explain, prompts.Search:
		return "query"
	case prompts.Report:
		return "prompt"
	default:
		return ""
	}
}

// Default is the payload carried by an error response for uc.
func Default(uc prompts.UseCase, text string, now time.Time) json.RawMessage {
	switch uc {
	case prompts.Chat:
		return result.MustMarshal(result.FallbackChat(text))
	case prompts.Explain:
		return result.MustMarshal(result.FallbackExplanation())
	case prompts.Suggestions:
		return result.MustMarshal(result.EmptySuggestions(now))
	case prompts.Report:
		return result.MustMarshal(result.EmptyReport())
	case prompts.Search:
		return result.MustMarshal(result.EmptySearch(text))
	default:
		return json.RawMessage("null")
	}
}
