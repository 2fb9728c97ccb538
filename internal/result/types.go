// Package result turns raw completion text into the structured payloads the
// portfolio UI renders, falling back to fixed defaults when the text cannot
// be used.
package result

import "encoding/json"

// Kind is the output schema a prompt declares.
type Kind string

const (
	// KindText is free prose passed through as the answer.
	KindText Kind = "text"
	// KindReport is a Table or a Summary.
	KindReport      Kind = "report"
	KindSuggestions Kind = "suggestions"
	KindSearch      Kind = "search"
)

// Structured reports whether k is parsed as JSON.
func (k Kind) Structured() bool {
	return k == KindReport || k == KindSuggestions || k == KindSearch
}

// Table is the tabular report variant.
type Table struct {
	Kind    string     `json:"kind"`
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Metric is a headline figure of a Summary.
type Metric struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	IconKey string `json:"iconKey"`
}

// Summary is the narrative report variant.
type Summary struct {
	Kind        string   `json:"kind"`
	Title       string   `json:"title"`
	HTMLContent string   `json:"htmlContent"`
	Metrics     []Metric `json:"metrics"`
}

// Suggestion priorities.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// Suggestion categories.
const (
	CategoryFinancial   = "financial"
	CategoryTimeline    = "timeline"
	CategoryRisk        = "risk"
	CategoryOpportunity = "opportunity"
	CategoryGovernance  = "governance"
)

// Suggestion is a recommended action on the portfolio.
type Suggestion struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Priority          string   `json:"priority"`
	Category          string   `json:"category"`
	RecommendedAction string   `json:"recommendedAction"`
	ExpectedImpact    string   `json:"expectedImpact"`
	Sources           []string `json:"sources"`
}

// SuggestionSummary aggregates a suggestion list.
type SuggestionSummary struct {
	TotalSuggestions  int      `json:"total_suggestions"`
	CriticalCount     int      `json:"critical_count"`
	MainConcerns      []string `json:"main_concerns"`
	AnalysisTimestamp string   `json:"analysis_timestamp"`
}

// SuggestionList is the action-suggestions payload.
type SuggestionList struct {
	Suggestions []Suggestion      `json:"suggestions"`
	Summary     SuggestionSummary `json:"summary"`
}

// SearchItem is one ranked document.
type SearchItem struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	DocType        string   `json:"docType"`
	Excerpt        string   `json:"excerpt"`
	Project        string   `json:"project"`
	Area           string   `json:"area"`
	Date           string   `json:"date"`
	RelevanceScore float64  `json:"relevanceScore"`
	Tags           []string `json:"tags"`
}

// SearchResults is the semantic search payload.
type SearchResults struct {
	Results     []SearchItem `json:"results"`
	Total       int          `json:"total"`
	QueryIntent string       `json:"query_intent"`
}

// ChatAnswer is the chat-assistant payload.
type ChatAnswer struct {
	Response     string `json:"response"`
	Question     string `json:"question"`
	ResponseHTML string `json:"response_html,omitempty"`
}

// Explanation is the explain-indicator payload.
type Explanation struct {
	Explanation     string `json:"explanation"`
	ExplanationHTML string `json:"explanation_html,omitempty"`
}

// Result is the outcome of parsing one completion.
type Result struct {
	Kind Kind
	// Data is the payload: the model's JSON unchanged on success, the
	// fallback otherwise.
	Data     json.RawMessage
	Fallback bool
	// ParseError is set when the text was not JSON.
	ParseError string
	// SchemaErrors is set when the JSON did not match the declared schema.
	SchemaErrors []string
}
