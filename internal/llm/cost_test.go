package llm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ziadkadry99/portfolio-ai/internal/llm"
)

func TestEstimateCostKnownModels(t *testing.T) {
	for _, model := range []string{"claude-sonnet-4-5-20250929", "gpt-4o-mini", "gemini-2.0-flash"} {
		assert.Greater(t, llm.EstimateCost(model, 1000, 500), 0.0, model)
	}
}

func TestEstimateCostUnknownModel(t *testing.T) {
	assert.Zero(t, llm.EstimateCost("llama3", 1000, 500))
}

func TestEstimateCostAccuracy(t *testing.T) {
	// claude-sonnet-4-5: $3/1M input, $15/1M output
	assert.InDelta(t, 18.0, llm.EstimateCost("claude-sonnet-4-5-20250929", 1_000_000, 1_000_000), 0.01)
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hi", 1},
		{"hello world!!", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, llm.EstimateTokens(tt.text), tt.text)
	}
}
