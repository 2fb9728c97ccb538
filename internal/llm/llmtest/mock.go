// Package llmtest provides a recording llm.Provider for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/ziadkadry99/portfolio-ai/internal/llm"
)

// MockProvider records calls and returns canned responses. When Responses
// is non-empty they are returned in order, the last one repeating.
type MockProvider struct {
	mu        sync.Mutex
	Calls     []llm.CompletionRequest
	Response  *llm.CompletionResponse
	Responses []*llm.CompletionResponse
	Err       error
	// Errs are returned in order before Err, one per call.
	Errs     []error
	ProvName string
}

// NewMockProvider returns a mock answering with content.
func NewMockProvider(content string) *MockProvider {
	return &MockProvider{
		ProvName: "mock",
		Response: &llm.CompletionResponse{
			Content:      content,
			InputTokens:  10,
			OutputTokens: 20,
			Model:        "mock-model",
			FinishReason: "stop",
		},
	}
}

func (m *MockProvider) Name() string {
	return m.ProvName
}

func (m *MockProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)

	if len(m.Errs) > 0 {
		err := m.Errs[0]
		m.Errs = m.Errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) > 0 {
		resp := m.Responses[0]
		if len(m.Responses) > 1 {
			m.Responses = m.Responses[1:]
		}
		return resp, nil
	}
	return m.Response, nil
}

// CallCount returns the number of Complete calls so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or the zero value.
func (m *MockProvider) LastCall() llm.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return llm.CompletionRequest{}
	}
	return m.Calls[len(m.Calls)-1]
}
