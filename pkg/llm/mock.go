package llm

import (
	"context"
	"fmt"
)

// MockProvider returns deterministic responses for local runs and tests.
type MockProvider struct {
	responses       map[string]string
	defaultResponse string
	Calls           int
	Err             error
}

// NewMockProvider creates a mock provider with a default response.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		responses:       make(map[string]string),
		defaultResponse: "mock response:",
	}
}

// NewMockProviderWithResponses creates a mock provider with predefined responses.
func NewMockProviderWithResponses(responses map[string]string, defaultResponse string) *MockProvider {
	if defaultResponse == "" {
		defaultResponse = "mock response:"
	}
	return &MockProvider{responses: responses, defaultResponse: defaultResponse}
}

// Name returns the provider identifier.
func (p *MockProvider) Name() string {
	return "mock"
}

// Generate returns a deterministic response for the prompt.
func (p *MockProvider) Generate(_ context.Context, _ string, prompt string) (string, error) {
	p.Calls++
	if p.Err != nil {
		return "", p.Err
	}
	if response, ok := p.responses[prompt]; ok {
		return response, nil
	}
	return fmt.Sprintf("%s\n%s", p.defaultResponse, prompt), nil
}
