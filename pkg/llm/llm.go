package llm

import (
	"context"
	"fmt"

	"github.com/zen-systems/convogate/pkg/config"
)

// Provider defines the interface for LLM provider clients. The triage
// agent, function-calling router, and RAG fallback all speak through it.
type Provider interface {
	// Generate sends a prompt to the model and returns the text response.
	Generate(ctx context.Context, model string, prompt string) (string, error)

	// Name returns the provider's identifier.
	Name() string
}

// New creates a provider client by name using the configured API keys.
func New(name string, cfg *config.Config) (Provider, error) {
	switch name {
	case "anthropic":
		return NewAnthropicProvider(cfg.AnthropicAPIKey)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey)
	case "google":
		return NewGoogleProvider(cfg.GoogleAPIKey)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", name)
	}
}
