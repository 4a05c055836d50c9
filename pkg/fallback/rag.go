// Package fallback implements the uniform answering path used when no
// primary strategy produced an accepted result.
package fallback

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/zen-systems/convogate/pkg/backend"
	"github.com/zen-systems/convogate/pkg/llm"
)

// RAGFallback answers an utterance with an LLM response grounded in
// retrieved knowledge snippets. Retrieval failures degrade to an
// ungrounded response rather than failing the turn.
type RAGFallback struct {
	provider  llm.Provider
	model     string
	retriever Retriever
}

// RAGOption configures a RAGFallback.
type RAGOption func(*RAGFallback)

// WithRetriever sets the knowledge retriever.
func WithRetriever(r Retriever) RAGOption {
	return func(f *RAGFallback) {
		f.retriever = r
	}
}

// NewRAGFallback creates an LLM-backed fallback handler.
func NewRAGFallback(provider llm.Provider, model string, opts ...RAGOption) *RAGFallback {
	f := &RAGFallback{provider: provider, model: model}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Answer generates the fallback response for the original utterance.
func (f *RAGFallback) Answer(ctx context.Context, utterance string) (string, error) {
	var snippets []Snippet
	if f.retriever != nil {
		var err error
		snippets, err = f.retriever.Retrieve(ctx, utterance)
		if err != nil {
			log.Printf("[fallback] retrieval failed, answering ungrounded: %v", err)
			snippets = nil
		}
	}

	answer, err := f.provider.Generate(ctx, f.model, buildFallbackPrompt(utterance, snippets))
	if err != nil {
		return "", &backend.TransportError{Backend: "fallback", Err: err}
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", &backend.TransportError{Backend: "fallback", Err: fmt.Errorf("empty response")}
	}
	return answer, nil
}

func buildFallbackPrompt(utterance string, snippets []Snippet) string {
	var sb strings.Builder
	sb.WriteString("You are a customer support assistant. Answer the question concisely.\n")
	if len(snippets) > 0 {
		sb.WriteString("Ground your answer in the following documents. If they do not cover the question, say you do not know.\n\n")
		for _, s := range snippets {
			sb.WriteString(fmt.Sprintf("--- %s ---\n%s\n", s.Path, s.Content))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Question:\n")
	sb.WriteString(utterance)
	return sb.String()
}

// Static answers every utterance with a fixed message. It backs the bypass
// default and keeps validate runs offline.
type Static struct {
	Message string
	Calls   int
	Last    string
}

// NewStatic creates a static fallback handler.
func NewStatic(message string) *Static {
	return &Static{Message: message}
}

// Answer returns the fixed message.
func (s *Static) Answer(_ context.Context, utterance string) (string, error) {
	s.Calls++
	s.Last = utterance
	return s.Message, nil
}
