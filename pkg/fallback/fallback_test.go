package fallback

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zen-systems/convogate/pkg/backend"
)

type capturingProvider struct {
	response string
	err      error
	prompts  []string
}

func (p *capturingProvider) Name() string { return "capturing" }

func (p *capturingProvider) Generate(_ context.Context, _ string, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

type failingRetriever struct{}

func (failingRetriever) Retrieve(_ context.Context, _ string) ([]Snippet, error) {
	return nil, fmt.Errorf("index corrupted")
}

func writeKnowledge(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestFilesystemRetrieverRanksByRelevance(t *testing.T) {
	dir := t.TempDir()
	writeKnowledge(t, dir, "returns.md", "Our return policy allows refund requests within 30 days.")
	writeKnowledge(t, dir, "shipping.md", "Shipping takes 3-5 business days. Refund is not covered here.")
	writeKnowledge(t, dir, "careers.md", "We are hiring Go engineers.")
	writeKnowledge(t, dir, "notes.json", `{"return": "policy"}`)

	snippets, err := NewFilesystemRetriever(dir).Retrieve(context.Background(), "what is the return policy for a refund")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(snippets) == 0 {
		t.Fatalf("expected snippets")
	}
	if snippets[0].Path != "returns.md" {
		t.Fatalf("expected returns.md first, got %q", snippets[0].Path)
	}
	for i := 1; i < len(snippets); i++ {
		if snippets[i].Relevance > snippets[i-1].Relevance {
			t.Fatalf("snippets not sorted by relevance")
		}
	}
	for _, s := range snippets {
		if s.Path == "careers.md" || s.Path == "notes.json" {
			t.Fatalf("irrelevant or unsupported file retrieved: %q", s.Path)
		}
	}
}

func TestFilesystemRetrieverSkipsHiddenDirectories(t *testing.T) {
	dir := t.TempDir()
	hidden := filepath.Join(dir, ".git")
	if err := os.MkdirAll(hidden, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeKnowledge(t, hidden, "refund.md", "refund refund refund")
	writeKnowledge(t, dir, "faq.md", "refund within 30 days")

	snippets, err := NewFilesystemRetriever(dir).Retrieve(context.Background(), "refund")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	for _, s := range snippets {
		if strings.Contains(s.Path, ".git") {
			t.Fatalf("hidden directory was searched: %q", s.Path)
		}
	}
	if len(snippets) != 1 || snippets[0].Path != "faq.md" {
		t.Fatalf("expected only faq.md, got %+v", snippets)
	}
}

func TestFilesystemRetrieverLimitsSnippetCount(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 6; i++ {
		writeKnowledge(t, dir, fmt.Sprintf("doc%d.md", i), "refund policy details")
	}

	snippets, err := NewFilesystemRetriever(dir).Retrieve(context.Background(), "refund policy")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(snippets) != 3 {
		t.Fatalf("expected cap of 3 snippets, got %d", len(snippets))
	}
}

func TestRAGFallbackGroundsPromptInSnippets(t *testing.T) {
	dir := t.TempDir()
	writeKnowledge(t, dir, "returns.md", "Refunds are issued within 30 days of purchase.")

	provider := &capturingProvider{response: "You can get a refund within 30 days."}
	fb := NewRAGFallback(provider, "mock-1", WithRetriever(NewFilesystemRetriever(dir)))

	answer, err := fb.Answer(context.Background(), "when can I get a refund")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer != "You can get a refund within 30 days." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if len(provider.prompts) != 1 {
		t.Fatalf("expected one generation, got %d", len(provider.prompts))
	}
	prompt := provider.prompts[0]
	if !strings.Contains(prompt, "Refunds are issued within 30 days") {
		t.Fatalf("prompt missing snippet content:\n%s", prompt)
	}
	if !strings.Contains(prompt, "when can I get a refund") {
		t.Fatalf("prompt missing original utterance:\n%s", prompt)
	}
}

func TestRAGFallbackDegradesWhenRetrievalFails(t *testing.T) {
	provider := &capturingProvider{response: "I do not have that information."}
	fb := NewRAGFallback(provider, "mock-1", WithRetriever(failingRetriever{}))

	answer, err := fb.Answer(context.Background(), "when can I get a refund")
	if err != nil {
		t.Fatalf("retrieval failure must not fail the turn: %v", err)
	}
	if answer != "I do not have that information." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if strings.Contains(provider.prompts[0], "---") {
		t.Fatalf("expected ungrounded prompt, got:\n%s", provider.prompts[0])
	}
}

func TestRAGFallbackProviderErrorIsTransport(t *testing.T) {
	provider := &capturingProvider{err: errors.New("rate limited")}
	fb := NewRAGFallback(provider, "mock-1")

	_, err := fb.Answer(context.Background(), "hello")
	if !backend.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestRAGFallbackEmptyResponseIsTransport(t *testing.T) {
	provider := &capturingProvider{response: "   "}
	fb := NewRAGFallback(provider, "mock-1")

	_, err := fb.Answer(context.Background(), "hello")
	if !backend.IsTransport(err) {
		t.Fatalf("expected transport error for empty response, got %v", err)
	}
}

func TestStaticRecordsCalls(t *testing.T) {
	s := NewStatic("fixed")
	answer, err := s.Answer(context.Background(), "anything")
	if err != nil || answer != "fixed" {
		t.Fatalf("got %q, %v", answer, err)
	}
	if s.Calls != 1 || s.Last != "anything" {
		t.Fatalf("call not recorded: %+v", s)
	}
}
