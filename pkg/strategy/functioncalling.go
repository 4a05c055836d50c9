package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zen-systems/convogate/pkg/backend"
	"github.com/zen-systems/convogate/pkg/llm"
	"github.com/zen-systems/convogate/pkg/outcome"
)

// FunctionCallingAdapter asks an LLM to choose between the CLU and CQA
// tools for an utterance and relays the sub-choice to the matching adapter,
// returning its outcome unchanged. The tool choice is exclusive per call.
type FunctionCallingAdapter struct {
	provider llm.Provider
	model    string
	clu      Adapter
	cqa      Adapter
}

// NewFunctionCallingAdapter creates a function-calling router adapter.
func NewFunctionCallingAdapter(provider llm.Provider, model string, clu, cqa Adapter) *FunctionCallingAdapter {
	return &FunctionCallingAdapter{provider: provider, model: model, clu: clu, cqa: cqa}
}

// Kind returns the adapter identifier.
func (a *FunctionCallingAdapter) Kind() Kind { return KindFunctionCalling }

type toolPick struct {
	Tool   string `json:"tool"`
	Reason string `json:"reason"`
}

// Invoke decides the tool and dispatches. An LLM that declines to call any
// tool rejects the outcome.
func (a *FunctionCallingAdapter) Invoke(ctx context.Context, utterance string) (*outcome.Outcome, error) {
	resp, err := a.provider.Generate(ctx, a.model, buildToolPrompt(utterance))
	if err != nil {
		return nil, &backend.TransportError{Backend: "function_calling", Err: err}
	}

	pick, err := parseToolPick(resp)
	if err != nil {
		return nil, &backend.TransportError{Backend: "function_calling", Err: err}
	}

	switch pick.Tool {
	case "clu":
		return a.clu.Invoke(ctx, utterance)
	case "cqa":
		return a.cqa.Invoke(ctx, utterance)
	case "none":
		raw, _ := json.Marshal(pick)
		return outcome.Rejected(raw), nil
	default:
		return nil, &backend.TransportError{
			Backend: "function_calling",
			Err:     fmt.Errorf("unknown tool %q", pick.Tool),
		}
	}
}

func buildToolPrompt(utterance string) string {
	var sb strings.Builder
	sb.WriteString("You are a routing function. Choose exactly ONE tool for the user message.\n")
	sb.WriteString("Return ONLY JSON: {\"tool\":\"clu\"|\"cqa\"|\"none\",\"reason\":\"...\"}.\n\n")
	sb.WriteString("Tools:\n")
	sb.WriteString("- cqa: answers general FAQs and procedural questions that do not depend on customer-specific context\n")
	sb.WriteString("- clu: extracts the intent and entities of an account- or order-specific request\n")
	sb.WriteString("- none: the message fits neither tool\n\n")
	sb.WriteString("User message:\n")
	sb.WriteString(utterance)
	return sb.String()
}

func parseToolPick(content string) (*toolPick, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var pick toolPick
	if err := json.Unmarshal([]byte(content), &pick); err != nil {
		return nil, fmt.Errorf("malformed tool choice: %w", err)
	}
	if pick.Tool == "" {
		return nil, fmt.Errorf("missing tool")
	}
	return &pick, nil
}
