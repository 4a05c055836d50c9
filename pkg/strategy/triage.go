package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zen-systems/convogate/pkg/backend"
	"github.com/zen-systems/convogate/pkg/config"
	"github.com/zen-systems/convogate/pkg/llm"
	"github.com/zen-systems/convogate/pkg/outcome"
)

// TriageAdapter runs an LLM triage agent that invokes the CLU or CQA tool
// on its own and reports the combined result as a typed JSON envelope.
// The adapter parses the envelope and applies the per-tool acceptance rule.
type TriageAdapter struct {
	provider     llm.Provider
	model        string
	cluThreshold float64
	cqaThreshold float64
}

// NewTriageAdapter creates a triage agent adapter.
func NewTriageAdapter(provider llm.Provider, model string, clu, cqa config.ProjectConfig) *TriageAdapter {
	return &TriageAdapter{
		provider:     provider,
		model:        model,
		cluThreshold: clu.ConfidenceThreshold,
		cqaThreshold: cqa.ConfidenceThreshold,
	}
}

// Kind returns the adapter identifier.
func (a *TriageAdapter) Kind() Kind { return KindTriageAgent }

// triageEnvelope is the agent's result contract: a clu_result carries the
// full conversation analysis payload, a cqa_result the knowledge base
// payload. Anything else means no tool fired.
type triageEnvelope struct {
	Type     string          `json:"type"`
	Response json.RawMessage `json:"response"`
}

// Invoke runs the agent and maps its envelope to an outcome. A "no tool
// fired" or explicit cannot-answer envelope rejects; a malformed envelope
// is a transport failure.
func (a *TriageAdapter) Invoke(ctx context.Context, utterance string) (*outcome.Outcome, error) {
	resp, err := a.provider.Generate(ctx, a.model, buildTriagePrompt(utterance))
	if err != nil {
		return nil, &backend.TransportError{Backend: "triage_agent", Err: err}
	}

	envelope, raw, err := parseTriageEnvelope(resp)
	if err != nil {
		return nil, &backend.TransportError{Backend: "triage_agent", Err: err}
	}

	switch envelope.Type {
	case "clu_result":
		prediction, err := backend.ParseCLUResult(envelope.Response)
		if err != nil {
			return nil, &backend.TransportError{Backend: "triage_agent", Err: err}
		}
		return acceptIntent(prediction, a.cluThreshold, raw), nil

	case "cqa_result":
		answers, err := backend.ParseCQAResult(envelope.Response)
		if err != nil {
			return nil, &backend.TransportError{Backend: "triage_agent", Err: err}
		}
		// The agent relays answers in backend order; the first one is its pick.
		if len(answers) == 0 || answers[0].Answer == "" || answers[0].Confidence < a.cqaThreshold {
			return outcome.Rejected(raw), nil
		}
		return outcome.AcceptedAnswer(answers[0].Answer, answers[0].Confidence, raw), nil

	default:
		return outcome.Rejected(raw), nil
	}
}

func buildTriagePrompt(utterance string) string {
	var sb strings.Builder
	sb.WriteString("You are a triage agent. Understand the customer message and use exactly ONE of your tools:\n")
	sb.WriteString("- cqa_api: answers general FAQs and procedural questions\n")
	sb.WriteString("- clu_api: extracts intent and entities for customer-specific requests\n\n")
	sb.WriteString("Return ONLY JSON in one of these shapes, without modifying or summarizing the tool response:\n")
	sb.WriteString(`{"type":"clu_result","response":{<full CLU response>},"terminated":"False"}` + "\n")
	sb.WriteString(`{"type":"cqa_result","response":{<full CQA response>},"terminated":"True"}` + "\n")
	sb.WriteString(`{"type":"cannot_answer"}` + "\n\n")
	sb.WriteString("Customer message:\n")
	sb.WriteString(utterance)
	return sb.String()
}

func parseTriageEnvelope(content string) (*triageEnvelope, json.RawMessage, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	raw := json.RawMessage(content)
	var envelope triageEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, nil, fmt.Errorf("malformed triage envelope: %w", err)
	}
	if envelope.Type == "" {
		return nil, nil, fmt.Errorf("triage envelope missing type")
	}
	return &envelope, raw, nil
}
