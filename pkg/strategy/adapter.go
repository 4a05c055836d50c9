package strategy

import (
	"context"
	"encoding/json"

	"github.com/zen-systems/convogate/pkg/backend"
	"github.com/zen-systems/convogate/pkg/outcome"
)

// Kind identifies one answering strategy adapter.
type Kind string

const (
	KindTriageAgent     Kind = "triage_agent"
	KindFunctionCalling Kind = "function_calling"
	KindCLU             Kind = "clu"
	KindCQA             Kind = "cqa"
	KindOrchestration   Kind = "orchestration"

	// KindNone marks a turn that was answered by the fallback path.
	KindNone Kind = "none"
)

func (k Kind) String() string { return string(k) }

// Adapter normalizes one backend's raw response into a common outcome.
// Invoke returns an error only for transport-level failures; ordinary
// "no result" conditions map to a non-accepted outcome.
type Adapter interface {
	Kind() Kind
	Invoke(ctx context.Context, utterance string) (*outcome.Outcome, error)
}

// NoneIntent is the sentinel the classifier returns when nothing matched.
// It is always rejected regardless of confidence.
const NoneIntent = "None"

// acceptIntent applies the intent acceptance rule shared by the CLU and
// triage adapters: an intent was recognized, it is not the None sentinel,
// and its confidence clears the threshold.
func acceptIntent(p *backend.CLUPrediction, threshold float64, raw json.RawMessage) *outcome.Outcome {
	top, ok := p.TopIntent()
	if !ok {
		return outcome.Rejected(raw)
	}
	if top.Name == NoneIntent || top.Confidence < threshold {
		return outcome.Rejected(raw).WithConfidence(top.Confidence)
	}
	return outcome.AcceptedIntent(top.Name, top.Confidence, entitiesFrom(p.Entities), raw)
}

func entitiesFrom(ents []backend.CLUEntity) []outcome.Entity {
	if len(ents) == 0 {
		return nil
	}
	converted := make([]outcome.Entity, 0, len(ents))
	for _, e := range ents {
		converted = append(converted, outcome.Entity{Name: e.Name, Value: e.Text})
	}
	return converted
}
