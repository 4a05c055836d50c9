package strategy

import (
	"context"
	"encoding/json"

	"github.com/zen-systems/convogate/pkg/backend"
	"github.com/zen-systems/convogate/pkg/config"
	"github.com/zen-systems/convogate/pkg/outcome"
)

// OrchestrationBackend matches backend.OrchestrationClient.
type OrchestrationBackend interface {
	Route(ctx context.Context, utterance string) (*backend.OrchestrationPrediction, json.RawMessage, error)
}

// OrchestrationAdapter routes utterances through an orchestration workflow
// project that dispatches internally to a CLU or CQA target.
type OrchestrationAdapter struct {
	client    OrchestrationBackend
	threshold float64
}

// NewOrchestrationAdapter creates an orchestration strategy adapter.
func NewOrchestrationAdapter(client OrchestrationBackend, cfg config.ProjectConfig) *OrchestrationAdapter {
	return &OrchestrationAdapter{client: client, threshold: cfg.ConfidenceThreshold}
}

// Kind returns the adapter identifier.
func (a *OrchestrationAdapter) Kind() Kind { return KindOrchestration }

// Invoke accepts a top intent mapped to a CLU-style outcome or a top answer
// mapped to a CQA-style outcome, thresholded; anything else rejects.
func (a *OrchestrationAdapter) Invoke(ctx context.Context, utterance string) (*outcome.Outcome, error) {
	prediction, raw, err := a.client.Route(ctx, utterance)
	if err != nil {
		return nil, err
	}
	if prediction.Confidence < a.threshold {
		return outcome.Rejected(raw).WithConfidence(prediction.Confidence), nil
	}

	switch prediction.TargetKind {
	case "Conversation":
		if prediction.Intent == "" || prediction.Intent == NoneIntent {
			return outcome.Rejected(raw).WithConfidence(prediction.Confidence), nil
		}
		return outcome.AcceptedIntent(prediction.Intent, prediction.Confidence, entitiesFrom(prediction.Entities), raw), nil

	case "QuestionAnswering":
		if prediction.Answer == "" {
			return outcome.Rejected(raw).WithConfidence(prediction.Confidence), nil
		}
		return outcome.AcceptedAnswer(prediction.Answer, prediction.Confidence, raw), nil

	default:
		return outcome.Rejected(raw), nil
	}
}
