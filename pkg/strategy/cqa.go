package strategy

import (
	"context"
	"encoding/json"

	"github.com/zen-systems/convogate/pkg/backend"
	"github.com/zen-systems/convogate/pkg/config"
	"github.com/zen-systems/convogate/pkg/outcome"
)

// CQABackend matches backend.CQAClient.
type CQABackend interface {
	Query(ctx context.Context, utterance string) ([]backend.CQAAnswer, json.RawMessage, error)
}

// CQAAdapter routes utterances through the question answering backend.
type CQAAdapter struct {
	client    CQABackend
	threshold float64
}

// NewCQAAdapter creates a CQA strategy adapter.
func NewCQAAdapter(client CQABackend, cfg config.ProjectConfig) *CQAAdapter {
	return &CQAAdapter{client: client, threshold: cfg.ConfidenceThreshold}
}

// Kind returns the adapter identifier.
func (a *CQAAdapter) Kind() Kind { return KindCQA }

// Invoke queries the knowledge base and accepts the best candidate iff its
// confidence clears the threshold. Exact confidence ties keep the
// first-returned candidate; candidate order is backend-determined.
func (a *CQAAdapter) Invoke(ctx context.Context, utterance string) (*outcome.Outcome, error) {
	answers, raw, err := a.client.Query(ctx, utterance)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return outcome.Rejected(raw), nil
	}

	best := answers[0]
	for _, candidate := range answers[1:] {
		if candidate.Confidence > best.Confidence {
			best = candidate
		}
	}

	if best.Answer == "" || best.Confidence < a.threshold {
		return outcome.Rejected(raw).WithConfidence(best.Confidence), nil
	}
	return outcome.AcceptedAnswer(best.Answer, best.Confidence, raw), nil
}
