package strategy

import (
	"context"
	"encoding/json"

	"github.com/zen-systems/convogate/pkg/backend"
	"github.com/zen-systems/convogate/pkg/config"
	"github.com/zen-systems/convogate/pkg/outcome"
)

// CLUBackend matches backend.CLUClient.
type CLUBackend interface {
	Classify(ctx context.Context, utterance string) (*backend.CLUPrediction, json.RawMessage, error)
}

// CLUAdapter routes utterances through the intent classification backend.
type CLUAdapter struct {
	client    CLUBackend
	threshold float64
}

// NewCLUAdapter creates a CLU strategy adapter.
func NewCLUAdapter(client CLUBackend, cfg config.ProjectConfig) *CLUAdapter {
	return &CLUAdapter{client: client, threshold: cfg.ConfidenceThreshold}
}

// Kind returns the adapter identifier.
func (a *CLUAdapter) Kind() Kind { return KindCLU }

// Invoke classifies the utterance and accepts iff an intent other than the
// None sentinel was recognized at or above the configured threshold.
func (a *CLUAdapter) Invoke(ctx context.Context, utterance string) (*outcome.Outcome, error) {
	prediction, raw, err := a.client.Classify(ctx, utterance)
	if err != nil {
		return nil, err
	}
	return acceptIntent(prediction, a.threshold, raw), nil
}
