package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/zen-systems/convogate/pkg/config"
)

const orchestrationAPIVersion = "2023-04-01"

// OrchestrationClient calls an orchestration workflow project, which
// dispatches internally to a CLU or question answering target.
type OrchestrationClient struct {
	cfg   config.ProjectConfig
	key   string
	httpc *http.Client
}

// NewOrchestrationClient creates an orchestration runtime client.
func NewOrchestrationClient(cfg config.ProjectConfig, apiKey string) *OrchestrationClient {
	return &OrchestrationClient{cfg: cfg, key: apiKey, httpc: http.DefaultClient}
}

// OrchestrationPrediction is the parsed routing result. Exactly one of the
// intent-shaped or answer-shaped halves is populated, per TargetKind.
type OrchestrationPrediction struct {
	TopIntent  string
	TargetKind string // "Conversation" or "QuestionAnswering"
	Confidence float64

	// Conversation target
	Intent   string
	Entities []CLUEntity

	// QuestionAnswering target
	Answer string
}

type orchestrationRequest struct {
	Kind          string        `json:"kind"`
	Parameters    cluParameters `json:"parameters"`
	AnalysisInput struct {
		ConversationItem cluConversationItem `json:"conversationItem"`
	} `json:"analysisInput"`
}

type orchestrationResponse struct {
	Result struct {
		Prediction struct {
			TopIntent string                         `json:"topIntent"`
			Intents   map[string]orchestrationTarget `json:"intents"`
		} `json:"prediction"`
	} `json:"result"`
}

type orchestrationTarget struct {
	TargetProjectKind string  `json:"targetProjectKind"`
	Confidence        float64 `json:"confidenceScore"`
	Result            struct {
		Prediction struct {
			TopIntent string      `json:"topIntent"`
			Entities  []CLUEntity `json:"entities"`
		} `json:"prediction"`
		Answers []CQAAnswer `json:"answers"`
	} `json:"result"`
}

// Route analyzes one utterance through the orchestration project and
// returns the top target's prediction plus the raw payload.
func (c *OrchestrationClient) Route(ctx context.Context, utterance string) (*OrchestrationPrediction, json.RawMessage, error) {
	body := orchestrationRequest{
		Kind: "Conversation",
		Parameters: cluParameters{
			ProjectName:     c.cfg.Project,
			DeploymentName:  c.cfg.Deployment,
			StringIndexType: "Utf16CodeUnit",
		},
	}
	body.AnalysisInput.ConversationItem = cluConversationItem{ParticipantID: "user", ID: "1", Text: utterance}

	raw, err := postJSON(ctx, c.httpc, c.analyzeURL(), c.key, body, "orchestration")
	if err != nil {
		return nil, nil, err
	}

	var parsed orchestrationResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, nil, &TransportError{Backend: "orchestration", Err: fmt.Errorf("malformed response: %w", err)}
	}

	prediction := &OrchestrationPrediction{TopIntent: parsed.Result.Prediction.TopIntent}
	target, ok := parsed.Result.Prediction.Intents[prediction.TopIntent]
	if !ok {
		return prediction, raw, nil
	}

	prediction.TargetKind = target.TargetProjectKind
	prediction.Confidence = target.Confidence

	switch target.TargetProjectKind {
	case "Conversation":
		prediction.Intent = target.Result.Prediction.TopIntent
		prediction.Entities = target.Result.Prediction.Entities
	case "QuestionAnswering":
		if len(target.Result.Answers) > 0 {
			prediction.Answer = target.Result.Answers[0].Answer
		}
	}
	return prediction, raw, nil
}

func (c *OrchestrationClient) analyzeURL() string {
	return fmt.Sprintf("%s/language/:analyze-conversations?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), url.QueryEscape(orchestrationAPIVersion))
}
