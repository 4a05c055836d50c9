package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/zen-systems/convogate/pkg/config"
)

// cluAPIVersion is pinned by the CLU project deployment; the service
// rejects requests without it.
const cluAPIVersion = "2025-05-15-preview"

// CLUClient calls the conversational language understanding runtime.
type CLUClient struct {
	cfg   config.ProjectConfig
	key   string
	httpc *http.Client
}

// NewCLUClient creates a CLU runtime client.
func NewCLUClient(cfg config.ProjectConfig, apiKey string) *CLUClient {
	return &CLUClient{cfg: cfg, key: apiKey, httpc: http.DefaultClient}
}

// CLUIntent is one recognized intent with its confidence score.
type CLUIntent struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidenceScore"`
}

// CLUEntity is one extracted entity.
type CLUEntity struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// CLUPrediction is the parsed conversation analysis result.
type CLUPrediction struct {
	Intents  []CLUIntent
	Entities []CLUEntity
}

// TopIntent returns the highest-scoring intent, if any was recognized.
func (p *CLUPrediction) TopIntent() (CLUIntent, bool) {
	if p == nil || len(p.Intents) == 0 {
		return CLUIntent{}, false
	}
	return p.Intents[0], true
}

type cluRequest struct {
	Kind          string           `json:"kind"`
	Parameters    cluParameters    `json:"parameters"`
	AnalysisInput cluAnalysisInput `json:"analysisInput"`
}

type cluParameters struct {
	ProjectName     string `json:"projectName"`
	DeploymentName  string `json:"deploymentName"`
	StringIndexType string `json:"stringIndexType"`
}

type cluAnalysisInput struct {
	Conversations []cluConversation `json:"conversations"`
}

type cluConversation struct {
	ID                string                `json:"id"`
	Language          string                `json:"language"`
	Modality          string                `json:"modality"`
	ConversationItems []cluConversationItem `json:"conversationItems"`
}

type cluConversationItem struct {
	ParticipantID string `json:"participantId"`
	ID            string `json:"id"`
	Text          string `json:"text"`
}

type cluResponse struct {
	Result struct {
		Conversations []struct {
			Intents  []CLUIntent `json:"intents"`
			Entities []CLUEntity `json:"entities"`
		} `json:"conversations"`
	} `json:"result"`
}

// Classify analyzes one utterance and returns the recognized intents and
// entities plus the raw payload for diagnostics.
func (c *CLUClient) Classify(ctx context.Context, utterance string) (*CLUPrediction, json.RawMessage, error) {
	body := cluRequest{
		Kind: "ConversationalAI",
		Parameters: cluParameters{
			ProjectName:     c.cfg.Project,
			DeploymentName:  c.cfg.Deployment,
			StringIndexType: "Utf16CodeUnit",
		},
		AnalysisInput: cluAnalysisInput{
			Conversations: []cluConversation{{
				ID:       "1",
				Language: "en",
				Modality: "text",
				ConversationItems: []cluConversationItem{
					{ParticipantID: "user", ID: "1", Text: utterance},
				},
			}},
		},
	}

	raw, err := postJSON(ctx, c.httpc, c.analyzeURL(), c.key, body, "clu")
	if err != nil {
		return nil, nil, err
	}

	prediction, err := ParseCLUResult(raw)
	if err != nil {
		return nil, nil, &TransportError{Backend: "clu", Err: err}
	}
	return prediction, raw, nil
}

// ParseCLUResult parses a raw conversation analysis payload. The triage
// agent returns the same payload embedded in its result envelope, so the
// parser is shared.
func ParseCLUResult(raw json.RawMessage) (*CLUPrediction, error) {
	var parsed cluResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("malformed CLU response: %w", err)
	}

	prediction := &CLUPrediction{}
	if len(parsed.Result.Conversations) > 0 {
		prediction.Intents = parsed.Result.Conversations[0].Intents
		prediction.Entities = parsed.Result.Conversations[0].Entities
	}
	return prediction, nil
}

func (c *CLUClient) analyzeURL() string {
	return fmt.Sprintf("%s/language/:analyze-conversations?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), url.QueryEscape(cluAPIVersion))
}

// postJSON issues an authenticated POST and returns the raw body.
// Any failure along the way is a TransportError for the given backend.
func postJSON(ctx context.Context, httpc *http.Client, rawURL, key string, body any, backend string) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &TransportError{Backend: backend, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Backend: backend, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", key)

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, &TransportError{Backend: backend, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Backend: backend, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Backend: backend,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 200)),
		}
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
