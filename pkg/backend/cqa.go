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

const cqaAPIVersion = "2023-04-01"

// CQAClient calls the custom question answering runtime.
type CQAClient struct {
	cfg   config.ProjectConfig
	key   string
	httpc *http.Client
}

// NewCQAClient creates a question answering runtime client.
func NewCQAClient(cfg config.ProjectConfig, apiKey string) *CQAClient {
	return &CQAClient{cfg: cfg, key: apiKey, httpc: http.DefaultClient}
}

// CQAAnswer is one candidate answer with its confidence score.
// Candidate order is backend-determined and preserved.
type CQAAnswer struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidenceScore"`
}

type cqaRequest struct {
	Question string `json:"question"`
	Top      int    `json:"top"`
}

type cqaResponse struct {
	Answers []CQAAnswer `json:"answers"`
}

// Query asks the knowledge base and returns candidate answers in backend
// order plus the raw payload for diagnostics.
func (c *CQAClient) Query(ctx context.Context, utterance string) ([]CQAAnswer, json.RawMessage, error) {
	raw, err := postJSON(ctx, c.httpc, c.queryURL(), c.key, cqaRequest{Question: utterance, Top: 3}, "cqa")
	if err != nil {
		return nil, nil, err
	}

	answers, err := ParseCQAResult(raw)
	if err != nil {
		return nil, nil, &TransportError{Backend: "cqa", Err: err}
	}
	return answers, raw, nil
}

// ParseCQAResult parses a raw knowledge base query payload.
func ParseCQAResult(raw json.RawMessage) ([]CQAAnswer, error) {
	var parsed cqaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("malformed CQA response: %w", err)
	}
	return parsed.Answers, nil
}

func (c *CQAClient) queryURL() string {
	return fmt.Sprintf("%s/language/:query-knowledgebases?projectName=%s&deploymentName=%s&api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"),
		url.QueryEscape(c.cfg.Project),
		url.QueryEscape(c.cfg.Deployment),
		url.QueryEscape(cqaAPIVersion))
}
