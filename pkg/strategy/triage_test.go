package strategy

import (
	"context"
	"testing"

	"github.com/zen-systems/convogate/pkg/backend"
)

func triageAdapter(response string) *TriageAdapter {
	return NewTriageAdapter(&scriptedProvider{response: response},
		"claude-sonnet-4-20250514", cluProject(0.70), cqaProject(0.50))
}

func TestTriageCLUResultAccepted(t *testing.T) {
	a := triageAdapter(`{"type":"clu_result","response":{"result":{"conversations":[{"intents":[{"name":"OrderRefund","confidenceScore":0.81}],"entities":[{"name":"OrderId","text":"7"}]}]}},"terminated":"False"}`)

	out, err := a.Invoke(context.Background(), "refund order 7")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if !out.Accepted || out.Intent != "OrderRefund" {
		t.Fatalf("expected accepted intent, got %+v", out)
	}
	if len(out.Entities) != 1 || out.Entities[0].Value != "7" {
		t.Fatalf("unexpected entities: %+v", out.Entities)
	}
}

func TestTriageCLUResultBelowThresholdRejected(t *testing.T) {
	a := triageAdapter(`{"type":"clu_result","response":{"result":{"conversations":[{"intents":[{"name":"OrderRefund","confidenceScore":0.30}]}]}},"terminated":"False"}`)

	out, err := a.Invoke(context.Background(), "refund maybe")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if out.Accepted {
		t.Fatalf("expected rejected outcome")
	}
}

func TestTriageCQAResultTakesFirstAnswer(t *testing.T) {
	a := triageAdapter("```json\n" + `{"type":"cqa_result","response":{"answers":[{"answer":"Store hours are 9-5.","confidenceScore":0.88},{"answer":"other","confidenceScore":0.90}]},"terminated":"True"}` + "\n```")

	out, err := a.Invoke(context.Background(), "what are your store hours")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if !out.Accepted || out.Answer != "Store hours are 9-5." {
		t.Fatalf("expected the agent's first answer, got %+v", out)
	}
}

func TestTriageCannotAnswerRejected(t *testing.T) {
	a := triageAdapter(`{"type":"cannot_answer"}`)

	out, err := a.Invoke(context.Background(), "mystery")
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if out.Accepted {
		t.Fatalf("expected rejected outcome when no tool fired")
	}
}

func TestTriageMalformedEnvelopeIsTransport(t *testing.T) {
	a := triageAdapter("Sorry, something went wrong upstream.")

	_, err := a.Invoke(context.Background(), "anything")
	if !backend.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
