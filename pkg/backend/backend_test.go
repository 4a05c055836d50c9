package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zen-systems/convogate/pkg/config"
)

func TestCLUClassifyParsesPrediction(t *testing.T) {
	var gotKey, gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		gotPath = r.URL.Path
		w.Write([]byte(`{"result":{"conversations":[{"intents":[{"name":"OrderStatus","confidenceScore":0.92}],"entities":[{"name":"OrderId","text":"12"}]}]}}`))
	}))
	defer ts.Close()

	client := NewCLUClient(config.ProjectConfig{Endpoint: ts.URL, Project: "orders", Deployment: "production"}, "secret")
	prediction, raw, err := client.Classify(context.Background(), "where is my order 12")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if gotKey != "secret" {
		t.Fatalf("expected subscription key header, got %q", gotKey)
	}
	if gotPath != "/language/:analyze-conversations" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	top, ok := prediction.TopIntent()
	if !ok || top.Name != "OrderStatus" || top.Confidence != 0.92 {
		t.Fatalf("unexpected top intent: %+v", top)
	}
	if len(prediction.Entities) != 1 || prediction.Entities[0].Text != "12" {
		t.Fatalf("unexpected entities: %+v", prediction.Entities)
	}
	if len(raw) == 0 {
		t.Fatalf("expected raw payload")
	}
}

func TestCLUClassifyStatusErrorIsTransport(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := NewCLUClient(config.ProjectConfig{Endpoint: ts.URL, Project: "p", Deployment: "d"}, "bad")
	_, _, err := client.Classify(context.Background(), "hi")
	if err == nil {
		t.Fatalf("expected error")
	}
	var te *TransportError
	if !errors.As(err, &te) || te.Status != http.StatusUnauthorized {
		t.Fatalf("expected transport error with status 401, got %v", err)
	}
}

func TestCLUClassifyMalformedBodyIsTransport(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer ts.Close()

	client := NewCLUClient(config.ProjectConfig{Endpoint: ts.URL, Project: "p", Deployment: "d"}, "k")
	_, _, err := client.Classify(context.Background(), "hi")
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestCQAQueryKeepsBackendOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("projectName") != "faq" {
			t.Errorf("missing projectName: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"answers":[{"answer":"first","confidenceScore":0.85},{"answer":"second","confidenceScore":0.85}]}`))
	}))
	defer ts.Close()

	client := NewCQAClient(config.ProjectConfig{Endpoint: ts.URL, Project: "faq", Deployment: "production"}, "k")
	answers, _, err := client.Query(context.Background(), "what is the return policy")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(answers) != 2 || answers[0].Answer != "first" || answers[1].Answer != "second" {
		t.Fatalf("expected backend order preserved, got %+v", answers)
	}
}

func TestOrchestrationRouteConversationTarget(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"prediction":{"topIntent":"OrdersProject","intents":{"OrdersProject":{"targetProjectKind":"Conversation","confidenceScore":0.88,"result":{"prediction":{"topIntent":"OrderStatus","entities":[{"name":"OrderId","text":"42"}]}}}}}}}`))
	}))
	defer ts.Close()

	client := NewOrchestrationClient(config.ProjectConfig{Endpoint: ts.URL, Project: "router", Deployment: "production"}, "k")
	prediction, _, err := client.Route(context.Background(), "where is order 42")
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if prediction.TargetKind != "Conversation" || prediction.Intent != "OrderStatus" {
		t.Fatalf("unexpected prediction: %+v", prediction)
	}
	if prediction.Confidence != 0.88 {
		t.Fatalf("unexpected confidence: %v", prediction.Confidence)
	}
	if len(prediction.Entities) != 1 || prediction.Entities[0].Text != "42" {
		t.Fatalf("unexpected entities: %+v", prediction.Entities)
	}
}

func TestOrchestrationRouteAnswerTarget(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":{"prediction":{"topIntent":"FAQ","intents":{"FAQ":{"targetProjectKind":"QuestionAnswering","confidenceScore":0.91,"result":{"answers":[{"answer":"30 days","confidenceScore":0.91}]}}}}}}`))
	}))
	defer ts.Close()

	client := NewOrchestrationClient(config.ProjectConfig{Endpoint: ts.URL, Project: "router", Deployment: "production"}, "k")
	prediction, _, err := client.Route(context.Background(), "return policy?")
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if prediction.TargetKind != "QuestionAnswering" || prediction.Answer != "30 days" {
		t.Fatalf("unexpected prediction: %+v", prediction)
	}
}

func TestIsTransportCoversDeadline(t *testing.T) {
	if !IsTransport(context.DeadlineExceeded) {
		t.Fatalf("expected deadline to be transport-level")
	}
	if IsTransport(nil) {
		t.Fatalf("nil is not transport")
	}
}
