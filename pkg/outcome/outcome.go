package outcome

import (
	"encoding/json"
	"time"
)

// Entity is one named value extracted from an utterance.
// Order is significant and follows backend order.
type Entity struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Outcome is the normalized result of one backend adapter call.
type Outcome struct {
	Accepted      bool            `json:"accepted"`
	Confidence    float64         `json:"confidence,omitempty"`
	HasConfidence bool            `json:"has_confidence"`
	Answer        string          `json:"answer,omitempty"`
	Intent        string          `json:"intent,omitempty"`
	Entities      []Entity        `json:"entities,omitempty"`
	Raw           json.RawMessage `json:"raw,omitempty"`
	Err           string          `json:"error,omitempty"`
	Elapsed       time.Duration   `json:"elapsed_ns"`
}

// Rejected builds a non-accepted outcome carrying the backend payload.
func Rejected(raw json.RawMessage) *Outcome {
	return &Outcome{Raw: raw}
}

// Errored builds a non-accepted outcome with a transport error marker.
func Errored(err error) *Outcome {
	o := &Outcome{}
	if err != nil {
		o.Err = err.Error()
	}
	return o
}

// AcceptedIntent builds an accepted intent-style outcome.
func AcceptedIntent(intent string, confidence float64, entities []Entity, raw json.RawMessage) *Outcome {
	return &Outcome{
		Accepted:      true,
		Confidence:    confidence,
		HasConfidence: true,
		Intent:        intent,
		Entities:      entities,
		Raw:           raw,
	}
}

// AcceptedAnswer builds an accepted answer-style outcome.
func AcceptedAnswer(answer string, confidence float64, raw json.RawMessage) *Outcome {
	return &Outcome{
		Accepted:      true,
		Confidence:    confidence,
		HasConfidence: true,
		Answer:        answer,
		Raw:           raw,
	}
}

// WithConfidence returns the outcome with an explicit confidence score.
func (o *Outcome) WithConfidence(c float64) *Outcome {
	o.Confidence = c
	o.HasConfidence = true
	return o
}

// Errored reports whether the outcome records a transport-level failure.
func (o *Outcome) Errored() bool {
	return o != nil && o.Err != ""
}
