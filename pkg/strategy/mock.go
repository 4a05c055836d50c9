package strategy

import (
	"context"

	"github.com/zen-systems/convogate/pkg/outcome"
)

// MockAdapter returns a scripted outcome for local runs and tests.
type MockAdapter struct {
	kind          Kind
	Outcome       *outcome.Outcome
	Err           error
	Calls         int
	LastUtterance string
}

// NewMockAdapter creates a mock adapter of the given kind that rejects
// everything until scripted otherwise.
func NewMockAdapter(kind Kind) *MockAdapter {
	return &MockAdapter{kind: kind, Outcome: outcome.Rejected(nil)}
}

// Kind returns the scripted adapter identifier.
func (a *MockAdapter) Kind() Kind { return a.kind }

// Invoke returns the scripted outcome or error.
func (a *MockAdapter) Invoke(_ context.Context, utterance string) (*outcome.Outcome, error) {
	a.Calls++
	a.LastUtterance = utterance
	if a.Err != nil {
		return nil, a.Err
	}
	return a.Outcome, nil
}
