package outcome

// Diagnostic pairs an invoked adapter with its outcome. Diagnostics are kept
// in call order so a rejected chain can be replayed from the result alone.
type Diagnostic struct {
	Adapter string   `json:"adapter"`
	Outcome *Outcome `json:"outcome"`
}

// Result is the single external-facing record of one orchestrated turn.
// It is created fresh per call and owned by the caller afterwards.
type Result struct {
	RoutedTo          string       `json:"routed_to"`
	FallbackTriggered bool         `json:"fallback_triggered"`
	FinalAnswer       string       `json:"final_answer"`
	Intent            string       `json:"intent,omitempty"`
	Entities          []Entity     `json:"entities,omitempty"`
	Diagnostics       []Diagnostic `json:"diagnostics"`
	TraceID           string       `json:"trace_id"`
}

// Diagnostic returns the recorded outcome for an adapter, if it was invoked.
func (r *Result) Diagnostic(adapter string) (*Outcome, bool) {
	for _, d := range r.Diagnostics {
		if d.Adapter == adapter {
			return d.Outcome, true
		}
	}
	return nil, false
}
