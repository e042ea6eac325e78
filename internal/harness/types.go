package harness

import "github.com/roach88/ghostrap/internal/trace"

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step matched its expectation and every
	// assertion held.
	Pass bool `json:"pass"`

	// Session is the trace session the events were recorded under.
	Session string `json:"session"`

	// Trace holds the recorder's events in seq order.
	Trace []trace.Event `json:"trace"`

	// Errors describes each failed step or assertion. Empty if Pass.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result with an empty trace.
func NewResult(session string) *Result {
	return &Result{
		Pass:    true,
		Session: session,
		Trace:   []trace.Event{},
		Errors:  []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
