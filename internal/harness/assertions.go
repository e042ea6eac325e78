package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/ghostrap/internal/handler"
	"github.com/roach88/ghostrap/internal/trace"
)

// Assertion validates the recorded trace.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count.
	Type string `yaml:"type"`

	// Event is the "phase:key" the assertion looks for (trace_contains,
	// trace_count).
	Event string `yaml:"event,omitempty"`

	// Value, when set, must equal the recorded value in canonical JSON
	// (trace_contains).
	Value any `yaml:"value,omitempty"`

	// Count is the exact number of matching events (trace_count).
	Count int `yaml:"count,omitempty"`

	// Events must appear in this order, not necessarily adjacent
	// (trace_order).
	Events []string `yaml:"events,omitempty"`
}

// Assertion types.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
)

// AssertionError describes a failed assertion with the trace it ran
// against.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []trace.Event
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s:%s %s\n", ev.Seq, ev.Phase, ev.Key, ev.Value)
		}
	}
	return buf.String()
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertTraceContains, AssertTraceCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for %s", index, a.Type)
		}
		if _, err := handler.ParseEvent(a.Event); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
		for _, spec := range a.Events {
			if _, err := handler.ParseEvent(spec); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}

// EvaluateAssertions checks every assertion against events and returns the
// failure messages.
func EvaluateAssertions(events []trace.Event, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(events, a)
		case AssertTraceOrder:
			err = assertTraceOrder(events, a)
		case AssertTraceCount:
			err = assertTraceCount(events, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func matches(e trace.Event, ev handler.Event) bool {
	return e.Phase == ev.Phase && e.Key == ev.Key
}

func assertTraceContains(events []trace.Event, a Assertion) error {
	ev, err := handler.ParseEvent(a.Event)
	if err != nil {
		return err
	}
	var want string
	if a.Value != nil {
		if want, err = canonicalString(a.Value); err != nil {
			return fmt.Errorf("trace_contains %s: %w", a.Event, err)
		}
	}
	for _, e := range events {
		if matches(e, ev) && (want == "" || string(e.Value) == want) {
			return nil
		}
	}
	expected := a.Event
	if want != "" {
		expected += " with value " + want
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    events,
	}
}

func assertTraceOrder(events []trace.Event, a Assertion) error {
	positions := make([]int, len(a.Events))
	for i, spec := range a.Events {
		ev, err := handler.ParseEvent(spec)
		if err != nil {
			return err
		}
		for j, e := range events {
			if matches(e, ev) {
				positions[i] = j + 1
				break
			}
		}
		if positions[i] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all events present: %v", a.Events),
				Actual:   "missing event: " + spec,
				Trace:    events,
			}
		}
	}
	for i := 1; i < len(positions); i++ {
		if positions[i-1] >= positions[i] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("events in order: %v", a.Events),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					a.Events[i-1], positions[i-1], a.Events[i], positions[i]),
				Trace: events,
			}
		}
	}
	return nil
}

func assertTraceCount(events []trace.Event, a Assertion) error {
	ev, err := handler.ParseEvent(a.Event)
	if err != nil {
		return err
	}
	count := 0
	for _, e := range events {
		if matches(e, ev) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Event),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    events,
		}
	}
	return nil
}

// canonicalString converts a scenario value the way steps do and returns
// its canonical JSON.
func canonicalString(v any) (string, error) {
	c, err := convertValue(v)
	if err != nil {
		return "", err
	}
	data, err := trace.MarshalCanonical(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
