package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/ghostrap/internal/trace"
)

// TraceSnapshot is the golden form of a scenario trace. Event IDs are left
// out: they follow from the other fields.
type TraceSnapshot struct {
	ScenarioName string
	Session      string
	Trace        []trace.Event
}

func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	events := make([]any, len(s.Trace))
	for i, e := range s.Trace {
		events[i] = map[string]any{
			"seq":   e.Seq,
			"phase": string(e.Phase),
			"key":   e.Key,
			"value": e.Value,
			"args":  e.Args,
		}
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"session":       s.Session,
		"trace":         events,
	}
}

// Snapshot returns the canonical JSON golden form of result.
func Snapshot(name string, result *Result) ([]byte, error) {
	snap := TraceSnapshot{
		ScenarioName: name,
		Session:      result.Session,
		Trace:        result.Trace,
	}
	return trace.MarshalCanonical(snap.toCanonicalMap())
}

// RunWithGolden runs scenario, fails the test if any step or assertion
// failed, and compares the trace against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, msg)
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's trace against the golden file
// for name.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
