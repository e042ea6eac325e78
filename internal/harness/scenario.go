package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ghostrap/internal/handler"
)

// Scenario is a scripted sequence of accesses against one object, with the
// listeners that observe them.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Object holds the initial properties. A value of the form
	// {function: <native>} becomes a method.
	Object map[string]any `yaml:"object"`

	// Watch lists the keys the trace recorder observes in every phase.
	Watch []string `yaml:"watch,omitempty"`

	// Session fixes the trace session ID. Defaults to
	// testutil.DefaultSession.
	Session string `yaml:"session,omitempty"`

	// Listeners declares the named listeners steps refer to. A listener with
	// an event is registered before the first step.
	Listeners []ListenerSpec `yaml:"listeners,omitempty"`

	// Steps run in order against the object and its handle.
	Steps []Step `yaml:"steps"`

	// Assertions validate the recorded trace once every step has run.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ListenerSpec declares a named listener.
type ListenerSpec struct {
	ID        string     `yaml:"id"`
	Event     string     `yaml:"event,omitempty"`
	Once      bool       `yaml:"once,omitempty"`
	Transform *Transform `yaml:"transform,omitempty"`
}

// Transform describes what a listener does to the value it receives.
// A listener without a transform passes the value through.
type Transform struct {
	// Op is one of add, mul, append, identity, function.
	Op string `yaml:"op"`

	// Arg is the operand: an integer for add and mul, a string for append,
	// a native name for function.
	Arg any `yaml:"arg,omitempty"`
}

// Step is one operation against the object or its handle.
type Step struct {
	// Op selects the operation; see the Op* constants.
	Op string `yaml:"op"`

	Key       string   `yaml:"key,omitempty"`
	Value     any      `yaml:"value,omitempty"`
	Args      []any    `yaml:"args,omitempty"`
	Event     string   `yaml:"event,omitempty"`
	Listener  string   `yaml:"listener,omitempty"`
	Listeners []string `yaml:"listeners,omitempty"`

	// Expect is compared with the step's result in canonical JSON form.
	// Nil skips the comparison.
	Expect any `yaml:"expect,omitempty"`

	// Error is the expected error code. Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`
}

// Step operations.
const (
	OpGet    = "get"
	OpSet    = "set"
	OpCall   = "call"
	OpOn     = "on"
	OpOnce   = "once"
	OpOff    = "off"
	OpClear  = "clear"
	OpAttach = "attach"
	OpCount  = "count"
	OpKeys   = "keys"
)

// LoadScenario reads, schema-checks and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario schema-checks and parses scenario YAML.
// Unknown fields are rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}

	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// validateScenario checks the cross-field rules the schema cannot express.
func validateScenario(s *Scenario) error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	ids := make(map[string]bool, len(s.Listeners))
	for i, l := range s.Listeners {
		if ids[l.ID] {
			return fmt.Errorf("listeners[%d]: duplicate id %q", i, l.ID)
		}
		ids[l.ID] = true
		if l.Event != "" {
			if _, err := handler.ParseEvent(l.Event); err != nil {
				return fmt.Errorf("listeners[%d]: %w", i, err)
			}
		}
		if l.Once && l.Event == "" {
			return fmt.Errorf("listeners[%d]: once requires an event", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(step, ids); err != nil {
			return fmt.Errorf("steps[%d] (%s): %w", i, step.Op, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(step Step, ids map[string]bool) error {
	switch step.Op {
	case OpGet, OpSet, OpCall:
		if step.Key == "" {
			return fmt.Errorf("key is required")
		}
	case OpOn, OpOnce:
		if step.Event == "" {
			return fmt.Errorf("event is required")
		}
		if !ids[step.Listener] {
			return fmt.Errorf("unknown listener %q", step.Listener)
		}
	case OpCount:
		if !ids[step.Listener] {
			return fmt.Errorf("unknown listener %q", step.Listener)
		}
		if step.Expect == nil {
			return fmt.Errorf("expect is required")
		}
	}
	for _, id := range step.Listeners {
		if !ids[id] {
			return fmt.Errorf("unknown listener %q", id)
		}
	}
	return nil
}
