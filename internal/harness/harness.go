package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ghostrap"
	"github.com/roach88/ghostrap/internal/errs"
	"github.com/roach88/ghostrap/internal/handler"
	"github.com/roach88/ghostrap/internal/testutil"
	"github.com/roach88/ghostrap/internal/trace"
)

// Harness runs one scenario against a fresh object and registry.
type Harness struct {
	scenario *Scenario
	obj      *ghostrap.Object
	reg      *ghostrap.Registry
	handle   *ghostrap.Handle
	attached bool

	recorder  *trace.Recorder
	listeners map[string]*ghostrap.Listener
	counts    map[string]int
	logger    *slog.Logger
	session   string
}

// Option configures Run.
type Option func(*Harness)

// WithLogger sets the logger handed to the facade and the recorder.
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// WithSession records the trace under id instead of the scenario's fixed
// session. Used when traces from repeated runs are persisted side by side.
func WithSession(id string) Option {
	return func(h *Harness) {
		h.session = id
	}
}

// Run executes a scenario and returns its result.
//
// Every run gets its own registry, a deterministic clock and a fixed
// session, so the same scenario always records the same trace. Step and
// assertion failures are reported in the Result; the returned error is
// reserved for scenarios that cannot be set up at all.
//
// Execution flow:
//  1. Build the object from scenario.Object
//  2. Attach it and register the recorder on the watched keys
//  3. Register the listeners that name an event
//  4. Run the steps, checking expect and error clauses
//  5. Evaluate the assertions against the trace
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		scenario:  scenario,
		reg:       ghostrap.NewRegistry(),
		listeners: make(map[string]*ghostrap.Listener, len(scenario.Listeners)),
		counts:    make(map[string]int, len(scenario.Listeners)),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	props := make(map[string]any, len(scenario.Object))
	for k, v := range scenario.Object {
		c, err := convertValue(v)
		if err != nil {
			return nil, fmt.Errorf("object.%s: %w", k, err)
		}
		props[k] = c
	}
	h.obj = ghostrap.FromMap(props)

	session := h.session
	if session == "" {
		session = testutil.NewFixedSessionGenerator(scenario.Session).Generate()
	}
	h.recorder = trace.NewRecorder(
		trace.WithSession(session),
		trace.WithSequencer(testutil.NewDeterministicClock()),
		trace.WithLogger(h.logger),
	)

	if err := h.attach(); err != nil {
		return nil, fmt.Errorf("failed to attach: %w", err)
	}
	if err := h.setupListeners(); err != nil {
		return nil, fmt.Errorf("failed to set up listeners: %w", err)
	}

	result := NewResult(session)
	for i, step := range scenario.Steps {
		actual, err := h.execute(step)
		h.logger.Debug("step",
			"scenario", scenario.Name,
			"index", i,
			"op", step.Op,
			"error", err,
		)
		if failure := checkStep(i, step, actual, err); failure != nil {
			result.AddError(failure.Error())
		}
	}

	result.Trace = h.recorder.Events()
	for _, msg := range EvaluateAssertions(result.Trace, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// attach attaches the object and, unless it already was, puts the recorder
// on every watched key.
func (h *Harness) attach() error {
	handle, err := ghostrap.Attach(h.obj,
		ghostrap.WithRegistry(h.reg),
		ghostrap.WithLogger(h.logger),
	)
	if err != nil {
		return err
	}
	h.handle = handle
	if h.attached {
		return nil
	}
	h.attached = true
	return h.watch()
}

func (h *Harness) watch() error {
	for _, key := range h.scenario.Watch {
		for _, p := range handler.Phases {
			if _, err := h.handle.OnPhase(p, key, h.recorder.Listener(p)); err != nil {
				return fmt.Errorf("watch %s: %w", key, err)
			}
		}
	}
	return nil
}

func (h *Harness) setupListeners() error {
	for _, spec := range h.scenario.Listeners {
		fn, err := newTransform(spec.Transform)
		if err != nil {
			return fmt.Errorf("listener %s: %w", spec.ID, err)
		}
		id := spec.ID
		h.listeners[id] = ghostrap.NewListener(func(_ *ghostrap.Object, _ string, value any, _ []any) (any, error) {
			h.counts[id]++
			return fn(value)
		})
	}
	for _, spec := range h.scenario.Listeners {
		if spec.Event == "" {
			continue
		}
		var err error
		if spec.Once {
			_, err = h.handle.Once(spec.Event, h.listeners[spec.ID])
		} else {
			_, err = h.handle.On(spec.Event, h.listeners[spec.ID])
		}
		if err != nil {
			return fmt.Errorf("listener %s: %w", spec.ID, err)
		}
	}
	return nil
}

func (h *Harness) lookup(ids []string) []*ghostrap.Listener {
	ls := make([]*ghostrap.Listener, len(ids))
	for i, id := range ids {
		ls[i] = h.listeners[id]
	}
	return ls
}

// execute runs one step and returns its result value, if it has one.
func (h *Harness) execute(step Step) (any, error) {
	switch step.Op {
	case OpGet:
		return h.obj.Get(step.Key)
	case OpSet:
		v, err := convertValue(step.Value)
		if err != nil {
			return nil, err
		}
		return nil, h.obj.Set(step.Key, v)
	case OpCall:
		args, err := convertValue(step.Args)
		if err != nil {
			return nil, err
		}
		list, _ := args.([]any)
		return h.obj.Call(step.Key, list...)
	case OpOn:
		_, err := h.handle.On(step.Event, h.listeners[step.Listener])
		return nil, err
	case OpOnce:
		_, err := h.handle.Once(step.Event, h.listeners[step.Listener])
		return nil, err
	case OpOff:
		return nil, h.off(step)
	case OpClear:
		if err := h.handle.Clear(); err != nil {
			return nil, err
		}
		h.attached = false
		return nil, nil
	case OpAttach:
		return nil, h.attach()
	case OpCount:
		return h.counts[step.Listener], nil
	case OpKeys:
		return h.obj.Keys(), nil
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func (h *Harness) off(step Step) error {
	ls := h.lookup(step.Listeners)
	switch {
	case step.Event != "":
		return h.handle.Remove(step.Event, ls...)
	case len(ls) > 0:
		_, err := h.handle.OffListener(ls...)
		return err
	default:
		if _, err := h.handle.Off(); err != nil {
			return err
		}
		return h.watch()
	}
}

// StepError describes a step whose outcome differed from its expect or
// error clause.
type StepError struct {
	Index    int
	Op       string
	Expected string
	Actual   string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("steps[%d] (%s): expected %s, got %s", e.Index, e.Op, e.Expected, e.Actual)
}

func checkStep(i int, step Step, actual any, err error) *StepError {
	fail := func(expected, got string) *StepError {
		return &StepError{Index: i, Op: step.Op, Expected: expected, Actual: got}
	}

	if step.Error != "" {
		if err == nil {
			return fail("error "+step.Error, "success")
		}
		if code := errs.CodeOf(err); string(code) != step.Error {
			return fail("error "+step.Error, fmt.Sprintf("%v", err))
		}
		return nil
	}
	if err != nil {
		return fail("success", err.Error())
	}
	if step.Expect == nil {
		return nil
	}

	want, err := canonicalString(step.Expect)
	if err != nil {
		return fail("a canonical expect value", err.Error())
	}
	got, err := trace.MarshalCanonical(actual)
	if err != nil {
		return fail(want, fmt.Sprintf("%v (%v)", actual, err))
	}
	if string(got) != want {
		return fail(want, string(got))
	}
	return nil
}
