package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/ghostrap/internal/handler"
	"github.com/roach88/ghostrap/internal/object"
)

// Recorder turns listener invocations into trace Events.
//
// Recorder listeners only observe: the value passes through unchanged, so a
// recorder can sit in any phase without altering the fold.
type Recorder struct {
	session string
	clock   Sequencer
	logger  *slog.Logger
	events  []Event
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithSession sets the session ID. Default: a fresh UUIDv7.
func WithSession(id string) Option {
	return func(r *Recorder) {
		r.session = id
	}
}

// WithSequencer sets the clock that stamps events. Default: NewClock().
func WithSequencer(s Sequencer) Option {
	return func(r *Recorder) {
		r.clock = s
	}
}

// WithLogger sets the logger events are reported to at Debug.
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = l
	}
}

// NewRecorder creates a recorder with no events.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		clock:  NewClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.session == "" {
		r.session = UUIDv7Generator{}.Generate()
	}
	return r
}

// Session returns the session ID stamped on every event.
func (r *Recorder) Session() string {
	return r.session
}

// Listener returns a listener that records p.
func (r *Recorder) Listener(p handler.Phase) *handler.Listener {
	return handler.Observe(func(_ *object.Object, key string, value any, args []any) {
		r.record(p, key, value, args)
	})
}

func (r *Recorder) record(p handler.Phase, key string, value any, args []any) {
	e := Event{
		SessionID: r.session,
		Seq:       r.clock.Next(),
		Phase:     p,
		Key:       key,
		Value:     r.encode(key, value),
		Args:      json.RawMessage("null"),
	}
	if args != nil {
		e.Args = r.encode(key, args)
	}
	id, err := EventID(e)
	if err != nil {
		// Value and Args are canonical by construction.
		panic(fmt.Sprintf("trace: %v", err))
	}
	e.ID = id
	r.events = append(r.events, e)

	r.logger.Debug("trace event",
		"seq", e.Seq,
		"phase", string(e.Phase),
		"key", e.Key,
		"value", string(e.Value),
	)
}

// encode returns the canonical JSON of v. Values with no canonical form
// (floats, foreign types) are recorded as their fmt representation.
func (r *Recorder) encode(key string, v any) json.RawMessage {
	data, err := MarshalCanonical(v)
	if err == nil {
		return data
	}
	r.logger.Warn("trace value not canonical; recording as string", "key", key, "error", err)
	data, _ = MarshalCanonical(fmt.Sprintf("%v", v))
	return data
}

// Events returns the recorded events in order.
func (r *Recorder) Events() []Event {
	return append([]Event(nil), r.events...)
}

// Reset drops the recorded events. The session and clock are kept.
func (r *Recorder) Reset() {
	r.events = nil
}
