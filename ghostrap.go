package ghostrap

import (
	"log/slog"

	"github.com/roach88/ghostrap/internal/errs"
	"github.com/roach88/ghostrap/internal/handler"
	"github.com/roach88/ghostrap/internal/registry"
)

// Handle is a view onto the observation state of one object.
//
// Every Handle for the same object resolves the same state through the
// registry, so listeners registered through one are visible through all.
// Handles are not safe for concurrent use.
type Handle struct {
	target *Object
	reg    *Registry
	logger *slog.Logger
}

// Option configures Attach.
type Option func(*Handle)

// WithRegistry attaches through r instead of the process-wide registry.
func WithRegistry(r *Registry) Option {
	return func(h *Handle) {
		h.reg = r
	}
}

// WithLogger sets the logger for trap installation and reset events.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Handle) {
		h.logger = l
	}
}

// Attach registers target for observation and returns a handle to it.
// Attaching an already registered object returns a handle to its existing
// state. target itself is not modified until a listener is registered.
func Attach(target *Object, opts ...Option) (*Handle, error) {
	h := &Handle{
		target: target,
		reg:    registry.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	s, err := h.reg.GetOrCreate(target)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("target attached", "state", s.ID)
	return h, nil
}

// Target returns the observed object.
func (h *Handle) Target() *Object {
	return h.target
}

// Trapped returns the trapped keys in install order, or nil when the handle
// is detached.
func (h *Handle) Trapped() []string {
	s, ok := h.reg.Lookup(h.target)
	if !ok {
		return nil
	}
	return s.Trapped()
}

func (h *Handle) state() (*registry.State, error) {
	s, ok := h.reg.Lookup(h.target)
	if !ok {
		return nil, errs.NewInvalidTarget("target is not attached")
	}
	return s, nil
}

// On registers l for event ("phase:key"). The first listener for a key
// installs the trap on it.
func (h *Handle) On(event string, l *Listener) (*Handle, error) {
	ev, err := handler.ParseEvent(event)
	if err != nil {
		return h, err
	}
	return h, h.register(ev, l, false)
}

// OnPhase is On with a pre-parsed phase and key.
func (h *Handle) OnPhase(p Phase, key string, l *Listener) (*Handle, error) {
	ev, err := h.event(p, key)
	if err != nil {
		return h, err
	}
	return h, h.register(ev, l, false)
}

// Once registers l for event so that it fires at most once.
func (h *Handle) Once(event string, l *Listener) (*Handle, error) {
	ev, err := handler.ParseEvent(event)
	if err != nil {
		return h, err
	}
	return h, h.register(ev, l, true)
}

// OncePhase is Once with a pre-parsed phase and key.
func (h *Handle) OncePhase(p Phase, key string, l *Listener) (*Handle, error) {
	ev, err := h.event(p, key)
	if err != nil {
		return h, err
	}
	return h, h.register(ev, l, true)
}

// MustOn is like On but panics on error.
func (h *Handle) MustOn(event string, l *Listener) *Handle {
	if _, err := h.On(event, l); err != nil {
		panic(err)
	}
	return h
}

// MustOnce is like Once but panics on error.
func (h *Handle) MustOnce(event string, l *Listener) *Handle {
	if _, err := h.Once(event, l); err != nil {
		panic(err)
	}
	return h
}

func (h *Handle) event(p Phase, key string) (handler.Event, error) {
	spec := handler.Event{Phase: p, Key: key}.String()
	phase, ok := handler.ParsePhase(string(p))
	if !ok {
		return handler.Event{}, errs.NewInvalidEvent(spec, "unknown phase "+string(p))
	}
	if key == "" {
		return handler.Event{}, errs.NewInvalidEvent(spec, "empty property key")
	}
	return handler.Event{Phase: phase, Key: key}, nil
}

func (h *Handle) register(ev handler.Event, l *Listener, once bool) error {
	if l == nil {
		return errs.NewInvalidEvent(ev.String(), "nil listener")
	}
	s, err := h.state()
	if err != nil {
		return err
	}

	t, installed, err := s.Install(ev.Key)
	if err != nil {
		h.logger.Debug("trap install failed", "key", ev.Key, "state", s.ID, "error", err)
		return err
	}
	if installed {
		h.logger.Debug("trap installed", "key", ev.Key, "kind", t.Kind.String(), "state", s.ID)
	}

	tbl := s.Handlers.Table(ev.Key)
	if once {
		tbl.AddOnce(ev.Phase, l)
	} else {
		tbl.Add(ev.Phase, l)
	}
	return nil
}

// Off resets the object: every trap is restored, every listener dropped, and
// a fresh empty state is registered. Later registrations start from scratch.
func (h *Handle) Off() (*Handle, error) {
	if _, err := h.state(); err != nil {
		return h, err
	}
	if err := h.Clear(); err != nil {
		return h, err
	}
	s, err := h.reg.GetOrCreate(h.target)
	if err != nil {
		return h, err
	}
	h.logger.Debug("target reset", "state", s.ID)
	return h, nil
}

// OffListener removes ls from every phase of every key. Traps stay
// installed.
func (h *Handle) OffListener(ls ...*Listener) (*Handle, error) {
	s, err := h.state()
	if err != nil {
		return h, err
	}
	s.Handlers.RemoveListeners(ls...)
	return h, nil
}

// Remove removes listeners for event.
//
// event "*" removes ls everywhere, like OffListener. Otherwise event is a
// "phase:key" spec: without listeners every listener of that pair is
// dropped, with listeners only those are.
func (h *Handle) Remove(event string, ls ...*Listener) error {
	if event == "*" {
		_, err := h.OffListener(ls...)
		return err
	}
	ev, err := handler.ParseEvent(event)
	if err != nil {
		return err
	}
	s, err := h.state()
	if err != nil {
		return err
	}
	if tbl, ok := s.Handlers.Lookup(ev.Key); ok {
		tbl.Remove(ev.Phase, ls...)
	}
	return nil
}

// Clear restores every trap, drops every listener and detaches the object.
// Until the object is attached again, operations on the handle fail with an
// INVALID_TARGET error. Clearing a detached handle is a no-op.
func (h *Handle) Clear() error {
	s, ok := h.reg.Lookup(h.target)
	if !ok {
		return nil
	}
	keys := s.Trapped()
	err := s.Reset()
	h.reg.Remove(h.target)
	for _, key := range keys {
		h.logger.Debug("trap restored", "key", key, "state", s.ID)
	}
	if err != nil {
		h.logger.Debug("restore failed", "state", s.ID, "error", err)
	}
	return err
}
