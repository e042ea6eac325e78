package registry

import (
	"errors"
	"weak"

	"github.com/google/uuid"

	"github.com/roach88/ghostrap/internal/errs"
	"github.com/roach88/ghostrap/internal/handler"
	"github.com/roach88/ghostrap/internal/object"
	"github.com/roach88/ghostrap/internal/trap"
)

// State is the observation state of one object: its traps and the listener
// tables they dispatch to.
type State struct {
	// ID identifies the state in logs and traces (UUIDv7).
	ID string

	// Handlers holds the listener tables, one per trapped key.
	Handlers *handler.Store

	target weak.Pointer[object.Object]
	traps  map[string]*trap.Trap
	order  []string
}

func newState(target weak.Pointer[object.Object]) *State {
	return &State{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Handlers: handler.NewStore(),
		target:   target,
		traps:    make(map[string]*trap.Trap),
	}
}

// Target returns the observed object, or nil once it has been collected.
func (s *State) Target() *object.Object {
	return s.target.Value()
}

// Trap returns the trap for key, if installed.
func (s *State) Trap(key string) (*trap.Trap, bool) {
	t, ok := s.traps[key]
	return t, ok
}

// Install traps key unless it already is. installed reports whether a new
// trap was created.
func (s *State) Install(key string) (t *trap.Trap, installed bool, err error) {
	if t, ok := s.traps[key]; ok {
		return t, false, nil
	}
	target := s.Target()
	if target == nil {
		return nil, false, errs.NewInvalidTarget("target has been collected")
	}
	t, err = trap.Install(target, key, dispatcher{handlers: s.Handlers, key: key})
	if err != nil {
		return nil, false, err
	}
	s.traps[key] = t
	s.order = append(s.order, key)
	return t, true, nil
}

// Trapped returns the trapped keys in install order.
func (s *State) Trapped() []string {
	return append([]string(nil), s.order...)
}

// Reset restores every trap and drops every listener table. Restore failures
// are joined; the state is emptied regardless.
func (s *State) Reset() error {
	var errList []error
	if target := s.Target(); target != nil {
		for _, key := range s.order {
			if err := s.traps[key].Restore(target); err != nil {
				errList = append(errList, err)
			}
		}
	}
	clear(s.traps)
	s.order = nil
	s.Handlers.Clear()
	return errors.Join(errList...)
}

// dispatcher resolves the listener table of key at fire time, so tables can
// be dropped and recreated without touching the trap.
type dispatcher struct {
	handlers *handler.Store
	key      string
}

func (d dispatcher) Fire(p handler.Phase, target *object.Object, value any, args []any) (any, error) {
	t, ok := d.handlers.Lookup(d.key)
	if !ok {
		return value, nil
	}
	return t.Fire(p, target, value, args)
}
