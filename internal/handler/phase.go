package handler

import (
	"strings"

	"github.com/roach88/ghostrap/internal/errs"
)

// Phase names a point in a trapped access at which listeners fire.
type Phase string

const (
	BeforeGet   Phase = "beforeget"
	Get         Phase = "get"
	BeforeSet   Phase = "beforeset"
	Set         Phase = "set"
	Change      Phase = "change"
	BeforeApply Phase = "beforeapply"
	Apply       Phase = "apply"
)

// Phases lists every phase in firing order for a get, a set and a call.
var Phases = []Phase{BeforeGet, Get, BeforeSet, Set, Change, BeforeApply, Apply}

// Transforms reports whether listener results in p are folded into the
// observed value. Before-phases and change only observe.
func (p Phase) Transforms() bool {
	return p == Get || p == Set || p == Apply
}

// ParsePhase parses a phase name case-insensitively.
func ParsePhase(s string) (Phase, bool) {
	p := Phase(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Phases {
		if p == known {
			return p, true
		}
	}
	return "", false
}

// Event is a parsed "phase:key" spec.
type Event struct {
	Phase Phase
	Key   string
}

func (e Event) String() string {
	return string(e.Phase) + ":" + e.Key
}

// ParseEvent parses "phase:key", splitting on the first colon. The phase is
// case-insensitive; the key is taken verbatim and may itself contain colons.
func ParseEvent(spec string) (Event, error) {
	raw, key, ok := strings.Cut(spec, ":")
	if !ok {
		return Event{}, errs.NewInvalidEvent(spec, "missing ':' between phase and key")
	}
	phase, ok := ParsePhase(raw)
	if !ok {
		return Event{}, errs.NewInvalidEvent(spec, "unknown phase "+raw)
	}
	if key == "" {
		return Event{}, errs.NewInvalidEvent(spec, "empty property key")
	}
	return Event{Phase: phase, Key: key}, nil
}
