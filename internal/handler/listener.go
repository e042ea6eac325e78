package handler

import (
	"github.com/google/uuid"

	"github.com/roach88/ghostrap/internal/object"
)

// Callback observes or transforms one phase of a trapped access.
//
// value is the value flowing through the phase: the pre-read value for
// beforeget, the proposed value for beforeset, the folded value so far for
// get/set/apply, the new value for change, and nil for beforeapply.
// args holds call arguments for the apply phases and is nil otherwise.
//
// The returned value becomes the next callback's input in get, set and
// apply; it is ignored elsewhere. A non-nil error aborts the access and is
// returned to its caller.
type Callback func(target *object.Object, key string, value any, args []any) (any, error)

// Listener gives a Callback an identity so it can be removed later.
type Listener struct {
	id string
	fn Callback
}

// NewListener wraps fn.
func NewListener(fn Callback) *Listener {
	return &Listener{id: uuid.Must(uuid.NewV7()).String(), fn: fn}
}

// Observe wraps a side-effect-only callback; the value passes through
// unchanged.
func Observe(fn func(target *object.Object, key string, value any, args []any)) *Listener {
	return NewListener(func(target *object.Object, key string, value any, args []any) (any, error) {
		fn(target, key, value, args)
		return value, nil
	})
}

// ID returns the listener's UUIDv7.
func (l *Listener) ID() string {
	return l.id
}

func (l *Listener) call(target *object.Object, key string, value any, args []any) (any, error) {
	return l.fn(target, key, value, args)
}
