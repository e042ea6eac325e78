package trap

import (
	"fmt"

	"github.com/roach88/ghostrap/internal/errs"
	"github.com/roach88/ghostrap/internal/handler"
	"github.com/roach88/ghostrap/internal/object"
)

// Kind tags what a trap currently instruments.
type Kind int

const (
	// KindData traps a value property through an instrumented getter/setter.
	KindData Kind = iota

	// KindCallable traps a method through an apply dispatch function.
	KindCallable
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindCallable:
		return "callable"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Dispatcher fires the listeners of one key. *handler.Table satisfies it.
type Dispatcher interface {
	Fire(p handler.Phase, target *object.Object, value any, args []any) (any, error)
}

// Trap instruments one property of one object.
//
// A Trap never holds its object: every dispatch receives the receiver it was
// invoked on, so an object reachable only through its own traps can still be
// collected.
type Trap struct {
	// Key is the trapped property key.
	Key string

	// Kind is the current variant.
	Kind Kind

	// Value is the underlying value as last written through the trap.
	Value any

	// Previous is the value the next set is compared against for change.
	Previous any

	// Observed is the last folded value handed to a caller.
	Observed any

	// Original is the value the property held at install time.
	Original any

	// OriginalDescriptor is the descriptor the property had at install time.
	OriginalDescriptor object.Descriptor

	// Trapped reports whether the instrumented descriptor is live.
	Trapped bool

	dispatch   Dispatcher
	callTarget *object.Function
	bypass     bool

	getter  *object.Function
	setter  *object.Function
	applyFn *object.Function
}

// Install traps key on target. Listeners are looked up through d on every
// access, so registrations made after Install are seen.
//
// Installation is all-or-nothing: on error target is unchanged.
func Install(target *object.Object, key string, d Dispatcher) (*Trap, error) {
	if target == nil {
		return nil, errs.NewInvalidTarget("trap target is nil")
	}
	desc, ok := target.Descriptor(key)
	if !ok {
		return nil, errs.NewNoSuchProperty(key)
	}
	if !desc.Configurable {
		return nil, errs.NewHandlerInstallation(key, fmt.Errorf("define %q: %w", key, object.ErrNotConfigurable))
	}

	original, err := target.Get(key)
	if err != nil {
		return nil, errs.NewHandlerInstallation(key, err)
	}

	t := &Trap{
		Key:                key,
		Value:              original,
		Previous:           original,
		Original:           original,
		OriginalDescriptor: desc,
		dispatch:           d,
	}
	t.getter = object.NewFunction("get "+key, t.onGet)
	t.setter = object.NewFunction("set "+key, t.onSet)
	t.applyFn = object.NewFunction(key, t.onApply)

	if fn, ok := original.(*object.Function); ok && fn != nil {
		t.Kind = KindCallable
		t.callTarget = fn
		err = target.Define(key, object.Descriptor{
			Value:        t.applyFn,
			Writable:     desc.Writable || desc.Set != nil,
			Enumerable:   desc.Enumerable,
			Configurable: true,
		})
	} else {
		err = target.Define(key, object.Descriptor{
			Get:          t.getter,
			Set:          t.setter,
			Enumerable:   desc.Enumerable,
			Configurable: true,
		})
	}
	if err != nil {
		return nil, errs.NewHandlerInstallation(key, err)
	}

	t.Trapped = true
	return t, nil
}

// Restore puts the original descriptor back on target.
//
// A method comes back as it was. A value property gets its original
// descriptor, and the latest underlying value is re-applied when it differs
// from the original and is not callable.
func (t *Trap) Restore(target *object.Object) error {
	if !t.Trapped {
		return nil
	}
	if target == nil {
		return errs.NewInvalidTarget("trap target is nil")
	}

	desc := t.OriginalDescriptor
	reapply := !object.IsCallable(t.Original) &&
		!object.IsCallable(t.Value) &&
		!object.StrictEqual(t.Value, t.Original)
	if reapply && !desc.IsAccessor() {
		desc.Value = t.Value
	}
	if err := target.Define(t.Key, desc); err != nil {
		return fmt.Errorf("restore %q: %w", t.Key, err)
	}
	t.Trapped = false

	if reapply && desc.IsAccessor() && desc.Set != nil {
		if _, err := desc.Set.Call(target, t.Value); err != nil {
			return fmt.Errorf("restore %q: %w", t.Key, err)
		}
	}
	return nil
}

// readOp is the native read: the original getter, or the trap's own slot.
func (t *Trap) readOp(this *object.Object) (any, error) {
	if t.OriginalDescriptor.IsAccessor() {
		if t.OriginalDescriptor.Get == nil {
			return nil, nil
		}
		return t.OriginalDescriptor.Get.Call(this)
	}
	return t.Value, nil
}

// writeOp is the native write: the original setter, or the trap's own slot.
func (t *Trap) writeOp(this *object.Object, v any) error {
	if t.OriginalDescriptor.IsAccessor() {
		if t.OriginalDescriptor.Set == nil {
			return fmt.Errorf("set %q: %w", t.Key, object.ErrNotWritable)
		}
		_, err := t.OriginalDescriptor.Set.Call(this, v)
		return err
	}
	t.Value = v
	return nil
}
