package trap

import (
	"fmt"

	"github.com/roach88/ghostrap/internal/handler"
	"github.com/roach88/ghostrap/internal/object"
)

// setOutcome reports how a set dispatch ended.
type setOutcome int

const (
	outcomeValue setOutcome = iota
	// outcomeTransitioned means the folded value is callable and becomes
	// the call target.
	outcomeTransitioned
)

// enterBypass makes the trap's accessors pass straight through to
// readOp/writeOp until the returned func runs.
func (t *Trap) enterBypass() func() {
	prev := t.bypass
	t.bypass = true
	return func() { t.bypass = prev }
}

func (t *Trap) onGet(this *object.Object, _ []any) (any, error) {
	if t.bypass {
		return t.readOp(this)
	}
	if t.Kind == KindCallable {
		return t.applyFn, nil
	}
	return t.Get(this)
}

func (t *Trap) onSet(this *object.Object, args []any) (any, error) {
	var v any
	if len(args) > 0 {
		v = args[0]
	}
	if t.bypass {
		return nil, t.writeOp(this, v)
	}
	return nil, t.Set(this, v)
}

func (t *Trap) onApply(this *object.Object, args []any) (any, error) {
	return t.Apply(this, args...)
}

// Get runs the get path for a read on this.
// The get fold is handed to the caller and kept in Observed; the underlying
// value is left alone, so every read folds afresh.
func (t *Trap) Get(this *object.Object) (any, error) {
	defer t.enterBypass()()

	pre, err := t.readOp(this)
	if err != nil {
		return nil, err
	}
	if _, err := t.dispatch.Fire(handler.BeforeGet, this, pre, nil); err != nil {
		return nil, err
	}
	v, err := t.readOp(this)
	if err != nil {
		return nil, err
	}
	v, err = t.dispatch.Fire(handler.Get, this, v, nil)
	if err != nil {
		return nil, err
	}
	t.Observed = v
	return v, nil
}

// Set runs the set path for a write of x on this.
//
// A callable result switches the trap to the callable variant bound to it;
// any other result switches it back to the data variant. Either way the
// instrumented accessors stay installed, so later writes are still seen.
func (t *Trap) Set(this *object.Object, x any) error {
	outcome, err := t.set(this, x)
	if err != nil {
		return err
	}
	switch outcome {
	case outcomeTransitioned:
		t.callTarget = t.Value.(*object.Function)
		t.Kind = KindCallable
	case outcomeValue:
		t.callTarget = nil
		t.Kind = KindData
	}
	return nil
}

// set dispatches the write and stores the folded value. It reports
// outcomeTransitioned when that value is callable.
func (t *Trap) set(this *object.Object, x any) (setOutcome, error) {
	defer t.enterBypass()()

	if _, err := t.dispatch.Fire(handler.BeforeSet, this, x, nil); err != nil {
		return outcomeValue, err
	}
	if err := t.writeOp(this, x); err != nil {
		return outcomeValue, err
	}
	v, err := t.readOp(this)
	if err != nil {
		return outcomeValue, err
	}
	v, err = t.dispatch.Fire(handler.Set, this, v, nil)
	if err != nil {
		return outcomeValue, err
	}
	if !object.StrictEqual(v, t.Previous) {
		if _, err := t.dispatch.Fire(handler.Change, this, v, nil); err != nil {
			return outcomeValue, err
		}
	}
	t.Value, t.Previous, t.Observed = v, v, v

	if fn, ok := v.(*object.Function); ok && fn != nil {
		return outcomeTransitioned, nil
	}
	return outcomeValue, nil
}

// Apply runs the apply path for a call on this.
// Re-entrant calls go through the installed dispatch function and are
// observed each time.
func (t *Trap) Apply(this *object.Object, args ...any) (any, error) {
	if _, err := t.dispatch.Fire(handler.BeforeApply, this, nil, args); err != nil {
		return nil, err
	}
	if t.callTarget == nil {
		return nil, fmt.Errorf("call %q: %w", t.Key, object.ErrNotCallable)
	}
	result, err := t.callTarget.Call(this, args...)
	if err != nil {
		return nil, err
	}
	return t.dispatch.Fire(handler.Apply, this, result, args)
}
