package object

import "fmt"

// Native is the Go implementation behind a Function.
// this is the object the function was invoked on (nil for a detached call).
type Native func(this *Object, args []any) (any, error)

// Function is the callable value type of the object model.
type Function struct {
	name string
	fn   Native
}

// NewFunction wraps fn as a callable value.
func NewFunction(name string, fn Native) *Function {
	return &Function{name: name, fn: fn}
}

// Name returns the name the function was created with.
func (f *Function) Name() string {
	return f.name
}

// Call invokes the function with the given receiver.
func (f *Function) Call(this *Object, args ...any) (any, error) {
	if f == nil || f.fn == nil {
		return nil, fmt.Errorf("%w: nil function", ErrNotCallable)
	}
	return f.fn(this, args)
}

func (f *Function) String() string {
	if f.name == "" {
		return "function"
	}
	return "function " + f.name
}

// IsCallable reports whether v is a non-nil *Function.
func IsCallable(v any) bool {
	f, ok := v.(*Function)
	return ok && f != nil
}
