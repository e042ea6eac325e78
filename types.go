package ghostrap

import (
	"github.com/roach88/ghostrap/internal/errs"
	"github.com/roach88/ghostrap/internal/handler"
	"github.com/roach88/ghostrap/internal/object"
	"github.com/roach88/ghostrap/internal/registry"
)

type (
	// Object is a live property bag whose properties can be trapped.
	Object = object.Object

	// Function is the callable value type of Object properties.
	Function = object.Function

	// Native is the Go body of a Function.
	Native = object.Native

	// Descriptor describes one property of an Object.
	Descriptor = object.Descriptor

	// Listener is a registered callback with an identity.
	Listener = handler.Listener

	// Callback observes or transforms one phase of a trapped access.
	Callback = handler.Callback

	// Phase names a point in a trapped access.
	Phase = handler.Phase

	// Registry maps observed objects to their state.
	Registry = registry.Registry

	// Error is the structured error returned by this package.
	Error = errs.Error

	// Code categorizes an Error.
	Code = errs.Code
)

const (
	BeforeGet   = handler.BeforeGet
	Get         = handler.Get
	BeforeSet   = handler.BeforeSet
	Set         = handler.Set
	Change      = handler.Change
	BeforeApply = handler.BeforeApply
	Apply       = handler.Apply
)

const (
	CodeInvalidTarget       = errs.CodeInvalidTarget
	CodeNoSuchProperty      = errs.CodeNoSuchProperty
	CodeHandlerInstallation = errs.CodeHandlerInstallation
	CodeInvalidEvent        = errs.CodeInvalidEvent
)

var (
	// ErrNotWritable, ErrNotConfigurable and ErrNotCallable are returned by
	// Object operations, wrapped with the property key.
	ErrNotWritable     = object.ErrNotWritable
	ErrNotConfigurable = object.ErrNotConfigurable
	ErrNotCallable     = object.ErrNotCallable
)

// NewObject creates an empty object.
func NewObject() *Object { return object.New() }

// FromMap creates an object with one data property per entry, in key order.
func FromMap(m map[string]any) *Object { return object.FromMap(m) }

// NewFunction wraps fn as a callable property value.
func NewFunction(name string, fn Native) *Function { return object.NewFunction(name, fn) }

// NewListener wraps fn as a listener.
func NewListener(fn Callback) *Listener { return handler.NewListener(fn) }

// Observe wraps a side-effect-only callback; the value passes through.
func Observe(fn func(target *Object, key string, value any, args []any)) *Listener {
	return handler.Observe(fn)
}

// NewRegistry creates a registry separate from the process-wide one.
func NewRegistry() *Registry { return registry.New() }

// StrictEqual reports whether a and b have the same type and value.
func StrictEqual(a, b any) bool { return object.StrictEqual(a, b) }

// IsInvalidTarget reports whether err is an INVALID_TARGET error.
func IsInvalidTarget(err error) bool { return errs.IsInvalidTarget(err) }

// IsNoSuchProperty reports whether err is a NO_SUCH_PROPERTY error.
func IsNoSuchProperty(err error) bool { return errs.IsNoSuchProperty(err) }

// IsHandlerInstallation reports whether err is a HANDLER_INSTALLATION error.
func IsHandlerInstallation(err error) bool { return errs.IsHandlerInstallation(err) }

// IsInvalidEvent reports whether err is an INVALID_EVENT error.
func IsInvalidEvent(err error) bool { return errs.IsInvalidEvent(err) }
