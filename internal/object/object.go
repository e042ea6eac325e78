package object

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

var (
	// ErrNotWritable is returned when writing a read-only data property or
	// an accessor property without a setter.
	ErrNotWritable = errors.New("property is not writable")

	// ErrNotConfigurable is returned when redefining or deleting a
	// non-configurable property.
	ErrNotConfigurable = errors.New("property is not configurable")

	// ErrNotCallable is returned when calling a property whose value is not
	// a *Function.
	ErrNotCallable = errors.New("property is not callable")
)

// Descriptor describes one own property.
// A descriptor with Get or Set set is an accessor property; otherwise it is
// a data property and Value/Writable apply.
type Descriptor struct {
	Value        any
	Get          *Function
	Set          *Function
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// IsAccessor reports whether d describes an accessor property.
func (d Descriptor) IsAccessor() bool {
	return d.Get != nil || d.Set != nil
}

// Data returns a writable, enumerable, configurable data descriptor.
// This is the shape a plain assignment creates.
func Data(v any) Descriptor {
	return Descriptor{Value: v, Writable: true, Enumerable: true, Configurable: true}
}

// Object is a live property bag.
type Object struct {
	props map[string]*Descriptor
	keys  []string // insertion order, unique
}

// New creates an empty object.
func New() *Object {
	return &Object{props: make(map[string]*Descriptor)}
}

// FromMap creates an object with one plain data property per entry.
// Keys are inserted in sorted order so construction is deterministic.
func FromMap(m map[string]any) *Object {
	o := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o.put(k, Data(m[k]))
	}
	return o
}

func (o *Object) put(key string, d Descriptor) {
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = &d
}

// Define creates or redefines a property.
// Redefinition keeps the key's position in Keys.
func (o *Object) Define(key string, d Descriptor) error {
	if cur, ok := o.props[key]; ok && !cur.Configurable {
		return fmt.Errorf("define %q: %w", key, ErrNotConfigurable)
	}
	o.put(key, d)
	return nil
}

// Descriptor returns a copy of the live descriptor for key.
func (o *Object) Descriptor(key string) (Descriptor, bool) {
	d, ok := o.props[key]
	if !ok {
		return Descriptor{}, false
	}
	return *d, true
}

// Has reports whether key is an own property.
func (o *Object) Has(key string) bool {
	_, ok := o.props[key]
	return ok
}

// Delete removes key. Deleting a missing key is a no-op.
func (o *Object) Delete(key string) error {
	d, ok := o.props[key]
	if !ok {
		return nil
	}
	if !d.Configurable {
		return fmt.Errorf("delete %q: %w", key, ErrNotConfigurable)
	}
	delete(o.props, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
	return nil
}

// Get reads key. A missing key reads as nil.
func (o *Object) Get(key string) (any, error) {
	d, ok := o.props[key]
	if !ok {
		return nil, nil
	}
	if d.IsAccessor() {
		if d.Get == nil {
			return nil, nil
		}
		return d.Get.Call(o)
	}
	return d.Value, nil
}

// Set writes key. Writing a missing key adds a plain data property.
func (o *Object) Set(key string, v any) error {
	d, ok := o.props[key]
	if !ok {
		o.put(key, Data(v))
		return nil
	}
	if d.IsAccessor() {
		if d.Set == nil {
			return fmt.Errorf("set %q: %w", key, ErrNotWritable)
		}
		_, err := d.Set.Call(o, v)
		return err
	}
	if !d.Writable {
		return fmt.Errorf("set %q: %w", key, ErrNotWritable)
	}
	d.Value = v
	return nil
}

// Call reads key and invokes it with o as the receiver.
func (o *Object) Call(key string, args ...any) (any, error) {
	v, err := o.Get(key)
	if err != nil {
		return nil, err
	}
	fn, ok := v.(*Function)
	if !ok || fn == nil {
		return nil, fmt.Errorf("call %q: %w", key, ErrNotCallable)
	}
	return fn.Call(o, args...)
}

// Keys returns the enumerable own keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		if o.props[k].Enumerable {
			keys = append(keys, k)
		}
	}
	return keys
}

// Len returns the number of own properties, enumerable or not.
func (o *Object) Len() int {
	return len(o.props)
}
