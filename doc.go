// Package ghostrap intercepts reads, writes and calls on single properties
// of live objects.
//
// Attach a handle to an Object and register listeners with "phase:key"
// event specs:
//
//	o := ghostrap.FromMap(map[string]any{"a": 1})
//	h, _ := ghostrap.Attach(o)
//	h.MustOn("get:a", ghostrap.NewListener(func(_ *ghostrap.Object, _ string, v any, _ []any) (any, error) {
//		return v.(int) + 100, nil
//	}))
//	v, _ := o.Get("a") // 101
//
// Phases fire in the order before* -> native operation -> primary -> change:
//
//	beforeget   observe the value about to be read
//	get         transform the value handed to the reader
//	beforeset   observe the proposed value
//	set         transform the value that is stored
//	change      observe a stored value that differs from the previous one
//	beforeapply observe the call arguments
//	apply       transform the call result
//
// Listeners for get, set and apply form a fold: each receives the previous
// listener's result. A listener error aborts the access and is returned to
// the caller of Get, Set or Call.
//
// The first listener registered for a key installs a trap on it. The trap
// stays until Off or Clear restores the original property. Object state is
// kept in a registry keyed by weak pointers, so the registry itself does not
// keep an object alive. Listeners do: a listener closure that captures the
// observed object pins it for as long as it is registered. Use the target
// argument passed to every listener instead, or Clear before dropping the
// object.
//
// Dispatch is synchronous and single-threaded; a Handle and the objects it
// observes must not be used from multiple goroutines at once.
package ghostrap
