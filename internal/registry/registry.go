package registry

import (
	"runtime"
	"sync"
	"weak"

	"github.com/roach88/ghostrap/internal/errs"
	"github.com/roach88/ghostrap/internal/object"
)

type entry struct {
	state   *State
	cleanup runtime.Cleanup
}

// Registry associates observed objects with their State.
//
// Entries are keyed by weak pointers and an entry disappears once its object
// is collected. The key never keeps an object alive; a State whose listeners
// capture the object does.
//
// Thread-safety: the map is guarded because GC cleanups run on their own
// goroutine. The States themselves are not safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries map[weak.Pointer[object.Object]]*entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[weak.Pointer[object.Object]]*entry)}
}

// Default returns the process-wide registry.
var Default = sync.OnceValue(New)

// GetOrCreate returns the state for target, creating an empty one on first
// use. target itself is not modified.
func (r *Registry) GetOrCreate(target *object.Object) (*State, error) {
	if target == nil {
		return nil, errs.NewInvalidTarget("target is nil")
	}
	wp := weak.Make(target)

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[wp]; ok {
		return e.state, nil
	}
	e := &entry{state: newState(wp)}
	e.cleanup = runtime.AddCleanup(target, r.collected, wp)
	r.entries[wp] = e
	return e.state, nil
}

// Lookup returns the state for target, if registered.
func (r *Registry) Lookup(target *object.Object) (*State, bool) {
	if target == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[weak.Make(target)]
	if !ok {
		return nil, false
	}
	return e.state, true
}

// Remove drops the association for target. Traps are not restored; callers
// reset the state first. Removing an unregistered target is a no-op.
func (r *Registry) Remove(target *object.Object) {
	if target == nil {
		return
	}
	wp := weak.Make(target)

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[wp]
	if !ok {
		return
	}
	e.cleanup.Stop()
	delete(r.entries, wp)
}

// Len returns the number of registered objects.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// collected runs after the object behind wp has been reclaimed.
func (r *Registry) collected(wp weak.Pointer[object.Object]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, wp)
}
