package handler

import (
	"slices"
	"sort"

	"github.com/roach88/ghostrap/internal/object"
)

type entry struct {
	l       *Listener
	once    bool
	removed bool
}

// Table holds the ordered listener lists of one trapped key.
type Table struct {
	key    string
	phases map[Phase][]*entry
}

func newTable(key string) *Table {
	return &Table{key: key, phases: make(map[Phase][]*entry)}
}

// Key returns the property key the table belongs to.
func (t *Table) Key() string {
	return t.key
}

// Add appends l to the list for p.
func (t *Table) Add(p Phase, l *Listener) {
	t.phases[p] = append(t.phases[p], &entry{l: l})
}

// AddOnce appends l to the list for p. The entry deregisters itself before
// its first invocation runs, so it fires exactly once even if the callback
// re-triggers the same phase or fails.
func (t *Table) AddOnce(p Phase, l *Listener) {
	t.phases[p] = append(t.phases[p], &entry{l: l, once: true})
}

// Remove drops every entry for ls from p. With no listeners the whole list
// for p is dropped. Survivors keep their relative order.
func (t *Table) Remove(p Phase, ls ...*Listener) {
	list, ok := t.phases[p]
	if !ok {
		return
	}
	if len(ls) == 0 {
		for _, e := range list {
			e.removed = true
		}
		delete(t.phases, p)
		return
	}
	t.filter(p, func(e *entry) bool { return slices.Contains(ls, e.l) })
}

func (t *Table) removeEntry(p Phase, target *entry) {
	t.filter(p, func(e *entry) bool { return e == target })
}

// filter drops entries of p matching drop, marking them so an in-flight
// Fire skips them.
func (t *Table) filter(p Phase, drop func(*entry) bool) {
	list := t.phases[p]
	kept := make([]*entry, 0, len(list))
	for _, e := range list {
		if drop(e) {
			e.removed = true
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		delete(t.phases, p)
		return
	}
	t.phases[p] = kept
}

// Listeners returns the listeners registered for p in delivery order.
func (t *Table) Listeners(p Phase) []*Listener {
	list := t.phases[p]
	out := make([]*Listener, len(list))
	for i, e := range list {
		out[i] = e.l
	}
	return out
}

// Empty reports whether no phase has listeners.
func (t *Table) Empty() bool {
	return len(t.phases) == 0
}

// Fire runs the listeners of p in registration order.
//
// For get, set and apply each callback's result is the next callback's
// input and the last result is returned. Other phases return value as given.
// Listeners removed while Fire is running are skipped; listeners added while
// it runs wait for the next access.
func (t *Table) Fire(p Phase, target *object.Object, value any, args []any) (any, error) {
	list := t.phases[p]
	if len(list) == 0 {
		return value, nil
	}
	snapshot := slices.Clone(list)
	for _, e := range snapshot {
		if e.removed {
			continue
		}
		if e.once {
			t.removeEntry(p, e)
		}
		out, err := e.l.call(target, t.key, value, args)
		if err != nil {
			return value, err
		}
		if p.Transforms() {
			value = out
		}
	}
	return value, nil
}

// Store maps trapped keys to their tables.
type Store struct {
	tables map[string]*Table
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{tables: make(map[string]*Table)}
}

// Table returns the table for key, creating it on first use.
func (s *Store) Table(key string) *Table {
	t, ok := s.tables[key]
	if !ok {
		t = newTable(key)
		s.tables[key] = t
	}
	return t
}

// Lookup returns the table for key without creating it.
func (s *Store) Lookup(key string) (*Table, bool) {
	t, ok := s.tables[key]
	return t, ok
}

// RemoveListeners drops ls from every phase of every key.
// Calling it without listeners does nothing.
func (s *Store) RemoveListeners(ls ...*Listener) {
	if len(ls) == 0 {
		return
	}
	for _, t := range s.tables {
		for p := range t.phases {
			t.Remove(p, ls...)
		}
	}
}

// Clear drops every table. Traps are not touched.
func (s *Store) Clear() {
	for _, t := range s.tables {
		for p := range t.phases {
			t.Remove(p)
		}
	}
	clear(s.tables)
}

// Keys returns the keys that have a table, sorted.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.tables))
	for k := range s.tables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
