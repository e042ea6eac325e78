// Package harness runs scripted property-access scenarios and checks their
// traces.
//
// # Scenario Format
//
// Scenarios are YAML documents validated against an embedded CUE schema:
//
//	name: get_fold
//	description: "get listeners fold the read value"
//	object:
//	  a: 1
//	  f: {function: add}
//	watch: [a]
//	listeners:
//	  - id: plus100
//	    event: get:a
//	    transform: {op: add, arg: 100}
//	steps:
//	  - {op: get, key: a, expect: 101}
//	  - {op: call, key: f, args: [1, 2], expect: 3}
//	  - {op: on, event: get:zz, listener: plus100, error: NO_SUCH_PROPERTY}
//	assertions:
//	  - type: trace_count
//	    event: get:a
//	    count: 1
//
// Step ops are get, set, call, on, once, off, clear, attach, count and keys.
// off without arguments resets the object; with listeners it removes them
// everywhere; with an event it removes that phase's listeners, or only the
// named ones.
//
// # Assertion Types
//
//   - trace_contains: an event for phase:key appears, optionally with a value
//   - trace_order: events appear in the given order
//   - trace_count: an event appears exactly N times
//
// # Deterministic Traces
//
// Each run uses a fresh registry, a testutil.DeterministicClock and a fixed
// session ID, so a scenario always produces byte-identical golden output.
// The recorder's listeners are registered on watched keys before any
// scenario listener, so they see each phase's input value. A full off
// re-registers them; after clear they return with the next attach.
package harness
