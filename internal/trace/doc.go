// Package trace records listener invocations as ordered, content-addressed
// events.
//
// A Recorder hands out observing listeners per phase. Each invocation
// becomes an Event stamped with a logical sequence number; values are
// stored as RFC 8785 canonical JSON and the event ID is
// SHA256("ghostrap/event/v1" 0x00 canonical(event)). The same scenario run
// with the same session ID and clock therefore yields byte-identical traces.
package trace
