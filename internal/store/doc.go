// Package store persists trace sessions and events in SQLite.
//
// The log is append-only:
//   - sessions: one row per recorded scenario run
//   - events: one row per recorded listener invocation
//
// All ordering uses the logical seq column, never timestamps, and every
// query orders by seq ASC, id ASC COLLATE BINARY so results are identical
// across runs. Event IDs are content hashes computed by package trace, which
// makes re-writing a trace a no-op.
package store
