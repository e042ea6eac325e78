// Package registry keeps the side table from observed objects to their
// observation State.
//
// An object is never modified to hold its own state: the registry maps it
// by identity through a weak pointer and drops the entry once the object is
// garbage collected. The State is held strongly, so anything it reaches,
// including listener closures, must not reference the object or the object
// is never collected.
package registry
