// Package handler stores the listeners of trapped properties.
//
// Each trapped key owns a Table: one ordered listener list per Phase.
// Registration order is delivery order. Removing a listener keeps the
// relative order of the survivors, and a list that becomes empty is
// dropped so the phase reads as unregistered.
//
// Fire folds a phase: for get, set and apply each callback receives the
// previous callback's result, so callbacks [c1..cn] turn v into
// cn(...c1(v)). Before-phases and change only observe.
//
// Event specs use the "phase:key" form, for example "get:a" or
// "BeforeApply:run". The phase is case-insensitive and the spec is split on
// the first colon.
package handler
