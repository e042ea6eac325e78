// Package trap instruments a single property of a live object.
//
// Install swaps the property's descriptor for an instrumented one. A value
// property gets a getter/setter pair that runs the get and set paths; a
// method gets an apply dispatch function. Writing a callable value into a
// value trap switches it to the callable variant: reads return the apply
// dispatch function while writes still run the set path, and writing a
// non-callable value switches it back.
//
// While a get or set dispatch runs, the trap's own accessors pass straight
// through to the native read and write, so listeners may read and write the
// trapped key without re-entering dispatch. Calls are never bypassed.
//
// Restore puts the original descriptor back.
package trap
