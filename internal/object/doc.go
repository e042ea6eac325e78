// Package object provides the live object model that ghostrap instruments.
//
// An Object is an insertion-ordered bag of own properties. Each property is
// described by a Descriptor, either a data property (Value, Writable) or an
// accessor property (Get, Set). Both kinds carry Enumerable and Configurable
// flags. All reads, writes and calls on an Object resolve through the live
// descriptor, so replacing a descriptor changes how the property behaves
// without the caller noticing.
//
// Callable values are *Function. Function identity is pointer identity,
// which is what StrictEqual and the handler store rely on.
//
// Objects are not safe for concurrent use.
package object
