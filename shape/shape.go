package shape

import (
	"reflect"
	"strings"
)

// Shape identifies an ordered list of argument types. It is the routing key
// of the event channel: an event reaches a handler iff the two were built
// from identical type lists, in the same order. (int) != (int, int) != (float64).
//
// Shape is comparable and safe to use as a map key. The zero value identifies
// nothing and matches no event; an empty argument list is a valid, distinct
// shape.
type Shape struct {
	key   string
	arity int
}

// Of derives the Shape of an argument list from the dynamic types of its
// values. This is the publish-side derivation: Of(42, "a") is the shape
// (int, string) regardless of any static typing at the call site.
//
// An untyped nil argument contributes the identifier "<nil>"; no handler
// shape can be built for it, so such events are routable to no one.
func Of(args ...any) Shape {
	ids := make([]string, len(args))
	for i, a := range args {
		ids[i] = typeID(reflect.TypeOf(a))
	}
	return Shape{key: "(" + strings.Join(ids, ",") + ")", arity: len(args)}
}

// For builds a Shape from an explicit ordered list of types. This is the
// subscribe-side derivation used by the typed subscription constructors.
func For(types ...reflect.Type) Shape {
	ids := make([]string, len(types))
	for i, t := range types {
		ids[i] = typeID(t)
	}
	return Shape{key: "(" + strings.Join(ids, ",") + ")", arity: len(types)}
}

// String returns the shape's encoded type list, e.g. "(int,string)".
func (s Shape) String() string {
	return s.key
}

// Arity returns the number of argument types in the shape.
func (s Shape) Arity() int {
	return s.arity
}

// IsZero reports whether s is the zero Shape, as opposed to the shape of an
// empty argument list.
func (s Shape) IsZero() bool {
	return s.key == ""
}

// typeID returns a stable identifier for a type. Named types are qualified
// by their full package path so same-named types from different packages do
// not collide. Unnamed types (builtins, pointers, slices, maps) fall back to
// reflect's rendering.
func typeID(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if pp := t.PkgPath(); pp != "" {
		return pp + "." + t.Name()
	}
	return t.String()
}
