// Package shape defines the routing key of the event channel.
//
// A Shape is the identity of an ordered list of argument types. Events and
// handlers that share a shape are connected; everything else never meets.
// Both the order and the types matter:
//
//	shape.Of(1)        // (int)
//	shape.Of(1, 2)     // (int,int)
//	shape.Of(1.0)      // (float64)
//
// are three distinct shapes.
//
// Shapes are derived in two places. The publish side uses Of, reading the
// dynamic types of the values being sent. The subscribe side uses For (via
// the typed constructors in the root package), reading the static types of a
// handler's parameters. The two derivations agree for concrete types; a
// handler parameter declared as an interface type will never match, because
// published values always carry their concrete type.
package shape
