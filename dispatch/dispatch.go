package dispatch

import "github.com/thierryseegers/event-channel/shape"

// Handler is a bound invocation thunk. By the time a Handler reaches a
// policy it has already closed over its target function, method or receiver;
// invoking it with the event's argument bundle is all that remains. Handlers
// produce no result and never panic: recovery is wired in by the channel
// when the subscription is built.
type Handler func(args []any)

// Event is one immutable published value bundle, tagged with its shape.
// Args holds the values exactly as they were published.
type Event struct {
	Shape shape.Shape
	Args  []any
}

// Batch is the set of events drained from the channel queue in one worker
// iteration, in FIFO publish order.
type Batch []Event

// Table is a read-only view of the active subscription registry, valid for
// the duration of one Dispatch call.
type Table interface {
	// Handlers returns the thunks registered for a shape, in registration
	// order. A shape with no registered handlers returns nil; that is a
	// normal, silent no-op, not an error.
	Handlers(s shape.Shape) []Handler
}

// Policy governs how the handlers for a drained batch are invoked.
//
// A Policy must process every (event, handler) pair in the batch. It may run
// invocations synchronously or merely schedule asynchronous work, but it
// must not return before every invocation is at least scheduled. Ordering
// between pairs is up to the policy except where a concrete policy states
// otherwise.
type Policy interface {
	Dispatch(batch Batch, table Table)
}
