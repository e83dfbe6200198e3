package eventchannel

import "github.com/thierryseegers/event-channel/shape"

// Stats is a snapshot of a channel's counters. Counters are cumulative over
// the channel's lifetime and updated with atomics; a snapshot taken while
// the channel is busy may be slightly inconsistent between fields.
type Stats struct {
	// EventsPublished is the number of events accepted into the queue,
	// including events queued while idle under KeepEvents.
	EventsPublished uint64

	// EventsDropped is the number of events discarded while idle under
	// DropEvents, whether published while stopped or cleared by Stop.
	EventsDropped uint64

	// EventsDispatched is the number of events drained and handed to the
	// dispatch policy.
	EventsDispatched uint64

	// HandlersInvoked is the number of handler invocation attempts,
	// including those that panicked or found an expired weak receiver.
	HandlersInvoked uint64

	// HandlerPanics is the number of handler invocations that panicked and
	// were recovered.
	HandlerPanics uint64

	// TargetsExpired is the number of invocations skipped because a weakly
	// held receiver had been collected.
	TargetsExpired uint64

	// QueueDepth is the number of events currently queued.
	QueueDepth int
}

// PanicHandler is called after a handler panic has been recovered. It
// receives the shape and arguments of the event being dispatched, the
// recovered value and the stack at the point of panic. A PanicHandler that
// itself panics is silently contained.
type PanicHandler func(s shape.Shape, args []any, recovered any, stack []byte)
