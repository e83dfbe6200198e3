package eventchannel

import (
	"reflect"
	"runtime/debug"
	"weak"

	"go.uber.org/zap"

	"github.com/thierryseegers/event-channel/dispatch"
	"github.com/thierryseegers/event-channel/shape"
)

// Tag is the unique identifier of one subscription, used for targeted
// unsubscription.
//
// Tags for function and method subscriptions are deterministic: the same
// function, or the same (receiver, method) pair, always derives the same
// tag, so re-subscribing an identical pair overwrites the earlier
// subscription instead of duplicating it. Tags for opaque callables come
// from a per-channel counter and are returned to the caller; they are the
// only way to address such a subscription later.
type Tag uint64

// funcTag derives a deterministic tag from a function value's code pointer.
// Distinct closures of one function literal share a code pointer and
// therefore a tag; use SubscribeHandler for ad-hoc callables that need
// independent identities.
func funcTag(f any) Tag {
	return Tag(reflect.ValueOf(f).Pointer())
}

// methodTag combines receiver identity and method identity.
func methodTag(recv, m any) Tag {
	return Tag(reflect.ValueOf(recv).Pointer()) + Tag(reflect.ValueOf(m).Pointer())*37
}

func typeOf[A any]() reflect.Type {
	return reflect.TypeOf((*A)(nil)).Elem()
}

// wrap turns a bound invocation into a dispatch.Handler with panic recovery.
// A faulting handler is isolated: the fault is counted, logged and reported
// to the configured PanicHandler, and the dispatcher worker lives on.
func (c *Channel) wrap(s shape.Shape, invoke func(args []any)) dispatch.Handler {
	return func(args []any) {
		defer func() {
			if r := recover(); r != nil {
				c.panics.Add(1)
				stack := debug.Stack()
				c.log.Error("handler panic",
					zap.Stringer("shape", s),
					zap.Any("panic", r),
					zap.ByteString("stack", stack))
				if c.panicHandler != nil {
					func() {
						defer func() { _ = recover() }()
						c.panicHandler(s, args, r, stack)
					}()
				}
			}
		}()

		c.invoked.Add(1)
		invoke(args)
	}
}

// ----------------------------------------------------------------------------
// Free functions
// ----------------------------------------------------------------------------

// Subscribe registers a function as a handler for events of shape (A).
// The returned tag is deterministic (see Tag); subscribing the same function
// again overwrites the earlier subscription.
//
// Subscribe never blocks on a dispatch in progress. The subscription becomes
// visible to dispatch no earlier than the next batch. A nil function panics.
func Subscribe[A any](c *Channel, f func(A)) Tag {
	if f == nil {
		panic("eventchannel: nil handler")
	}
	s := shape.For(typeOf[A]())
	tag := funcTag(f)
	c.reg.subscribe(s, tag, c.wrap(s, func(args []any) {
		f(args[0].(A))
	}))
	return tag
}

// Subscribe0 registers a function for events published with no arguments.
func Subscribe0(c *Channel, f func()) Tag {
	if f == nil {
		panic("eventchannel: nil handler")
	}
	s := shape.For()
	tag := funcTag(f)
	c.reg.subscribe(s, tag, c.wrap(s, func([]any) {
		f()
	}))
	return tag
}

// Subscribe2 registers a function for events of shape (A, B).
func Subscribe2[A, B any](c *Channel, f func(A, B)) Tag {
	if f == nil {
		panic("eventchannel: nil handler")
	}
	s := shape.For(typeOf[A](), typeOf[B]())
	tag := funcTag(f)
	c.reg.subscribe(s, tag, c.wrap(s, func(args []any) {
		f(args[0].(A), args[1].(B))
	}))
	return tag
}

// Subscribe3 registers a function for events of shape (A, B, C).
func Subscribe3[A, B, C any](c *Channel, f func(A, B, C)) Tag {
	if f == nil {
		panic("eventchannel: nil handler")
	}
	s := shape.For(typeOf[A](), typeOf[B](), typeOf[C]())
	tag := funcTag(f)
	c.reg.subscribe(s, tag, c.wrap(s, func(args []any) {
		f(args[0].(A), args[1].(B), args[2].(C))
	}))
	return tag
}

// Unsubscribe removes a function subscription made with Subscribe.
// Unsubscribing a function that is not subscribed is a no-op.
//
// Unlike Subscribe, every unsubscribe operation shares a lock with the
// dispatch cycle and can be delayed behind an in-flight batch. For the same
// reason, unsubscribing from inside a handler deadlocks; subscribing from a
// handler is fine.
func Unsubscribe[A any](c *Channel, f func(A)) {
	c.reg.unsubscribe(shape.For(typeOf[A]()), funcTag(f))
}

// Unsubscribe0 removes a subscription made with Subscribe0.
func Unsubscribe0(c *Channel, f func()) {
	c.reg.unsubscribe(shape.For(), funcTag(f))
}

// Unsubscribe2 removes a subscription made with Subscribe2.
func Unsubscribe2[A, B any](c *Channel, f func(A, B)) {
	c.reg.unsubscribe(shape.For(typeOf[A](), typeOf[B]()), funcTag(f))
}

// Unsubscribe3 removes a subscription made with Subscribe3.
func Unsubscribe3[A, B, C any](c *Channel, f func(A, B, C)) {
	c.reg.unsubscribe(shape.For(typeOf[A](), typeOf[B](), typeOf[C]()), funcTag(f))
}

// ----------------------------------------------------------------------------
// Bound methods, strong binding
// ----------------------------------------------------------------------------

// SubscribeMethod registers a (receiver, method) pair as a handler for
// events of shape (A), with the receiver held strongly: the caller
// guarantees the receiver outlives the subscription. The method is passed as
// a method expression:
//
//	eventchannel.SubscribeMethod(c, w, (*widget).printInt)
//
// The tag combines receiver identity and method identity, so the same pair
// re-subscribed overwrites rather than duplicates, and two receivers of one
// type subscribe independently. A nil receiver or method panics.
func SubscribeMethod[T, A any](c *Channel, recv *T, m func(*T, A)) Tag {
	if recv == nil {
		panic("eventchannel: nil receiver")
	}
	if m == nil {
		panic("eventchannel: nil handler")
	}
	s := shape.For(typeOf[A]())
	tag := methodTag(recv, m)
	c.reg.subscribe(s, tag, c.wrap(s, func(args []any) {
		m(recv, args[0].(A))
	}))
	return tag
}

// SubscribeMethod0 registers a (receiver, method) pair for zero-argument events.
func SubscribeMethod0[T any](c *Channel, recv *T, m func(*T)) Tag {
	if recv == nil {
		panic("eventchannel: nil receiver")
	}
	if m == nil {
		panic("eventchannel: nil handler")
	}
	s := shape.For()
	tag := methodTag(recv, m)
	c.reg.subscribe(s, tag, c.wrap(s, func([]any) {
		m(recv)
	}))
	return tag
}

// SubscribeMethod2 registers a (receiver, method) pair for events of shape (A, B).
func SubscribeMethod2[T, A, B any](c *Channel, recv *T, m func(*T, A, B)) Tag {
	if recv == nil {
		panic("eventchannel: nil receiver")
	}
	if m == nil {
		panic("eventchannel: nil handler")
	}
	s := shape.For(typeOf[A](), typeOf[B]())
	tag := methodTag(recv, m)
	c.reg.subscribe(s, tag, c.wrap(s, func(args []any) {
		m(recv, args[0].(A), args[1].(B))
	}))
	return tag
}

// SubscribeMethod3 registers a (receiver, method) pair for events of shape (A, B, C).
func SubscribeMethod3[T, A, B, C any](c *Channel, recv *T, m func(*T, A, B, C)) Tag {
	if recv == nil {
		panic("eventchannel: nil receiver")
	}
	if m == nil {
		panic("eventchannel: nil handler")
	}
	s := shape.For(typeOf[A](), typeOf[B](), typeOf[C]())
	tag := methodTag(recv, m)
	c.reg.subscribe(s, tag, c.wrap(s, func(args []any) {
		m(recv, args[0].(A), args[1].(B), args[2].(C))
	}))
	return tag
}

// UnsubscribeMethod removes a (receiver, method) subscription made with
// SubscribeMethod or SubscribeWeak; the two share a tag scheme, so either
// binding is detached by the same call. A pair that is not subscribed is a
// no-op.
func UnsubscribeMethod[T, A any](c *Channel, recv *T, m func(*T, A)) {
	c.reg.unsubscribe(shape.For(typeOf[A]()), methodTag(recv, m))
}

// UnsubscribeMethod0 removes a subscription made with SubscribeMethod0 or
// SubscribeWeak0.
func UnsubscribeMethod0[T any](c *Channel, recv *T, m func(*T)) {
	c.reg.unsubscribe(shape.For(), methodTag(recv, m))
}

// UnsubscribeMethod2 removes a subscription made with SubscribeMethod2 or
// SubscribeWeak2.
func UnsubscribeMethod2[T, A, B any](c *Channel, recv *T, m func(*T, A, B)) {
	c.reg.unsubscribe(shape.For(typeOf[A](), typeOf[B]()), methodTag(recv, m))
}

// UnsubscribeMethod3 removes a subscription made with SubscribeMethod3 or
// SubscribeWeak3.
func UnsubscribeMethod3[T, A, B, C any](c *Channel, recv *T, m func(*T, A, B, C)) {
	c.reg.unsubscribe(shape.For(typeOf[A](), typeOf[B](), typeOf[C]()), methodTag(recv, m))
}

// ----------------------------------------------------------------------------
// Bound methods, weak binding
// ----------------------------------------------------------------------------

// SubscribeWeak registers a (receiver, method) pair like SubscribeMethod,
// but holds the receiver weakly: the channel may outlive the receiver. The
// weak reference is resolved at invocation time; once the receiver has been
// collected the handler is silently skipped, never an error. Skips are
// counted in Stats.TargetsExpired.
//
// The subscription itself is not removed when the receiver dies; use
// UnsubscribeMethod (by pair) or Channel.Unsubscribe (by tag) to drop it.
func SubscribeWeak[T, A any](c *Channel, recv *T, m func(*T, A)) Tag {
	if recv == nil {
		panic("eventchannel: nil receiver")
	}
	if m == nil {
		panic("eventchannel: nil handler")
	}
	s := shape.For(typeOf[A]())
	tag := methodTag(recv, m)
	w := weak.Make(recv)
	c.reg.subscribe(s, tag, c.wrap(s, func(args []any) {
		p := w.Value()
		if p == nil {
			c.expired.Add(1)
			return
		}
		m(p, args[0].(A))
	}))
	return tag
}

// SubscribeWeak0 registers a weakly held (receiver, method) pair for
// zero-argument events.
func SubscribeWeak0[T any](c *Channel, recv *T, m func(*T)) Tag {
	if recv == nil {
		panic("eventchannel: nil receiver")
	}
	if m == nil {
		panic("eventchannel: nil handler")
	}
	s := shape.For()
	tag := methodTag(recv, m)
	w := weak.Make(recv)
	c.reg.subscribe(s, tag, c.wrap(s, func([]any) {
		p := w.Value()
		if p == nil {
			c.expired.Add(1)
			return
		}
		m(p)
	}))
	return tag
}

// SubscribeWeak2 registers a weakly held (receiver, method) pair for events
// of shape (A, B).
func SubscribeWeak2[T, A, B any](c *Channel, recv *T, m func(*T, A, B)) Tag {
	if recv == nil {
		panic("eventchannel: nil receiver")
	}
	if m == nil {
		panic("eventchannel: nil handler")
	}
	s := shape.For(typeOf[A](), typeOf[B]())
	tag := methodTag(recv, m)
	w := weak.Make(recv)
	c.reg.subscribe(s, tag, c.wrap(s, func(args []any) {
		p := w.Value()
		if p == nil {
			c.expired.Add(1)
			return
		}
		m(p, args[0].(A), args[1].(B))
	}))
	return tag
}

// SubscribeWeak3 registers a weakly held (receiver, method) pair for events
// of shape (A, B, C).
func SubscribeWeak3[T, A, B, C any](c *Channel, recv *T, m func(*T, A, B, C)) Tag {
	if recv == nil {
		panic("eventchannel: nil receiver")
	}
	if m == nil {
		panic("eventchannel: nil handler")
	}
	s := shape.For(typeOf[A](), typeOf[B](), typeOf[C]())
	tag := methodTag(recv, m)
	w := weak.Make(recv)
	c.reg.subscribe(s, tag, c.wrap(s, func(args []any) {
		p := w.Value()
		if p == nil {
			c.expired.Add(1)
			return
		}
		m(p, args[0].(A), args[1].(B), args[2].(C))
	}))
	return tag
}

// ----------------------------------------------------------------------------
// Opaque callables
// ----------------------------------------------------------------------------

// SubscribeHandler registers an opaque callable for events of an explicitly
// stated shape. The callable receives the raw argument bundle and is
// responsible for its own assertions. Each call allocates a fresh counter
// tag, returned to the caller; it is the only handle on the subscription.
//
// This is the escape hatch for closures (which share code pointers and so
// cannot get deterministic tags) and for arities beyond the typed
// constructors. A nil handler or zero shape panics.
func (c *Channel) SubscribeHandler(s shape.Shape, h func(args []any)) Tag {
	if h == nil {
		panic("eventchannel: nil handler")
	}
	if s.IsZero() {
		panic("eventchannel: zero shape")
	}
	tag := Tag(c.tagger.Add(1))
	c.reg.subscribe(s, tag, c.wrap(s, h))
	return tag
}

// Unsubscribe removes the subscription identified by tag from every shape
// in both registry partitions; the shape need not be known. Unknown tags
// are a no-op. Like the other unsubscribe operations, it can be delayed
// behind an in-flight dispatch cycle and must not be called from inside a
// handler.
func (c *Channel) Unsubscribe(tag Tag) {
	c.reg.unsubscribeAll(tag)
}
