package eventchannel

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thierryseegers/event-channel/dispatch"
	"github.com/thierryseegers/event-channel/shape"
)

// Channel is a type-routed publish/subscribe event channel. Publishers send
// plain values; subscribers register plain functions, bound methods or
// opaque callables; a dedicated background worker routes each event to every
// handler whose shape matches.
//
// A Channel is safe for concurrent use. Publish and the subscribe
// constructors take only short-held locks and never wait on a dispatch in
// progress; the unsubscribe operations share a lock with the dispatch cycle
// and can be delayed behind it (a known limitation, not a deadlock).
type Channel struct {
	policy dispatch.Policy
	idle   IdlePolicy
	log    *zap.Logger

	panicHandler PanicHandler

	// mu guards the queue and the run state; cond wakes the worker when an
	// event arrives or the channel is told to stop.
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []dispatch.Event
	running bool
	done    chan struct{}

	reg *registry

	// tagger hands out subscription tags for opaque callables, which have no
	// identity of their own to derive a tag from.
	tagger atomic.Uint64

	published  atomic.Uint64
	dropped    atomic.Uint64
	dispatched atomic.Uint64
	invoked    atomic.Uint64
	panics     atomic.Uint64
	expired    atomic.Uint64
}

// New creates a Channel. The channel is returned running, with its worker
// started, unless the WithStopped option is given.
func New(opts ...Option) *Channel {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	c := &Channel{
		policy:       config.policy,
		idle:         config.idle,
		log:          config.logger.With(zap.String("channel", uuid.NewString())),
		panicHandler: config.panicHandler,
		reg:          newRegistry(),
	}
	c.cond = sync.NewCond(&c.mu)

	if !config.stopped {
		c.Start()
	}
	return c
}

// Start launches the dispatcher worker. It is a no-op when the channel is
// already running.
func (c *Channel) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}
	c.running = true
	c.done = make(chan struct{})
	go c.run(c.done)

	c.log.Debug("channel started")
}

// Stop halts the dispatcher worker after the in-flight batch, if any,
// finishes dispatching; there is no hard timeout. Under the DropEvents idle
// policy the queue is cleared first, so nothing queued survives the stop.
//
// Stop is idempotent: repeated calls, or a call on a channel built with
// WithStopped that never ran, return immediately.
func (c *Channel) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	if c.idle == DropEvents {
		c.dropped.Add(uint64(len(c.queue)))
		c.queue = nil
	}
	c.running = false
	done := c.done
	c.cond.Signal()
	c.mu.Unlock()

	<-done
	c.log.Debug("channel stopped")
}

// IsRunning reports whether the dispatcher worker is active.
func (c *Channel) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Publish sends an event built from the dynamic types of args. When the
// channel is running, or idle under the KeepEvents policy, the event is
// queued and the worker woken; when idle under DropEvents it is discarded
// immediately. Publish never blocks beyond queue-lock acquisition.
//
// An event whose shape has no registered handlers is dispatched to no one;
// that is a normal, silent outcome.
func (c *Channel) Publish(args ...any) {
	ev := dispatch.Event{Shape: shape.Of(args...), Args: args}

	c.mu.Lock()
	if c.running || c.idle == KeepEvents {
		c.queue = append(c.queue, ev)
		c.published.Add(1)
		c.cond.Signal()
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.dropped.Add(1)
	c.log.Debug("event dropped while idle", zap.Stringer("shape", ev.Shape))
}

// run is the dispatcher worker loop. Each iteration swaps the entire queue
// into a local batch (so publishers are never blocked by an in-flight
// dispatch), merges pending subscriptions into the active registry
// partition, and hands the batch to the dispatch policy.
func (c *Channel) run(done chan struct{}) {
	defer close(done)

	for {
		c.mu.Lock()
		for c.running && len(c.queue) == 0 {
			c.cond.Wait()
		}
		if !c.running {
			c.mu.Unlock()
			return
		}
		batch := dispatch.Batch(c.queue)
		c.queue = nil
		c.mu.Unlock()

		c.dispatched.Add(uint64(len(batch)))

		// The merge below is the single point where new subscriptions become
		// visible to dispatch; a subscription added while a batch is being
		// processed is seen no earlier than the next batch.
		c.reg.dispatch(batch, c.policy)
	}
}

// Stats returns a snapshot of the channel's counters.
func (c *Channel) Stats() Stats {
	c.mu.Lock()
	depth := len(c.queue)
	c.mu.Unlock()

	return Stats{
		EventsPublished:  c.published.Load(),
		EventsDropped:    c.dropped.Load(),
		EventsDispatched: c.dispatched.Load(),
		HandlersInvoked:  c.invoked.Load(),
		HandlerPanics:    c.panics.Load(),
		TargetsExpired:   c.expired.Load(),
		QueueDepth:       depth,
	}
}
