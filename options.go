package eventchannel

import (
	"go.uber.org/zap"

	"github.com/thierryseegers/event-channel/dispatch"
)

// IdlePolicy dictates the fate of events arriving, or already queued, while
// the channel is stopped.
type IdlePolicy int

const (
	// KeepEvents retains unprocessed and incoming events while idle; they
	// are delivered in original order once the channel is restarted.
	KeepEvents IdlePolicy = iota

	// DropEvents discards queued events on stop and incoming events while
	// idle.
	DropEvents
)

// String returns a human-readable policy name.
func (p IdlePolicy) String() string {
	switch p {
	case KeepEvents:
		return "keep_events"
	case DropEvents:
		return "drop_events"
	default:
		return "unknown"
	}
}

// Option configures a Channel at construction time.
type Option func(*config)

type config struct {
	policy       dispatch.Policy
	idle         IdlePolicy
	logger       *zap.Logger
	panicHandler PanicHandler
	stopped      bool
}

func defaultConfig() config {
	return config{
		policy: dispatch.Sequential{},
		idle:   KeepEvents,
		logger: zap.NewNop(),
	}
}

// WithDispatchPolicy sets the dispatch policy. The default is
// dispatch.Sequential. A nil policy keeps the default.
func WithDispatchPolicy(p dispatch.Policy) Option {
	return func(c *config) {
		if p != nil {
			c.policy = p
		}
	}
}

// WithIdlePolicy sets the idle policy. The default is KeepEvents.
func WithIdlePolicy(p IdlePolicy) Option {
	return func(c *config) {
		c.idle = p
	}
}

// WithLogger sets the channel's logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPanicHandler sets a callback invoked when a handler panics. Panics are
// always recovered, counted and logged whether or not a handler is set.
func WithPanicHandler(h PanicHandler) Option {
	return func(c *config) {
		c.panicHandler = h
	}
}

// WithStopped creates the channel idle instead of running; call Start to
// begin dispatching.
func WithStopped() Option {
	return func(c *config) {
		c.stopped = true
	}
}
