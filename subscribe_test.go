package eventchannel

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thierryseegers/event-channel/shape"
)

// receiver records the values its methods are invoked with. The sink lives
// in a separate allocation so tests can keep observing after the receiver
// itself has been collected.
type receiver struct {
	sink *atomic.Int64
}

func newReceiver() *receiver {
	return &receiver{sink: new(atomic.Int64)}
}

func (r *receiver) receive(n int) {
	r.sink.Add(int64(n))
}

func (r *receiver) receivePair(a, b int) {
	r.sink.Add(int64(a + b))
}

// settle publishes a sentinel on its own shape and waits for it, ensuring
// every previously published event has been through a dispatch cycle.
func settle(t *testing.T, c *Channel) {
	t.Helper()

	done := make(chan struct{}, 1)
	tag := c.SubscribeHandler(shape.Of(""), func([]any) { done <- struct{}{} })
	defer c.Unsubscribe(tag)

	c.Publish("settle")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not settle")
	}
}

func TestSubscribeMethod(t *testing.T) {
	c := New()
	defer c.Stop()

	r := newReceiver()
	SubscribeMethod(c, r, (*receiver).receive)

	c.Publish(5)
	settle(t, c)

	if got := r.sink.Load(); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestSubscribeMethod_IndependentReceivers(t *testing.T) {
	// Two receivers of the same type subscribe independently: distinct
	// tags, both invoked.
	c := New()
	defer c.Stop()

	r1, r2 := newReceiver(), newReceiver()
	tag1 := SubscribeMethod(c, r1, (*receiver).receive)
	tag2 := SubscribeMethod(c, r2, (*receiver).receive)

	if tag1 == tag2 {
		t.Fatal("distinct receivers must derive distinct tags")
	}

	c.Publish(3)
	settle(t, c)

	if r1.sink.Load() != 3 || r2.sink.Load() != 3 {
		t.Errorf("expected both receivers invoked, got %d and %d", r1.sink.Load(), r2.sink.Load())
	}
}

func TestSubscribeMethod_OverwriteSamePair(t *testing.T) {
	c := New()
	defer c.Stop()

	r := newReceiver()
	tag1 := SubscribeMethod(c, r, (*receiver).receive)
	tag2 := SubscribeMethod(c, r, (*receiver).receive)

	if tag1 != tag2 {
		t.Fatal("identical (receiver, method) pairs must derive the same tag")
	}

	c.Publish(5)
	settle(t, c)

	if got := r.sink.Load(); got != 5 {
		t.Errorf("expected a single invocation (5), got %d", got)
	}
}

func TestUnsubscribeMethod(t *testing.T) {
	c := New()
	defer c.Stop()

	r := newReceiver()
	SubscribeMethod(c, r, (*receiver).receive)

	c.Publish(1)
	settle(t, c)

	UnsubscribeMethod(c, r, (*receiver).receive)

	c.Publish(2)
	settle(t, c)

	if got := r.sink.Load(); got != 1 {
		t.Errorf("expected 1 after unsubscribe, got %d", got)
	}
}

func TestSubscribeMethod2(t *testing.T) {
	c := New()
	defer c.Stop()

	r := newReceiver()
	SubscribeMethod2(c, r, (*receiver).receivePair)

	c.Publish(3, 4)
	settle(t, c)

	if got := r.sink.Load(); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}

func TestSubscribeWeak_InvokedWhileAlive(t *testing.T) {
	c := New()
	defer c.Stop()

	r := newReceiver()
	SubscribeWeak(c, r, (*receiver).receive)

	c.Publish(5)
	settle(t, c)

	if got := r.sink.Load(); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
	runtime.KeepAlive(r)
}

func TestSubscribeWeak_ExpiredTargetSkipped(t *testing.T) {
	// P3: once the weakly held receiver is collected, the handler is never
	// invoked again and later publishes proceed without error.
	c := New()
	defer c.Stop()

	sink := new(atomic.Int64)
	subscribeDoomed(c, sink)

	c.Publish(5)
	settle(t, c)
	if got := sink.Load(); got != 5 {
		t.Fatalf("expected 5 while alive, got %d", got)
	}

	// The receiver is now unreachable; let the collector clear the weak
	// reference.
	runtime.GC()
	runtime.GC()

	c.Publish(7)
	settle(t, c)

	if got := sink.Load(); got != 5 {
		t.Errorf("expired receiver was invoked: sink=%d", got)
	}
	if c.Stats().TargetsExpired == 0 {
		t.Error("expected expired-target skips to be counted")
	}

	// The channel keeps working.
	live := newReceiver()
	SubscribeMethod(c, live, (*receiver).receive)
	c.Publish(2)
	settle(t, c)
	if got := live.sink.Load(); got != 2 {
		t.Errorf("expected 2 on the live receiver, got %d", got)
	}
}

// subscribeDoomed subscribes a receiver that becomes unreachable as soon as
// this function returns; only the shared sink survives.
func subscribeDoomed(c *Channel, sink *atomic.Int64) {
	r := &receiver{sink: sink}
	SubscribeWeak(c, r, (*receiver).receive)
}

func TestSubscribeNilReceiverPanics(t *testing.T) {
	c := New()
	defer c.Stop()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on nil receiver")
		}
	}()
	SubscribeMethod(c, (*receiver)(nil), (*receiver).receive)
}
