package eventchannel

import (
	"sync"

	"github.com/thierryseegers/event-channel/dispatch"
	"github.com/thierryseegers/event-channel/shape"
)

// registry holds the subscription state in two partitions. The pending
// partition receives new subscriptions and is guarded by its own lock, so
// subscribing never waits on a dispatch in progress. The active partition is
// what policies dispatch against; it is mutated only during the merge step,
// with the active lock held for the whole merge+dispatch cycle.
//
// Lock order is fixed: active before pending. The merge takes both in that
// order, and so does every unsubscribe path.
type registry struct {
	activeMu sync.Mutex
	active   map[shape.Shape]*bucket

	pendingMu sync.Mutex
	pending   map[shape.Shape]*bucket
}

// bucket is an ordered tag->thunk mapping for one shape. Insertion order is
// registration order; overwriting an existing tag replaces the thunk in
// place and keeps the original position.
type bucket struct {
	order   []Tag
	entries map[Tag]dispatch.Handler
}

func newBucket() *bucket {
	return &bucket{entries: make(map[Tag]dispatch.Handler)}
}

func (b *bucket) put(tag Tag, h dispatch.Handler) {
	if _, ok := b.entries[tag]; !ok {
		b.order = append(b.order, tag)
	}
	b.entries[tag] = h
}

func (b *bucket) remove(tag Tag) bool {
	if _, ok := b.entries[tag]; !ok {
		return false
	}
	delete(b.entries, tag)
	for i, t := range b.order {
		if t == tag {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return true
}

func (b *bucket) handlers() []dispatch.Handler {
	if len(b.order) == 0 {
		return nil
	}
	hs := make([]dispatch.Handler, len(b.order))
	for i, tag := range b.order {
		hs[i] = b.entries[tag]
	}
	return hs
}

func newRegistry() *registry {
	return &registry{
		active:  make(map[shape.Shape]*bucket),
		pending: make(map[shape.Shape]*bucket),
	}
}

// subscribe inserts into the pending partition. It takes only the pending
// lock and therefore never blocks on dispatch.
func (r *registry) subscribe(s shape.Shape, tag Tag, h dispatch.Handler) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()

	b := r.pending[s]
	if b == nil {
		b = newBucket()
		r.pending[s] = b
	}
	b.put(tag, h)
}

// unsubscribe removes the tag from whichever partition currently holds the
// shape's bucket. The entry may have migrated from pending to active between
// the subscribe and this call, so both partitions are checked, active first,
// under both locks. Removing an absent tag is a no-op.
func (r *registry) unsubscribe(s shape.Shape, tag Tag) {
	r.activeMu.Lock()
	defer r.activeMu.Unlock()
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()

	if b := r.active[s]; b != nil && b.remove(tag) {
		return
	}
	if b := r.pending[s]; b != nil {
		b.remove(tag)
	}
}

// unsubscribeAll removes the tag from every shape bucket in both
// partitions. Used when only the tag is known (opaque-callable
// subscriptions and scope tokens).
func (r *registry) unsubscribeAll(tag Tag) {
	r.activeMu.Lock()
	defer r.activeMu.Unlock()
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()

	for _, b := range r.active {
		b.remove(tag)
	}
	for _, b := range r.pending {
		b.remove(tag)
	}
}

// dispatch merges the pending partition into the active partition, then
// invokes the policy over the batch against the active view. The active lock
// is held for the entire cycle: the active partition is immutable while a
// policy reads it, and unsubscribe calls queue up behind the cycle.
func (r *registry) dispatch(batch dispatch.Batch, policy dispatch.Policy) {
	r.activeMu.Lock()
	defer r.activeMu.Unlock()

	r.pendingMu.Lock()
	for s, pb := range r.pending {
		ab := r.active[s]
		if ab == nil {
			ab = newBucket()
			r.active[s] = ab
		}
		for _, tag := range pb.order {
			ab.put(tag, pb.entries[tag])
		}
	}
	clear(r.pending)
	r.pendingMu.Unlock()

	policy.Dispatch(batch, activeView{r})
}

// activeView is the read-only registry snapshot handed to policies. It reads
// the active partition without locking; the worker holds the active lock for
// the duration of the Dispatch call that uses it.
type activeView struct {
	r *registry
}

// Handlers implements dispatch.Table.
func (v activeView) Handlers(s shape.Shape) []dispatch.Handler {
	b := v.r.active[s]
	if b == nil {
		return nil
	}
	return b.handlers()
}
