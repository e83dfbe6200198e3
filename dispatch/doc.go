// Package dispatch defines how the event channel invokes handlers for a
// drained batch of events.
//
// The channel's worker hands each batch, together with a read-only view of
// the active subscription registry (a Table), to a Policy. The policy decides
// ordering and concurrency:
//
//   - Sequential: handlers run serially in registration order, events in
//     queue order. Deterministic, and the default.
//   - Parallel: all handlers for one event run concurrently; the policy
//     waits for them before taking the next event.
//   - Pool: every (event, handler) pair is posted to a fixed worker pool and
//     Dispatch returns once everything is queued. No ordering guarantees.
//
// Custom strategies implement Policy. The single obligation is that every
// (event, handler) pair is at least scheduled before Dispatch returns.
//
// Handlers reaching a policy are already-bound thunks with panic recovery
// baked in, so policies stay free of error handling.
package dispatch
