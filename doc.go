// Package eventchannel is an in-process, type-routed publish/subscribe
// event channel.
//
// Independent parts of a program register interest in values of a
// particular shape — the ordered list of argument types — and a background
// dispatcher delivers newly published events to every current subscriber
// for that shape. Neither publishers nor subscribers implement any shared
// base type: handlers are plain functions, bound methods or ad-hoc
// callables, and events are the published values themselves.
//
// # Architecture
//
//	Publish(args...) ──▶ queue ──▶ worker ──▶ dispatch.Policy ──▶ handlers
//	                               │
//	Subscribe* ──▶ pending ────────┴─▶ active   (merged once per batch)
//
// The worker drains the whole queue in one swap, merges pending
// subscriptions into the active registry partition, and hands the batch to
// the configured dispatch policy. Publishing and subscribing take only
// short-held locks and never wait on a dispatch in progress; unsubscribing
// shares a lock with the dispatch cycle and can be delayed behind it.
//
// # Basic usage
//
//	c := eventchannel.New()
//	defer c.Stop()
//
//	eventchannel.Subscribe(c, func(n int) { fmt.Println("got", n) })
//
//	c.Publish(1)
//	c.Publish(2)
//
// Shapes route on dynamic types: Publish(1) reaches func(int) handlers,
// Publish(1.0) reaches func(float64) handlers, Publish(1, 2) reaches
// func(int, int) handlers, and an event nobody subscribed to is silently
// discarded after dispatch.
//
// # Handler kinds
//
//   - Subscribe, Subscribe2, ... — free functions with deterministic tags;
//     re-subscribing the same function overwrites.
//   - SubscribeMethod* — (receiver, method) pairs, receiver held strongly.
//   - SubscribeWeak* — (receiver, method) pairs, receiver held weakly; once
//     the receiver is collected the handler is silently skipped.
//   - Channel.SubscribeHandler — opaque callable with an explicit shape,
//     addressed by a returned counter tag.
//
// # Policies
//
// Construction-time options select the dispatch policy (sequential,
// parallel, worker pool, or any custom dispatch.Policy) and the idle policy
// (keep or drop events while stopped):
//
//	c := eventchannel.New(
//	    eventchannel.WithDispatchPolicy(dispatch.Parallel{}),
//	    eventchannel.WithIdlePolicy(eventchannel.DropEvents),
//	)
//
// # Fault isolation
//
// A panicking handler never kills the dispatcher: the panic is recovered,
// counted in Stats, logged, and reported to the optional WithPanicHandler
// callback. Delivery continues with the next handler.
package eventchannel
