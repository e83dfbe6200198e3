package dispatch

// Sequential invokes every handler synchronously in the dispatching
// goroutine: events in queue order, handlers in registration order. A slow
// handler delays delivery to later handlers and later events.
//
// Sequential is the channel's default policy.
type Sequential struct{}

// Dispatch implements Policy.
func (Sequential) Dispatch(batch Batch, table Table) {
	for _, ev := range batch {
		for _, h := range table.Handlers(ev.Shape) {
			h(ev.Args)
		}
	}
}
