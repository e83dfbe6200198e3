package dispatch

import "sync"

// Parallel invokes all handlers for one event concurrently and waits for
// them to finish before moving to the next event in the batch. There is no
// ordering guarantee among handlers of the same event; events themselves are
// still processed one at a time, in queue order.
type Parallel struct{}

// Dispatch implements Policy.
func (Parallel) Dispatch(batch Batch, table Table) {
	for _, ev := range batch {
		handlers := table.Handlers(ev.Shape)
		if len(handlers) == 0 {
			continue
		}

		var wg sync.WaitGroup
		for _, h := range handlers {
			wg.Add(1)
			go func(h Handler) {
				defer wg.Done()
				h(ev.Args)
			}(h)
		}
		wg.Wait()
	}
}
