package dispatch

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool is a worker-pool-backed dispatch policy. Dispatch posts every
// (event, handler) pair to a fixed set of workers and returns as soon as all
// pairs are queued; invocations complete in the background in no particular
// order, including across events of the same batch.
//
// Unlike Sequential and Parallel, a Pool owns goroutines and must be closed
// when the channel that uses it is done.
type Pool struct {
	tasks chan task
	group *errgroup.Group
	once  sync.Once
}

type task struct {
	h    Handler
	args []any
}

// PoolOption configures a Pool.
type PoolOption func(*poolConfig)

type poolConfig struct {
	queueDepth int
}

// WithQueueDepth sets the capacity of the task queue shared by the workers.
// When the queue is full, Dispatch blocks until a worker drains it.
func WithQueueDepth(n int) PoolOption {
	return func(c *poolConfig) {
		if n > 0 {
			c.queueDepth = n
		}
	}
}

// NewPool creates a pool with the given number of worker goroutines.
// A non-positive count is treated as one worker.
func NewPool(workers int, opts ...PoolOption) *Pool {
	if workers < 1 {
		workers = 1
	}

	config := poolConfig{queueDepth: 64}
	for _, opt := range opts {
		opt(&config)
	}

	p := &Pool{
		tasks: make(chan task, config.queueDepth),
		group: &errgroup.Group{},
	}

	for i := 0; i < workers; i++ {
		p.group.Go(func() error {
			for t := range p.tasks {
				t.h(t.args)
			}
			return nil
		})
	}

	return p
}

// Dispatch implements Policy. It blocks only while the task queue is full;
// every pair is scheduled before it returns. Dispatch must not be called
// after Close.
func (p *Pool) Dispatch(batch Batch, table Table) {
	for _, ev := range batch {
		for _, h := range table.Handlers(ev.Shape) {
			p.tasks <- task{h: h, args: ev.Args}
		}
	}
}

// Close stops accepting work, waits for queued invocations to finish and
// joins the workers. Close is idempotent and always returns nil.
func (p *Pool) Close() error {
	p.once.Do(func() {
		close(p.tasks)
	})
	return p.group.Wait()
}
