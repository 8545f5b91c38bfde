package eval

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool is a bounded worker pool shared by the parallel evaluation paths.
// Each component (evaluator, tuner, distance-matrix generator) owns its
// own Pool, lazily activated on the first multi-threaded call.
//
// Cancellation is cooperative: the first task error cancels the group
// context, remaining tasks observe it at their next check point, and Run
// returns the first error after every submitted task has quiesced.
type Pool struct {
	mu      sync.Mutex
	threads int
	closed  bool
	nextID  int
	cancels map[int]context.CancelFunc
}

// NewPool creates a pool of the given width. threads < 1 is clamped to 1.
func NewPool(threads int) *Pool {
	if threads < 1 {
		threads = 1
	}
	return &Pool{threads: threads}
}

// Threads returns the configured pool width.
func (p *Pool) Threads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.threads
}

// SetThreads reconfigures the pool width for subsequent Run calls.
func (p *Pool) SetThreads(n int) {
	if n < 1 {
		n = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.threads = n
}

// Run executes the tasks with at most Threads of them in flight and waits
// for all of them. The first task error cancels the rest and is returned.
// A context.Canceled from the parent surfaces as ErrCancelled.
func (p *Pool) Run(ctx context.Context, tasks []func(ctx context.Context) error) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrCancelled
	}
	threads := p.threads
	runCtx, cancel := context.WithCancel(ctx)
	if p.cancels == nil {
		p.cancels = make(map[int]context.CancelFunc)
	}
	id := p.nextID
	p.nextID++
	p.cancels[id] = cancel
	p.mu.Unlock()

	defer func() {
		cancel()
		p.mu.Lock()
		delete(p.cancels, id)
		p.mu.Unlock()
	}()

	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(threads)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			if err := checkCancelled(gctx); err != nil {
				return err
			}
			return task(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			return ErrCancelled
		}
		return err
	}
	return checkCancelled(ctx)
}

// Shutdown cancels any in-flight Run and refuses further work. Safe to
// invoke multiple times.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for _, cancel := range p.cancels {
		cancel()
	}
	p.cancels = nil
}

// checkCancelled reports cooperative cancellation as ErrCancelled. It is
// the single cancellation probe used at fold boundaries, candidate-value
// boundaries, and before each per-item classification.
func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ErrCancelled
	default:
		return nil
	}
}
