// Package workerpool provides the bounded goroutine pool behind
// event.Dispatcher.Async.
//
// Submit never blocks: when every worker is busy and the backlog is full it
// returns ErrPoolFull so the caller can fall back to a synchronous call.
//
//	pool := workerpool.New(8, workerpool.WithPanicHandler(func(v any) {
//	    logger.Error("listener panicked", "panic", v)
//	}))
//	defer pool.Shutdown()
//
//	if err := pool.Submit(task); errors.Is(err, workerpool.ErrPoolFull) {
//	    task()
//	}
package workerpool

import (
	"errors"
	"sync"
)

// ErrPoolFull is returned by Submit when the backlog is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	mu      sync.RWMutex
	closed  bool
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	onPanic func(any)
	backlog int
}

// Option configures a Pool.
type Option func(*Pool)

// WithBacklog sets how many tasks may wait for a worker. Default 2× size.
func WithBacklog(n int) Option {
	return func(p *Pool) { p.backlog = n }
}

// WithPanicHandler is called with the recovered value when a task panics.
func WithPanicHandler(fn func(any)) Option {
	return func(p *Pool) { p.onPanic = fn }
}

// New starts a Pool with size workers (minimum 1).
func New(size int, opts ...Option) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{backlog: size * 2}
	for _, opt := range opts {
		opt(p)
	}
	if p.backlog < 0 {
		p.backlog = 0
	}
	p.tasks = make(chan func(), p.backlog)

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// Shutdown stops accepting tasks and waits for queued and running ones.
// Safe to call multiple times.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()

		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		if v := recover(); v != nil && p.onPanic != nil {
			p.onPanic(v)
		}
	}()
	task()
}
