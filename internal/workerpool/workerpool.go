// Package workerpool runs tasks on a fixed number of goroutines.
//
// HOW IT WORKS
// ────────────
// Submitted tasks wait in an unbounded FIFO queue and are picked up by
// Size() long-lived workers. Every Submit returns a Future that resolves
// exactly once, with the task's result or with an error:
//
//   - ErrClosed          the pool was already shut down
//   - context.Canceled   the grace period ran out before the task started
//   - a panic error      the task panicked (the worker survives)
//
// Shutdown stops intake, gives queued and running tasks a grace period,
// then cancels the context handed to every task so the rest abort.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultSize is used when New is given a non-positive size.
const DefaultSize = 3

// ErrClosed resolves futures submitted after Shutdown.
var ErrClosed = errors.New("workerpool: closed")

// ErrShutdownTimeout is returned by Shutdown when tasks were still running
// when the grace period ended.
var ErrShutdownTimeout = errors.New("workerpool: grace period elapsed before tasks finished")

type task func(ctx context.Context)

// Pool is a fixed-size worker pool. The zero value is not usable; call New.
type Pool struct {
	size int
	log  *slog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []task
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New starts size workers.
func New(size int, log *slog.Logger) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		size:   size,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	p.cond = sync.NewCond(&p.mu)

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

// Size is the number of workers.
func (p *Pool) Size() int {
	return p.size
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			// closed and drained
			p.mu.Unlock()
			return
		}
		t := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		t(p.ctx)
	}
}

// enqueue reports false once the pool is closed.
func (p *Pool) enqueue(t task) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.queue = append(p.queue, t)
	p.cond.Signal()
	return true
}

// Submit queues fn on p and returns its Future. fn receives the pool
// context, which is cancelled when the shutdown grace period runs out.
//
// Submit is a function rather than a method because methods cannot take
// type parameters.
func Submit[T any](p *Pool, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()

	ok := p.enqueue(func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("worker task panicked", slog.Any("panic", r))
				var zero T
				f.resolve(zero, fmt.Errorf("workerpool: task panicked: %v", r))
			}
		}()

		if err := ctx.Err(); err != nil {
			var zero T
			f.resolve(zero, err)
			return
		}
		v, err := fn(ctx)
		f.resolve(v, err)
	})
	if !ok {
		var zero T
		f.resolve(zero, ErrClosed)
	}
	return f
}

// Shutdown stops accepting tasks and waits up to grace for the queue to
// drain. When grace runs out the pool context is cancelled: queued tasks
// resolve with context.Canceled without running, and running tasks see
// ctx.Done(). In that case Shutdown returns ErrShutdownTimeout without
// waiting for them.
//
// Calling Shutdown more than once is safe; later calls return nil.
func (p *Pool) Shutdown(grace time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(drained)
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-drained:
		p.cancel()
		return nil
	case <-timer.C:
		p.log.Warn("worker pool did not drain in time, cancelling tasks",
			slog.Duration("grace", grace))
		p.cancel()
		return ErrShutdownTimeout
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Future
// ─────────────────────────────────────────────────────────────────────────────

// Future is the pending result of a submitted task.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T, err error) {
	f.once.Do(func() {
		f.val = v
		f.err = err
		close(f.done)
	})
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the task has finished and returns its result.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.val, f.err
}

// Await is Wait bounded by ctx. The task keeps running if ctx ends first.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
