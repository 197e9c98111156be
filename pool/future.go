package pool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// Result is the outcome of a task: either a Value or an Err.
type Result[T any] struct {
	Value T
	Err   error
}

// Unpack returns the value and error of the result.
func (r Result[T]) Unpack() (T, error) {
	return r.Value, r.Err
}

// PanicError reports a panic recovered while running a task.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("pool: task panicked: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Future is the handle of a submitted computation.
type Future[T any] struct {
	pool *Pool
	task *task // nil for futures produced by Combine
	done chan struct{}

	mu        sync.Mutex
	completed bool
	res       Result[T]
	then      []func(w *Worker)
}

func newFuture[T any](p *Pool) *Future[T] {
	return &Future[T]{pool: p, done: make(chan struct{})}
}

// Done returns a channel that is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result returns the outcome and true if the future has completed.
func (f *Future[T]) Result() (Result[T], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.res, f.completed
}

// complete stores r and fires the registered continuations on w.
// Only the first call has an effect.
func (f *Future[T]) complete(w *Worker, r Result[T]) {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return
	}
	f.res = r
	f.completed = true
	then := f.then
	f.then = nil
	close(f.done)
	f.mu.Unlock()

	for _, fn := range then {
		fn(w)
	}
}

// onComplete runs fn once f has completed, on the worker that completes it, or
// immediately on the caller when f is already complete. fn must not block.
func (f *Future[T]) onComplete(w *Worker, fn func(w *Worker)) {
	f.mu.Lock()
	if !f.completed {
		f.then = append(f.then, fn)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	fn(w)
}

// Await blocks until the future completes or ctx is done, whichever happens
// first, and returns the task's value and error unchanged. If ctx is done
// first, ctx.Err() is returned.
//
// When w is the worker running the caller, Await keeps w busy with other
// queued tasks while waiting, so a pool whose workers all wait on each other
// still makes progress. Pass nil from goroutines that are not pool workers.
func (f *Future[T]) Await(ctx context.Context, w *Worker) (T, error) {
	return f.wait(ctx, w, false)
}

// Join is Await for forked tasks: if the task has not been picked up by
// another worker yet, w takes it back and runs it inline.
func (f *Future[T]) Join(ctx context.Context, w *Worker) (T, error) {
	return f.wait(ctx, w, true)
}

func (f *Future[T]) wait(ctx context.Context, w *Worker, unfork bool) (T, error) {
	if w != nil && w.pool == f.pool {
		if unfork && f.task != nil && f.pool.claim(f.task) {
			w.execute(f.task)
		}
		w.helpUntil(ctx, f.done)
	}
	select {
	case <-f.done:
		return f.res.Value, f.res.Err
	default:
	}
	select {
	case <-f.done:
		return f.res.Value, f.res.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// cancel fails the task with err if no worker has claimed it yet.
func (f *Future[T]) cancel(err error) bool {
	if f.task == nil || !f.pool.claim(f.task) {
		return false
	}
	f.task.abort(err)
	return true
}

// helpUntil runs queued tasks on w until done is closed, ctx is done or no
// work is left to take. When nothing is left, the awaited task is already
// running on some other worker.
func (w *Worker) helpUntil(ctx context.Context, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		default:
		}
		t := w.find()
		if t == nil {
			return
		}
		w.execute(t)
	}
}

// call runs fn on w and converts a panic into a *PanicError.
func call[T any](p *Pool, w *Worker, fn func(w *Worker) (T, error)) (r Result[T]) {
	defer func() {
		if v := recover(); v != nil {
			r = Result[T]{Err: p.recovered(v)}
		}
	}()
	r.Value, r.Err = fn(w)
	return r
}

func (p *Pool) recovered(v any) error {
	err := &PanicError{Value: v, Stack: debug.Stack()}
	p.logger.Error("task panicked", "panic", v)
	if p.panicHandler != nil {
		p.panicHandler(v)
	}
	return err
}

// Submit schedules fn on p and returns its Future. Called from a task, w
// should be the worker running it; from any other goroutine pass nil.
func Submit[T any](p *Pool, w *Worker, fn func(w *Worker) (T, error)) (*Future[T], error) {
	f := newFuture[T](p)
	f.task = &task{
		run: func(w *Worker) {
			f.complete(w, call(p, w, fn))
		},
		abort: func(err error) {
			f.complete(nil, Result[T]{Err: err})
		},
	}
	if err := p.push(w, f.task); err != nil {
		return nil, err
	}
	return f, nil
}

// Combine returns a Future that applies fn to the results of a and b once both
// have completed. No goroutine waits: the last predecessor to complete
// schedules fn on the pool. If either predecessor fails, the returned future
// fails with that error right away and fn never runs.
func Combine[A, B, R any](w *Worker, a *Future[A], b *Future[B], fn func(w *Worker, a A, b B) (R, error)) *Future[R] {
	p := a.pool
	f := newFuture[R](p)

	var (
		mu        sync.Mutex
		remaining = 2
	)
	arrive := func(w *Worker, err error) {
		if err != nil {
			f.complete(w, Result[R]{Err: err})
			return
		}
		mu.Lock()
		remaining--
		last := remaining == 0
		mu.Unlock()
		if !last {
			return
		}
		av, bv := a.res.Value, b.res.Value
		t := &task{
			run: func(w *Worker) {
				f.complete(w, call(p, w, func(w *Worker) (R, error) {
					return fn(w, av, bv)
				}))
			},
			abort: func(err error) {
				f.complete(nil, Result[R]{Err: err})
			},
		}
		if err := p.push(w, t); err != nil {
			f.complete(w, Result[R]{Err: err})
		}
	}
	a.onComplete(w, func(w *Worker) { arrive(w, a.res.Err) })
	b.onComplete(w, func(w *Worker) { arrive(w, b.res.Err) })
	return f
}
