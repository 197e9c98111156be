package pool

import (
	"context"
	"errors"
)

// errForkAbandoned fails a forked task whose sibling already failed.
var errForkAbandoned = errors.New("pool: fork abandoned")

// Fork pushes fn onto w's own deque where it is picked up again by w's Join
// unless an idle worker steals it first.
func Fork[T any](w *Worker, fn func(w *Worker) (T, error)) (*Future[T], error) {
	return Submit(w.pool, w, fn)
}

// Invoke runs fn as a root task on p and waits for its result. It must be
// called from outside the pool.
func Invoke[T any](ctx context.Context, p *Pool, fn func(w *Worker) (T, error)) (T, error) {
	f, err := Submit(p, nil, fn)
	if err != nil {
		var zero T
		return zero, err
	}
	return f.Await(ctx, nil)
}

// InvokeAll forks right, runs left inline on w and then joins right. The
// join is non-blocking when w gets right back from its own deque; it only
// waits when right was stolen and is still running. The first failure is
// returned; if left fails, right is abandoned when it has not started yet
// and waited for when it has.
func InvokeAll[T any](ctx context.Context, w *Worker, left, right func(w *Worker) (T, error)) (T, T, error) {
	var zero T
	rf, err := Fork(w, right)
	if err != nil {
		return zero, zero, err
	}
	l := call(w.pool, w, left)
	if l.Err != nil {
		if !rf.cancel(errForkAbandoned) {
			rf.wait(ctx, w, false)
		}
		return zero, zero, l.Err
	}
	r, err := rf.Join(ctx, w)
	if err != nil {
		return zero, zero, err
	}
	return l.Value, r, nil
}
