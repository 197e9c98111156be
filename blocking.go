package parsort

import (
	"context"
	"sync"

	"github.com/lanrat/parsort/pool"
)

// engine holds what every concurrent strategy shares: the pool, the
// comparison function and the threshold.
type engine[E any] struct {
	pool      *pool.Pool
	cmp       CompareFunc[E]
	threshold int
}

func newEngine[E any](p *pool.Pool, cmp CompareFunc[E], config *Config) engine[E] {
	if p == nil {
		panic("parsort: nil pool")
	}
	return engine[E]{pool: p, cmp: cmp, threshold: mergeConfig(config).Threshold}
}

// leaf sorts a span on the calling goroutine with the sequential engine.
func (e engine[E]) leaf(span []E) ([]E, error) {
	return guard("leaf sort", func() []E {
		return mergeSort(span, e.cmp, e.threshold)
	})
}

func (e engine[E]) merge(left, right []E) ([]E, error) {
	return guard("merge", func() []E {
		return Merge(left, right, e.cmp)
	})
}

// run scopes the tasks of one Sort call. The first failure cancels ctx, so
// the remaining tasks of the call stop at their next check instead of calling
// the comparison function after Sort has returned.
type run struct {
	parent context.Context // the caller's context
	ctx    context.Context
	cancel context.CancelCauseFunc

	// held for reading by every Chained task body
	mu sync.RWMutex
}

func newRun(parent context.Context) *run {
	ctx, cancel := context.WithCancelCause(parent)
	return &run{parent: parent, ctx: ctx, cancel: cancel}
}

// fail stops the call. Only the first failure is kept as the cause.
func (r *run) fail(err error) {
	r.cancel(err)
}

// abandoned reports whether the call stopped on its own failure while the
// caller's context is still live.
func (r *run) abandoned() bool {
	return r.parent.Err() == nil && r.ctx.Err() != nil
}

// result maps err onto the failure that stopped the call. Tasks that saw the
// cancellation report it as an interruption; the caller gets the first
// failure instead.
func (r *run) result(err error) error {
	if err != nil && r.abandoned() {
		if cause := context.Cause(r.ctx); cause != nil {
			return cause
		}
	}
	return err
}

// drain waits until no task body started through step is running.
func (r *run) drain() {
	r.mu.Lock()
	defer r.mu.Unlock()
}

func (r *run) stop() {
	r.cancel(nil)
}

// step runs fn as a task body of r: not at all once r has stopped, and with
// any failure stopping r.
func step[E any](r *run, fn func() ([]E, error)) ([]E, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := interrupted(r.ctx); err != nil {
		return nil, err
	}
	out, err := fn()
	if err != nil {
		r.fail(err)
	}
	return out, err
}

// Blocking sorts with blocking task parallelism: at every level the left
// half is submitted to the pool, the right half is sorted inline, and the
// goroutine then waits for the left half before merging.
type Blocking[E any] struct {
	engine[E]
}

// NewBlocking creates a Blocking sorter scheduling on p.
// config can be nil to use the defaults.
func NewBlocking[E any](p *pool.Pool, cmp CompareFunc[E], config *Config) *Blocking[E] {
	return &Blocking[E]{engine: newEngine(p, cmp, config)}
}

// Name implements Sorter
func (s *Blocking[E]) Name() string {
	return KindBlocking.String()
}

// Sort implements Sorter. The top level runs on the calling goroutine.
func (s *Blocking[E]) Sort(ctx context.Context, data []E) ([]E, error) {
	if len(data) == 0 {
		return []E{}, nil
	}
	r := newRun(ctx)
	defer r.stop()
	out, err := s.sort(r, nil, data)
	return out, r.result(err)
}

// sort runs on w, or on the caller's goroutine when w is nil. It always waits
// for the left half, even when the right half failed, unless the caller's
// context is done.
func (s *Blocking[E]) sort(r *run, w *pool.Worker, span []E) ([]E, error) {
	if err := interrupted(r.ctx); err != nil {
		return nil, err
	}
	if isLeaf(len(span), s.threshold) {
		out, err := s.leaf(span)
		if err != nil {
			r.fail(err)
		}
		return out, err
	}
	half := len(span) / 2

	leftFuture, err := pool.Submit(s.pool, w, func(w *pool.Worker) ([]E, error) {
		return s.sort(r, w, span[:half])
	})
	if err != nil {
		err = classify(r.parent, "submit", err)
		r.fail(err)
		return nil, err
	}
	right, rightErr := s.sort(r, w, span[half:])
	left, leftErr := leftFuture.Await(r.parent, w)
	if rightErr != nil {
		return nil, rightErr
	}
	if leftErr != nil {
		err = classify(r.parent, "await", leftErr)
		r.fail(err)
		return nil, err
	}
	out, err := s.merge(left, right)
	if err != nil {
		r.fail(err)
	}
	return out, err
}
