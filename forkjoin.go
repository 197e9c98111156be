package parsort

import (
	"context"

	"github.com/lanrat/parsort/pool"
)

// ForkJoin sorts with fork/join work stealing. Each task forks its right half
// onto its worker's deque, sorts the left half itself and joins the right
// half, which it usually gets back unstolen and runs inline.
type ForkJoin[E any] struct {
	engine[E]
}

// NewForkJoin creates a ForkJoin sorter scheduling on p.
// config can be nil to use the defaults.
func NewForkJoin[E any](p *pool.Pool, cmp CompareFunc[E], config *Config) *ForkJoin[E] {
	return &ForkJoin[E]{engine: newEngine(p, cmp, config)}
}

// Name implements Sorter
func (s *ForkJoin[E]) Name() string {
	return KindForkJoin.String()
}

// Sort implements Sorter. The root task runs on the pool; the caller only
// waits for it.
func (s *ForkJoin[E]) Sort(ctx context.Context, data []E) ([]E, error) {
	if len(data) == 0 {
		return []E{}, nil
	}
	r := newRun(ctx)
	defer r.stop()
	out, err := pool.Invoke(ctx, s.pool, func(w *pool.Worker) ([]E, error) {
		return s.compute(r, w, data)
	})
	if err != nil {
		return nil, r.result(classify(ctx, "invoke", err))
	}
	return out, nil
}

func (s *ForkJoin[E]) compute(r *run, w *pool.Worker, span []E) ([]E, error) {
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

	left, right, err := pool.InvokeAll(r.parent, w,
		func(w *pool.Worker) ([]E, error) { return s.compute(r, w, span[:half]) },
		func(w *pool.Worker) ([]E, error) { return s.compute(r, w, span[half:]) },
	)
	if err != nil {
		err = classify(r.parent, "join", err)
		r.fail(err)
		return nil, err
	}
	out, err := s.merge(left, right)
	if err != nil {
		r.fail(err)
	}
	return out, err
}
