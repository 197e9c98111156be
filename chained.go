package parsort

import (
	"context"

	"github.com/lanrat/parsort/pool"
)

// Chained sorts with continuation chaining. The whole recursion is built up
// front as a graph of futures: every leaf is a pool task and every inner node
// is a merge continuation that the pool schedules once both halves are done.
// Only the caller waits, once, on the root of the graph.
type Chained[E any] struct {
	engine[E]
}

// NewChained creates a Chained sorter scheduling on p.
// config can be nil to use the defaults.
func NewChained[E any](p *pool.Pool, cmp CompareFunc[E], config *Config) *Chained[E] {
	return &Chained[E]{engine: newEngine(p, cmp, config)}
}

// Name implements Sorter
func (s *Chained[E]) Name() string {
	return KindChained.String()
}

// Sort implements Sorter
func (s *Chained[E]) Sort(ctx context.Context, data []E) ([]E, error) {
	if len(data) == 0 {
		return []E{}, nil
	}
	if err := interrupted(ctx); err != nil {
		return nil, err
	}
	r := newRun(ctx)
	defer r.stop()
	root, err := s.build(r, data)
	if err == nil {
		var out []E
		if out, err = root.Await(ctx, nil); err == nil {
			return out, nil
		}
		err = classify(ctx, "await", err)
	}
	r.fail(err)
	if r.abandoned() {
		// a failed node completes the root early; let the task bodies that are
		// still running finish before returning
		r.drain()
	}
	return nil, r.result(err)
}

// build returns the future sorting span. It never waits.
func (s *Chained[E]) build(r *run, span []E) (*pool.Future[[]E], error) {
	if isLeaf(len(span), s.threshold) {
		f, err := pool.Submit(s.pool, nil, func(w *pool.Worker) ([]E, error) {
			return step(r, func() ([]E, error) { return s.leaf(span) })
		})
		if err != nil {
			return nil, classify(r.parent, "submit", err)
		}
		return f, nil
	}
	half := len(span) / 2

	left, err := s.build(r, span[:half])
	if err != nil {
		return nil, err
	}
	right, err := s.build(r, span[half:])
	if err != nil {
		return nil, err
	}
	return pool.Combine(nil, left, right, func(w *pool.Worker, lv, rv []E) ([]E, error) {
		return step(r, func() ([]E, error) { return s.merge(lv, rv) })
	}), nil
}
