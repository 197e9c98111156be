// Package parsort implements a stable merge sort with one sequential and three
// concurrent execution strategies over the same recursion.
//
// All sorters split a span at len/2 until it is shorter than the configured
// threshold, insertion sort the leaves and merge the halves back together.
// The concurrent strategies schedule that recursion on a shared work-stealing
// pool.Pool:
//
//   - Blocking submits the left half and blocks on it after sorting the right half inline.
//   - Chained builds a graph of futures joined by merge continuations and waits once.
//   - ForkJoin forks both halves into the pool and joins them, running unstolen halves inline.
//
// For the same input every sorter returns the same slice.
package parsort

import (
	"cmp"

	"github.com/lanrat/parsort/pool"
)

// New returns the sorter of the given kind. p is ignored by KindSequential and
// required by the other kinds. config can be nil to use the defaults.
func New[E any](kind Kind, p *pool.Pool, cmp CompareFunc[E], config *Config) (Sorter[E], error) {
	if kind != KindSequential && p == nil {
		return nil, &ConfigError{Field: "Pool", Value: nil, Reason: kind.String() + " requires a pool"}
	}
	switch kind {
	case KindSequential:
		return NewSequential(cmp, config), nil
	case KindBlocking:
		return NewBlocking(p, cmp, config), nil
	case KindChained:
		return NewChained(p, cmp, config), nil
	case KindForkJoin:
		return NewForkJoin(p, cmp, config), nil
	default:
		return nil, &ConfigError{Field: "Kind", Value: int(kind), Reason: "unknown strategy"}
	}
}

// Strategies returns one sorter per Kind, in the order of Kinds, all sharing p
// and config.
func Strategies[E any](p *pool.Pool, cmp CompareFunc[E], config *Config) []Sorter[E] {
	return []Sorter[E]{
		NewSequential(cmp, config),
		NewBlocking(p, cmp, config),
		NewChained(p, cmp, config),
		NewForkJoin(p, cmp, config),
	}
}

// Ordered returns the sorter of the given kind for a cmp.Ordered element
// type, comparing with cmp.Compare.
func Ordered[E cmp.Ordered](kind Kind, p *pool.Pool, config *Config) (Sorter[E], error) {
	return New(kind, p, cmp.Compare[E], config)
}

// OrderedStrategies is Strategies for a cmp.Ordered element type.
func OrderedStrategies[E cmp.Ordered](p *pool.Pool, config *Config) []Sorter[E] {
	return Strategies(p, cmp.Compare[E], config)
}
