package parsort

import (
	"context"
	"strings"
)

// Sorter is the interface that all parsort sorter implementations satisfy.
// Every implementation produces the same output for the same input; they
// differ only in how the recursive work is scheduled.
type Sorter[E any] interface {
	// Sort returns a new slice holding the elements of data in
	// non-decreasing order. Elements comparing equal keep their input order.
	// data is only read, never written. The context bounds the time the call
	// spends waiting on sub-tasks.
	Sort(ctx context.Context, data []E) ([]E, error)

	// Name returns the strategy name, as accepted by ParseKind.
	Name() string
}

// CompareFunc is a function type for comparing two items of type E.
// It must implement a total ordering and returns a negative integer if a
// should be ordered before b, zero if they are equal, and a positive integer
// if a should be ordered after b. Failures are reported by panicking; the
// panic is returned to the caller of Sort as a *ComparisonError.
// This follows the same semantics as cmp.Compare.
type CompareFunc[E any] func(a, b E) int

// Kind selects a sorting strategy.
type Kind int

const (
	// KindSequential is the single goroutine merge sort.
	KindSequential Kind = iota
	// KindBlocking submits the left half and blocks on it after sorting the right half inline.
	KindBlocking
	// KindChained composes the recursion as futures joined by merge continuations.
	KindChained
	// KindForkJoin forks both halves into the work-stealing pool and joins them.
	KindForkJoin
)

// Kinds lists every strategy in a stable order.
var Kinds = []Kind{KindSequential, KindBlocking, KindChained, KindForkJoin}

func (k Kind) String() string {
	switch k {
	case KindSequential:
		return "sequential"
	case KindBlocking:
		return "blocking"
	case KindChained:
		return "chained"
	case KindForkJoin:
		return "forkjoin"
	default:
		return "unknown"
	}
}

// ParseKind returns the Kind named s, case insensitively.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, &ConfigError{Field: "Kind", Value: s, Reason: "unknown strategy"}
}
