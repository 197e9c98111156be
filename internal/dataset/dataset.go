// Package dataset generates deterministic arrays to sort in tests, benchmarks
// and the bench command.
package dataset

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Shape describes the initial order of generated arrays.
type Shape int

const (
	// Random values drawn uniformly from [0, 4*size)
	Random Shape = iota
	// Sorted ascending
	Sorted
	// Reversed is sorted descending
	Reversed
	// FewUnique draws from only 8 distinct values
	FewUnique
)

// Shapes lists every Shape.
var Shapes = []Shape{Random, Sorted, Reversed, FewUnique}

func (s Shape) String() string {
	switch s {
	case Random:
		return "random"
	case Sorted:
		return "sorted"
	case Reversed:
		return "reversed"
	case FewUnique:
		return "fewunique"
	default:
		return "unknown"
	}
}

// ParseShape returns the Shape named s, case insensitively.
func ParseShape(s string) (Shape, bool) {
	for _, sh := range Shapes {
		if strings.EqualFold(s, sh.String()) {
			return sh, true
		}
	}
	return 0, false
}

// Point is a composite record ordered by X, then Y.
type Point struct {
	X, Y int
}

// ComparePoints orders points by X, then by Y.
func ComparePoints(a, b Point) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Y, b.Y)
}

// Ints generates arrays of ints.
func Ints(ctx context.Context, seed uint64, shape Shape, arrays, size int) ([][]int, error) {
	return generate(ctx, seed, shape, arrays, size, cmp.Compare[int], func(r *rand.Rand, bound int) int {
		return r.IntN(bound)
	})
}

// Floats generates arrays of float64.
func Floats(ctx context.Context, seed uint64, shape Shape, arrays, size int) ([][]float64, error) {
	return generate(ctx, seed, shape, arrays, size, cmp.Compare[float64], func(r *rand.Rand, bound int) float64 {
		return r.Float64() * float64(bound)
	})
}

// Points generates arrays of Point.
func Points(ctx context.Context, seed uint64, shape Shape, arrays, size int) ([][]Point, error) {
	return generate(ctx, seed, shape, arrays, size, ComparePoints, func(r *rand.Rand, bound int) Point {
		return Point{X: r.IntN(bound), Y: r.IntN(bound)}
	})
}

// generate builds the arrays concurrently. Array i always uses the stream
// seeded with (seed, i), so the result does not depend on scheduling.
func generate[E any](ctx context.Context, seed uint64, shape Shape, arrays, size int, compare func(a, b E) int, next func(r *rand.Rand, bound int) E) ([][]E, error) {
	if arrays < 0 || size < 0 {
		return nil, fmt.Errorf("dataset: invalid dimensions %d arrays of %d elements", arrays, size)
	}
	out := make([][]E, arrays)
	bound := max(4*size, 1)
	if shape == FewUnique {
		bound = 8
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range out {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := rand.New(rand.NewPCG(seed, uint64(i)))
			a := lo.Times(size, func(int) E {
				return next(r, bound)
			})
			switch shape {
			case Sorted:
				slices.SortFunc(a, compare)
			case Reversed:
				slices.SortFunc(a, compare)
				slices.Reverse(a)
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
