package dataset

import (
	"cmp"
	"context"
	"slices"
	"testing"
)

func TestIntsDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := Ints(ctx, 7, Random, 5, 100)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Ints(ctx, 7, Random, 5, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 5 {
		t.Fatalf("got %d arrays, want 5", len(a))
	}
	for i := range a {
		if len(a[i]) != 100 {
			t.Errorf("array %d has %d elements, want 100", i, len(a[i]))
		}
		if !slices.Equal(a[i], b[i]) {
			t.Errorf("array %d differs between runs with the same seed", i)
		}
	}
}

func TestShapes(t *testing.T) {
	ctx := context.Background()
	for _, shape := range Shapes {
		t.Run(shape.String(), func(t *testing.T) {
			arrays, err := Points(ctx, 1, shape, 3, 50)
			if err != nil {
				t.Fatal(err)
			}
			for _, a := range arrays {
				switch shape {
				case Sorted:
					if !slices.IsSortedFunc(a, ComparePoints) {
						t.Errorf("not sorted: %v", a)
					}
				case Reversed:
					if !slices.IsSortedFunc(a, func(x, y Point) int { return ComparePoints(y, x) }) {
						t.Errorf("not reversed: %v", a)
					}
				case FewUnique:
					for _, p := range a {
						if p.X >= 8 || p.Y >= 8 {
							t.Errorf("value out of range: %v", p)
						}
					}
				}
			}
		})
	}
}

func TestFloats(t *testing.T) {
	arrays, err := Floats(context.Background(), 3, Sorted, 2, 30)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range arrays {
		if !slices.IsSortedFunc(a, cmp.Compare[float64]) {
			t.Errorf("not sorted: %v", a)
		}
	}
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Ints(ctx, 1, Random, 4, 10); err == nil {
		t.Error("expected an error for a canceled context")
	}
}

func TestParseShape(t *testing.T) {
	for _, s := range Shapes {
		got, ok := ParseShape(s.String())
		if !ok || got != s {
			t.Errorf("ParseShape(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseShape("bogus"); ok {
		t.Error("ParseShape accepted an unknown shape")
	}
}

func TestInvalidDimensions(t *testing.T) {
	for _, dims := range [][2]int{{-1, 10}, {4, -1}} {
		if _, err := Points(context.Background(), 1, Random, dims[0], dims[1]); err == nil {
			t.Errorf("expected an error for %d arrays of %d elements", dims[0], dims[1])
		}
	}
	arrays, err := Ints(context.Background(), 1, Random, 0, 0)
	if err != nil || len(arrays) != 0 {
		t.Errorf("Ints(0, 0) = %v, %v", arrays, err)
	}
}
