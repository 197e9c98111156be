package parsort_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lanrat/parsort"
	"github.com/lanrat/parsort/pool"
)

var errBrokenOrder = errors.New("broken ordering")

// poisonCompare panics whenever poison is compared
func poisonCompare(poison int) parsort.CompareFunc[int] {
	return func(a, b int) int {
		if a == poison || b == poison {
			panic(errBrokenOrder)
		}
		return compareInts(a, b)
	}
}

func descending(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = n - i
	}
	return out
}

func TestComparisonErrorPropagates(t *testing.T) {
	p := newPool(t, 4)
	in := descending(500)
	for _, poison := range []int{in[0], in[250], in[499]} {
		for _, s := range parsort.Strategies(p, poisonCompare(poison), nil) {
			got, err := s.Sort(context.Background(), in)
			if err == nil {
				t.Fatalf("%s: expected an error, got %d elements", s.Name(), len(got))
			}
			var cmpErr *parsort.ComparisonError
			if !errors.As(err, &cmpErr) {
				t.Errorf("%s: expected ComparisonError, got %T: %v", s.Name(), err, err)
			}
			if !errors.Is(err, errBrokenOrder) {
				t.Errorf("%s: error does not wrap the comparator's error: %v", s.Name(), err)
			}
			if parsort.IsInterrupted(err) || parsort.IsScheduling(err) {
				t.Errorf("%s: comparison failure reported as another kind: %v", s.Name(), err)
			}
			if got != nil {
				t.Errorf("%s: returned a partial result alongside the error", s.Name())
			}
		}
	}
}

func TestComparisonErrorNonErrorPanic(t *testing.T) {
	s := parsort.NewSequential(func(a, b string) int {
		panic("cannot compare")
	}, nil)
	_, err := s.Sort(context.Background(), []string{"b", "a"})
	if !parsort.IsComparison(err) {
		t.Fatalf("expected ComparisonError, got %v", err)
	}
	if !strings.Contains(err.Error(), "cannot compare") {
		t.Errorf("error message lost the panic value: %v", err)
	}
	if errors.Unwrap(err) != nil {
		t.Errorf("non-error panic should not unwrap, got %v", errors.Unwrap(err))
	}
}

func TestInterruptedBeforeStart(t *testing.T) {
	p := newPool(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, s := range parsort.Strategies(p, compareInts, nil) {
		_, err := s.Sort(ctx, descending(1000))
		if !parsort.IsInterrupted(err) {
			t.Errorf("%s: expected InterruptedError, got %v", s.Name(), err)
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s: cancellation no longer visible through %v", s.Name(), err)
		}
	}
}

func TestInterruptedWhileWaiting(t *testing.T) {
	in := descending(400)
	poison := in[0] // lands in the left-most leaf, which always runs on the pool

	p := newPool(t, 2)
	for _, kind := range []parsort.Kind{parsort.KindBlocking, parsort.KindChained, parsort.KindForkJoin} {
		t.Run(kind.String(), func(t *testing.T) {
			release := make(chan struct{})
			defer close(release)
			blocking := func(a, b int) int {
				if a == poison || b == poison {
					<-release
				}
				return compareInts(a, b)
			}
			s, err := parsort.New(kind, p, blocking, nil)
			if err != nil {
				t.Fatal(err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			done := make(chan error, 1)
			go func() {
				_, err := s.Sort(ctx, in)
				done <- err
			}()

			select {
			case err := <-done:
				var ie *parsort.InterruptedError
				if !errors.As(err, &ie) {
					t.Fatalf("expected InterruptedError, got %T: %v", err, err)
				}
				if !errors.Is(err, context.DeadlineExceeded) {
					t.Errorf("expected the deadline to be visible, got %v", err)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("sort did not return after its context expired")
			}
		})
	}
}

func TestNoComparisonsAfterFailure(t *testing.T) {
	in := descending(1 << 14)
	p := newPool(t, 2)
	for _, poison := range []int{in[0], in[len(in)-1]} {
		for _, kind := range []parsort.Kind{parsort.KindBlocking, parsort.KindChained, parsort.KindForkJoin} {
			var calls atomic.Int64
			compare := func(a, b int) int {
				calls.Add(1)
				if a == poison || b == poison {
					panic(errBrokenOrder)
				}
				return compareInts(a, b)
			}
			s, err := parsort.New(kind, p, compare, nil)
			if err != nil {
				t.Fatal(err)
			}
			_, err = s.Sort(context.Background(), in)
			if !parsort.IsComparison(err) {
				t.Fatalf("%s: expected ComparisonError, got %v", kind, err)
			}
			atReturn := calls.Load()
			time.Sleep(50 * time.Millisecond)
			if after := calls.Load() - atReturn; after != 0 {
				t.Errorf("%s with poison %d: %d comparisons after Sort returned", kind, poison, after)
			}
		}
	}
}

func TestSchedulingErrorOnClosedPool(t *testing.T) {
	p := pool.New(2)
	p.Close()
	for _, kind := range []parsort.Kind{parsort.KindBlocking, parsort.KindChained, parsort.KindForkJoin} {
		s, err := parsort.New(kind, p, compareInts, nil)
		if err != nil {
			t.Fatal(err)
		}
		_, err = s.Sort(context.Background(), descending(100))
		var se *parsort.SchedulingError
		if !errors.As(err, &se) {
			t.Fatalf("%s: expected SchedulingError, got %T: %v", kind, err, err)
		}
		if !errors.Is(err, pool.ErrClosed) {
			t.Errorf("%s: expected pool.ErrClosed, got %v", kind, err)
		}
	}

	// the sequential engine needs no pool and keeps working
	s, err := parsort.New(parsort.KindSequential, p, compareInts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Sort(context.Background(), descending(100)); err != nil {
		t.Errorf("sequential: %v", err)
	}
}

func TestNewRequiresPool(t *testing.T) {
	for _, kind := range []parsort.Kind{parsort.KindBlocking, parsort.KindChained, parsort.KindForkJoin} {
		_, err := parsort.New[int](kind, nil, compareInts, nil)
		var ce *parsort.ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("%s: expected ConfigError, got %v", kind, err)
		}
	}
	if _, err := parsort.New[int](parsort.KindSequential, nil, compareInts, nil); err != nil {
		t.Errorf("sequential should not need a pool: %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range parsort.Kinds {
		got, err := parsort.ParseKind(strings.ToUpper(k.String()))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k, got, err)
		}
	}
	if _, err := parsort.ParseKind("bogosort"); err == nil {
		t.Error("expected an error for an unknown strategy")
	}
	if _, err := parsort.New[int](parsort.Kind(99), nil, compareInts, nil); err == nil {
		t.Error("expected an error for an unknown kind")
	}
}
