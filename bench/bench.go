// Package bench measures sorters the way a micro benchmark harness does: a
// warm-up phase followed by a fixed number of timed runs, where each run sorts
// every array of a dataset once.
package bench

import (
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/lanrat/parsort"
)

// Options control how many runs are made.
type Options struct {
	WarmUp int // untimed runs before measuring
	Runs   int // timed runs
}

// DefaultOptions returns the options used when none are provided.
func DefaultOptions() Options {
	return Options{WarmUp: 200, Runs: 20}
}

func mergeOptions(o Options) Options {
	d := DefaultOptions()
	if o.WarmUp < 0 {
		o.WarmUp = d.WarmUp
	}
	if o.Runs <= 0 {
		o.Runs = d.Runs
	}
	return o
}

// Measurement is the aggregate time of the timed runs of one sorter over one dataset.
type Measurement struct {
	Strategy string
	Dataset  string
	Runs     int
	Total    time.Duration
}

// PerRun returns the mean duration of a single run.
func (m Measurement) PerRun() time.Duration {
	if m.Runs == 0 {
		return 0
	}
	return m.Total / time.Duration(m.Runs)
}

// UnsortedError reports a sorter that returned a result that is out of order
// or has the wrong length.
type UnsortedError struct {
	Strategy string
	Dataset  string
	Index    int
}

func (e *UnsortedError) Error() string {
	return fmt.Sprintf("%s returned a bad result for array %d of %s", e.Strategy, e.Index, e.Dataset)
}

// Run measures s on dataset. The output of the final timed run is checked
// with compare before returning.
func Run[E any](ctx context.Context, s parsort.Sorter[E], name string, dataset [][]E, compare parsort.CompareFunc[E], opts Options) (Measurement, error) {
	opts = mergeOptions(opts)
	m := Measurement{Strategy: s.Name(), Dataset: name, Runs: opts.Runs}

	runOnce := func() ([][]E, error) {
		out := make([][]E, len(dataset))
		for i, a := range dataset {
			sorted, err := s.Sort(ctx, a)
			if err != nil {
				return nil, err
			}
			out[i] = sorted
		}
		return out, nil
	}

	for range opts.WarmUp {
		if _, err := runOnce(); err != nil {
			return m, err
		}
	}

	var last [][]E
	start := time.Now()
	for range opts.Runs {
		out, err := runOnce()
		if err != nil {
			return m, err
		}
		last = out
	}
	m.Total = time.Since(start)

	for i, out := range last {
		if len(out) != len(dataset[i]) || !slices.IsSortedFunc(out, compare) {
			return m, &UnsortedError{Strategy: m.Strategy, Dataset: name, Index: i}
		}
	}
	return m, nil
}

// Report writes one aligned line per measurement.
func Report(w io.Writer, ms []Measurement) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tSTRATEGY\tRUNS\tTOTAL\tPER RUN")
	for _, m := range ms {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", m.Dataset, m.Strategy, m.Runs, m.Total.Round(time.Microsecond), m.PerRun().Round(time.Microsecond))
	}
	return tw.Flush()
}
