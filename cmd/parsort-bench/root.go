package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/lanrat/parsort"
	"github.com/lanrat/parsort/bench"
	"github.com/lanrat/parsort/internal/dataset"
	"github.com/lanrat/parsort/pool"
)

var elementTypes = []string{"ints", "floats", "points"}

type options struct {
	strategies []string
	types      []string
	shape      string
	arrays     int
	size       int
	seed       uint64
	workers    int
	threshold  int
	warmUp     int
	runs       int
	verbose    bool
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:           "parsort-bench",
		Short:         "Time the sequential and concurrent merge sort strategies",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), o)
		},
	}

	allKinds := lo.Map(parsort.Kinds, func(k parsort.Kind, _ int) string { return k.String() })
	f := cmd.Flags()
	f.StringSliceVar(&o.strategies, "strategies", allKinds, "strategies to run ("+strings.Join(allKinds, ",")+")")
	f.StringSliceVar(&o.types, "types", elementTypes, "element types to sort ("+strings.Join(elementTypes, ",")+")")
	f.StringVar(&o.shape, "shape", dataset.Random.String(), "initial order of the arrays (random, sorted, reversed, fewunique)")
	f.IntVar(&o.arrays, "arrays", 100, "number of arrays per dataset")
	f.IntVar(&o.size, "size", 1000, "number of elements per array")
	f.Uint64Var(&o.seed, "seed", 42, "dataset seed")
	f.IntVar(&o.workers, "workers", 0, "pool workers (0 uses GOMAXPROCS)")
	f.IntVar(&o.threshold, "threshold", parsort.DefaultThreshold, "insertion sort cutoff shared by all strategies")
	f.IntVar(&o.warmUp, "warmup", bench.DefaultOptions().WarmUp, "untimed runs before measuring")
	f.IntVar(&o.runs, "runs", bench.DefaultOptions().Runs, "timed runs")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log progress")
	return cmd
}

func run(ctx context.Context, stdout, stderr io.Writer, o options) error {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	kinds := make([]parsort.Kind, 0, len(o.strategies))
	for _, name := range lo.Uniq(o.strategies) {
		k, err := parsort.ParseKind(name)
		if err != nil {
			return err
		}
		kinds = append(kinds, k)
	}
	shape, ok := dataset.ParseShape(o.shape)
	if !ok {
		return fmt.Errorf("unknown shape %q", o.shape)
	}
	for _, t := range o.types {
		if !lo.Contains(elementTypes, t) {
			return fmt.Errorf("unknown element type %q", t)
		}
	}

	p := pool.New(o.workers, pool.WithLogger(logger))
	defer p.Close()

	config := &parsort.Config{Threshold: o.threshold}
	bopts := bench.Options{WarmUp: o.warmUp, Runs: o.runs}
	logger.Info("starting", "workers", p.NumWorkers(), "threshold", o.threshold, "shape", shape,
		"arrays", o.arrays, "size", o.size, "warmup", o.warmUp, "runs", o.runs)

	var results []bench.Measurement
	for _, t := range lo.Uniq(o.types) {
		var (
			ms  []bench.Measurement
			err error
		)
		name := fmt.Sprintf("%s/%s", t, shape)
		switch t {
		case "ints":
			var data [][]int
			if data, err = dataset.Ints(ctx, o.seed, shape, o.arrays, o.size); err == nil {
				ms, err = measure(ctx, logger, p, kinds, name, data, cmp.Compare[int], config, bopts)
			}
		case "floats":
			var data [][]float64
			if data, err = dataset.Floats(ctx, o.seed, shape, o.arrays, o.size); err == nil {
				ms, err = measure(ctx, logger, p, kinds, name, data, cmp.Compare[float64], config, bopts)
			}
		case "points":
			var data [][]dataset.Point
			if data, err = dataset.Points(ctx, o.seed, shape, o.arrays, o.size); err == nil {
				ms, err = measure(ctx, logger, p, kinds, name, data, dataset.ComparePoints, config, bopts)
			}
		}
		if err != nil {
			return err
		}
		results = append(results, ms...)
	}
	return bench.Report(stdout, results)
}

func measure[E any](ctx context.Context, logger *slog.Logger, p *pool.Pool, kinds []parsort.Kind, name string, data [][]E, compare parsort.CompareFunc[E], config *parsort.Config, opts bench.Options) ([]bench.Measurement, error) {
	out := make([]bench.Measurement, 0, len(kinds))
	for _, k := range kinds {
		s, err := parsort.New(k, p, compare, config)
		if err != nil {
			return nil, err
		}
		logger.Debug("measuring", "dataset", name, "strategy", s.Name())
		m, err := bench.Run(ctx, s, name, data, compare, opts)
		if err != nil {
			return nil, fmt.Errorf("%s on %s: %w", s.Name(), name, err)
		}
		logger.Debug("measured", "dataset", name, "strategy", s.Name(), "total", m.Total)
		out = append(out, m)
	}
	return out, nil
}
