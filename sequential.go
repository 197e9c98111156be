package parsort

import "context"

// Sequential is the single goroutine merge sort. It is the baseline every
// concurrent strategy is measured against, and the engine they use for spans
// below the threshold.
type Sequential[E any] struct {
	cmp    CompareFunc[E]
	config Config
}

// NewSequential creates a Sequential sorter ordering elements with cmp.
// config can be nil to use the defaults.
func NewSequential[E any](cmp CompareFunc[E], config *Config) *Sequential[E] {
	return &Sequential[E]{cmp: cmp, config: mergeConfig(config)}
}

// Name implements Sorter
func (s *Sequential[E]) Name() string {
	return KindSequential.String()
}

// Sort implements Sorter. The context is only checked before sorting starts;
// the sequential engine never waits on anything.
func (s *Sequential[E]) Sort(ctx context.Context, data []E) ([]E, error) {
	if len(data) == 0 {
		return []E{}, nil
	}
	if err := interrupted(ctx); err != nil {
		return nil, err
	}
	return guard("sequential sort", func() []E {
		return mergeSort(data, s.cmp, s.config.Threshold)
	})
}
