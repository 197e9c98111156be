package parsort

// DefaultThreshold is the span length below which every sorter stops
// splitting and falls back to insertion sort.
const DefaultThreshold = 20

// Config holds configuration settings shared by all sorters
type Config struct {
	Threshold int // spans shorter than this are insertion sorted instead of split
}

// DefaultConfig returns the default configuration options used if none provided
func DefaultConfig() *Config {
	return &Config{
		Threshold: DefaultThreshold,
	}
}

// mergeConfig takes a provided config and replaces any values not set with the defaults
func mergeConfig(c *Config) Config {
	d := DefaultConfig()
	if c == nil {
		return *d
	}
	out := *c
	if out.Threshold <= 0 {
		out.Threshold = d.Threshold
	}
	return out
}
