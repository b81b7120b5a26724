package spatialgrid

import "go.uber.org/zap"

// Config collects construction-time options (spec.md §6 "Configuration
// options"). Storage flavor itself is chosen by which constructor is
// called (NewPointGrid vs NewPointGridDense, NewShapeGrid vs
// NewShapeGridDense) rather than by a Config field, so the grid's index
// type is known statically.
type Config struct {
	logger *zap.Logger

	denseOrigin    [2]int32
	denseExtent    [2]int32
	hasDenseBounds bool
}

// Option configures a grid constructor.
type Option func(*Config)

func newConfig(opts []Option) *Config {
	c := &Config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithLogger attaches a structured logger for debug-level observability
// (maintain sweep sizes, Dense regrows, Sparse cell eviction). A nil
// logger is treated as zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	}
}

// WithDenseBounds pre-sizes a Dense-backed grid's envelope to
// originCells..originCells+extentCells, avoiding the reallocation cost of
// growing from a single cell on first insert (spec.md §6
// "initial_origin_cells, initial_extent_cells"). Ignored by Sparse-backed
// constructors.
func WithDenseBounds(originCells, extentCells [2]int32) Option {
	return func(c *Config) {
		c.denseOrigin = originCells
		c.denseExtent = extentCells
		c.hasDenseBounds = true
	}
}
