package gofpd

import (
	"context"
	"errors"
	"log/slog"
)

// defaultWorkers is the number of slices Sync splits the module list into.
const defaultWorkers = 10

// Option configures an Engine.
type Option func(*engineConfig) error

// engineConfig holds all engine configuration.
type engineConfig struct {
	workers int

	// strictDynamic drops DYNAMIC from the fallback order used to bind a
	// generic DYNAMIC request. See WithStrictDynamicResolution.
	strictDynamic bool

	// logger is the structured logger for debug/info output.
	// If nil, logging is disabled (silent mode).
	logger *slog.Logger
}

// WithWorkers sets how many workers Sync fans out to. Each worker owns a
// contiguous slice of the platform's module list; slice lengths differ by at
// most one. Platforms with fewer modules than workers use one worker per
// module.
func WithWorkers(n int) Option {
	return func(c *engineConfig) error {
		c.workers = n
		return nil
	}
}

// WithStrictDynamicResolution changes how a generic DYNAMIC request is bound
// when the PCD has no consumer yet. By default the order is FIXED_AT_BUILD,
// DYNAMIC, PATCHABLE_IN_MODULE, DYNAMIC_EX, which is what existing platform
// files were produced with. With strict resolution DYNAMIC is skipped.
func WithStrictDynamicResolution(strict bool) Option {
	return func(c *engineConfig) error {
		c.strictDynamic = strict
		return nil
	}
}

// WithLogger sets a structured logger for engine diagnostics.
// If not set, logging is disabled (silent mode).
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "fpd")
//	engine, err := gofpd.NewEngine(doc, ws, gofpd.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *engineConfig) error {
		c.logger = l
		return nil
	}
}

// validate checks the configuration for logical consistency.
func (c *engineConfig) validate() error {
	if c.workers <= 0 {
		return errors.New("workers must be positive")
	}
	return nil
}

// log returns the configured logger, or a no-op logger if none was set.
func (c *engineConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newEngineConfig applies opts over the defaults and validates the result.
func newEngineConfig(opts ...Option) (*engineConfig, error) {
	c := &engineConfig{workers: defaultWorkers}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}
