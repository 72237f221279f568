package engine

import (
	"go.uber.org/zap"

	"github.com/tabulon-io/tabulon/schema"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Logger         *zap.Logger
	CaseSensitive  *bool
	RedactMarker   string
	TypeSampleSize int
}

// WithLogger wires a structured logger into the pipeline. The engine logs
// stage progress at debug level; the default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithCaseSensitive forces string comparison case handling for every query
// through this Execute call, taking precedence over the QuerySpec field.
// Without this option the QuerySpec.CaseSensitive flag decides.
func WithCaseSensitive(v bool) Option {
	return func(c *config) {
		c.CaseSensitive = &v
	}
}

// WithRedactMarker overrides the literal that the redact method writes.
func WithRedactMarker(marker string) Option {
	return func(c *config) {
		c.RedactMarker = marker
	}
}

// WithTypeSampleSize overrides how many rows type inference samples when a
// table arrives without type metadata. The default of 10 is the documented
// heuristic, not a tunable to reach for lightly.
func WithTypeSampleSize(n int) Option {
	return func(c *config) {
		c.TypeSampleSize = n
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Logger:         zap.NewNop(),
		RedactMarker:   DefaultRedactMarker,
		TypeSampleSize: schema.TypeSampleSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
