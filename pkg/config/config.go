// Package config provides the unified configuration system for Quasar.
// It defines a single Config structure covering the engine's tunables,
// ensuring consistent configuration across the library and the CLI.
//
// The configuration is organized into logical sections:
//   - Limits: Recursion depth and sub-table row caps
//   - Serialization: Compression algorithm and level for archives
//   - Observability: Metrics and logging
//
// Example usage:
//
//	cfg := config.NewConfig()
//	cfg.Limits.MaxDepth = 20
//	cfg.Serialization.Compression = "zstd"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
)

// DefaultMaxDepth is the maximum sub-table nesting depth allowed during
// recursive traversal. Exceeding it turns an accidental cyclic sub-table
// graph into a deterministic failure instead of a stack overflow.
const DefaultMaxDepth = 15

// DefaultMaxSubtableRows is the row cap applied to sub-tables created
// implicitly during path walking. Zero means unlimited.
const DefaultMaxSubtableRows = 0

// Config is the single unified configuration structure for the engine.
// It provides the engine's tunables organized into logical sections.
// Consumers should start from NewConfig and override as needed.
type Config struct {
	// Limits bound recursive traversal and implicit table growth
	Limits LimitsConfig `yaml:"limits" json:"limits"`

	// Serialization controls the archive storage format
	Serialization SerializationConfig `yaml:"serialization" json:"serialization"`

	// Observability settings for monitoring and debugging
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// LimitsConfig contains traversal and growth limits.
// These protect the engine from cyclic sub-table graphs and unbounded tables.
type LimitsConfig struct {
	// MaxDepth is the maximum sub-table nesting depth for any traversal
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
	// MaxSubtableRows caps rows in implicitly created sub-tables (0 = unlimited)
	MaxSubtableRows int `yaml:"max_subtable_rows" json:"max_subtable_rows"`
}

// SerializationConfig contains archive storage settings.
type SerializationConfig struct {
	// Compression selects the blob compression algorithm
	// (none, gzip, snappy, lz4, zstd, s2, deflate)
	Compression string `yaml:"compression" json:"compression"`
	// Level sets compression ratio vs speed (1=fastest, 9=best)
	Level int `yaml:"level" json:"level"`
}

// ObservabilityConfig contains monitoring and observability settings.
type ObservabilityConfig struct {
	// EnableMetrics activates Prometheus metrics collection
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// NewConfig creates a new Config with sensible defaults.
// The defaults work well for typical report workloads; callers can
// override individual fields after construction.
func NewConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			MaxDepth:        DefaultMaxDepth,
			MaxSubtableRows: DefaultMaxSubtableRows,
		},
		Serialization: SerializationConfig{
			Compression: "snappy",
			Level:       5,
		},
		Observability: ObservabilityConfig{
			EnableMetrics: true,
			LogLevel:      "info",
		},
	}
}

// Validate validates the configuration for correctness.
// It checks required fields and ensures values are within acceptable ranges.
// Callers should invoke this after loading configuration to catch errors early.
func (c *Config) Validate() error {
	if c.Limits.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive")
	}
	if c.Limits.MaxSubtableRows < 0 {
		return fmt.Errorf("max_subtable_rows cannot be negative")
	}
	switch c.Serialization.Compression {
	case "", "none", "gzip", "snappy", "lz4", "zstd", "s2", "deflate":
	default:
		return fmt.Errorf("unknown compression algorithm: %s", c.Serialization.Compression)
	}
	if c.Serialization.Level < 0 || c.Serialization.Level > 9 {
		return fmt.Errorf("compression level must be between 0 and 9")
	}
	switch c.Observability.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.Observability.LogLevel)
	}
	return nil
}
