// Package config provides unified configuration management for the Quasar
// report table engine.
//
// # Key Features
//
// - Config: Single configuration structure for engine tunables
// - Structured sections: Limits, Serialization, Observability
// - Environment variable substitution with ${VAR_NAME} syntax
// - Viper-based loading with environment overrides for the CLI
// - Automatic defaults and validation
//
// # Usage
//
// ## Basic Configuration Loading
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// ## Programmatic Creation
//
//	cfg := config.NewConfig()
//	cfg.Limits.MaxDepth = 20
//	cfg.Serialization.Compression = "zstd"
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
// ## Environment Variable Substitution
//
//	# config.yaml
//	serialization:
//	  compression: ${QUASAR_COMPRESSION}
//	observability:
//	  log_level: ${QUASAR_LOG_LEVEL}
//
// ## CLI Loading with Overrides
//
// LoadWithViper reads an optional config file and applies QUASAR_* environment
// overrides on top of the defaults:
//
//	cfg, err := config.LoadWithViper("quasar.yaml")
//
// # Configuration Structure
//
//	type Config struct {
//		Limits        LimitsConfig        `yaml:"limits" json:"limits"`
//		Serialization SerializationConfig `yaml:"serialization" json:"serialization"`
//		Observability ObservabilityConfig `yaml:"observability" json:"observability"`
//	}
//
// Each section provides structured, validated configuration:
//
// - Limits: Maximum nesting depth, implicit sub-table row caps
// - Serialization: Archive compression algorithm and level
// - Observability: Metrics toggle, log level
package config
