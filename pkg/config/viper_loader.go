// Package config provides viper-based configuration loading for the CLI
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadWithViper loads configuration starting from defaults, layering an
// optional YAML file and QUASAR_* environment variables on top. The file
// path may be empty, in which case only defaults and environment apply.
//
// Environment overrides use underscores for section separators, e.g.
// QUASAR_LIMITS_MAX_DEPTH=20 or QUASAR_SERIALIZATION_COMPRESSION=zstd.
func LoadWithViper(filePath string) (*Config, error) {
	v := viper.New()

	defaults := NewConfig()
	v.SetDefault("limits.max_depth", defaults.Limits.MaxDepth)
	v.SetDefault("limits.max_subtable_rows", defaults.Limits.MaxSubtableRows)
	v.SetDefault("serialization.compression", defaults.Serialization.Compression)
	v.SetDefault("serialization.level", defaults.Serialization.Level)
	v.SetDefault("observability.enable_metrics", defaults.Observability.EnableMetrics)
	v.SetDefault("observability.log_level", defaults.Observability.LogLevel)

	v.SetEnvPrefix("QUASAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filePath != "" {
		v.SetConfigFile(filePath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Limits: LimitsConfig{
			MaxDepth:        v.GetInt("limits.max_depth"),
			MaxSubtableRows: v.GetInt("limits.max_subtable_rows"),
		},
		Serialization: SerializationConfig{
			Compression: v.GetString("serialization.compression"),
			Level:       v.GetInt("serialization.level"),
		},
		Observability: ObservabilityConfig{
			EnableMetrics: v.GetBool("observability.enable_metrics"),
			LogLevel:      v.GetString("observability.log_level"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
