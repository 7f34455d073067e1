package config_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ajitpratap0/quasar/pkg/config"
)

// ExampleNewConfig demonstrates creating a new configuration
// with default values.
func ExampleNewConfig() {
	cfg := config.NewConfig()

	// The configuration comes with sensible defaults
	fmt.Printf("Max Depth: %d\n", cfg.Limits.MaxDepth)
	fmt.Printf("Compression: %s\n", cfg.Serialization.Compression)
	fmt.Printf("Log Level: %s\n", cfg.Observability.LogLevel)

	// Output:
	// Max Depth: 15
	// Compression: snappy
	// Log Level: info
}

// ExampleConfig_Validate shows how to validate a configuration
// before using it.
func ExampleConfig_Validate() {
	cfg := config.NewConfig()

	// Modify some values
	cfg.Limits.MaxDepth = 20
	cfg.Serialization.Compression = "zstd"
	cfg.Serialization.Level = 9

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("Configuration is valid!")

	// Output:
	// Configuration is valid!
}

// ExampleLoad demonstrates loading configuration from a YAML file
// with environment variable substitution.
func ExampleLoad() {
	// Write a config file; Save round-trips through Load.
	path := filepath.Join(os.TempDir(), "quasar-example.yaml")
	cfg := config.NewConfig()
	cfg.Serialization.Compression = "zstd"
	if err := config.Save(path, cfg); err != nil {
		log.Fatal(err)
	}
	defer os.Remove(path)

	// YAML values like ${QUASAR_COMPRESSION} are substituted from the
	// environment before parsing.
	loaded, err := config.Load(path)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Compression: %s\n", loaded.Serialization.Compression)
	fmt.Printf("Metrics enabled: %t\n", loaded.Observability.EnableMetrics)

	// Output:
	// Compression: zstd
	// Metrics enabled: true
}
