package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/quasar/pkg/archive"
	"github.com/ajitpratap0/quasar/pkg/compression"
	"github.com/ajitpratap0/quasar/pkg/config"
	"github.com/ajitpratap0/quasar/pkg/datatable"
	"github.com/ajitpratap0/quasar/pkg/errors"
	jsonpool "github.com/ajitpratap0/quasar/pkg/json"
	"github.com/ajitpratap0/quasar/pkg/logger"

	// Import the built-in filters to register them
	_ "github.com/ajitpratap0/quasar/pkg/datatable/filters"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	var configFile string
	var logLevel string

	root := &cobra.Command{
		Use:   "quasar",
		Short: "Quasar - Hierarchical report table engine",
		Long: `Quasar stores analytics report data as trees of labeled rows, merges
time- and segment-bucketed reports into totals, and archives the result as a
flat compressed forest of tables.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithViper(configFile)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Observability.LogLevel = logLevel
			}
			return logger.Init(logger.Config{
				Level:    cfg.Observability.LogLevel,
				Encoding: "console",
			})
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to YAML configuration file (optional)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Quasar v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newInspectCmd())
	root.AddCommand(newMergeCmd())
	root.AddCommand(newConvertCmd())
	root.AddCommand(newConfigCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runLogger(command string) *zap.Logger {
	return logger.With(
		zap.String("command", command),
		zap.String("run_id", uuid.NewString()),
	)
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "Show the tables, sizes, and columns inside an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectArchive(args[0])
		},
	}
	return cmd
}

func inspectArchive(path string) error {
	log := runLogger("inspect")
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "read archive file")
	}

	var env archive.Envelope
	if err := jsonpool.Unmarshal(data, &env); err != nil {
		return errors.Wrap(err, errors.ErrorTypeUnserialization, "decode archive envelope")
	}

	mgr := datatable.NewManager()
	table, err := archive.Decode(mgr, data)
	if err != nil {
		return err
	}
	log.Info("archive loaded",
		zap.String("path", path),
		zap.Int("tables", len(env.Tables)),
	)

	header := color.New(color.FgCyan, color.Bold)
	header.Printf("Archive %s\n", path)
	fmt.Printf("  Format version: %d\n", env.Version)
	fmt.Printf("  Compression:    %s\n", env.Algorithm)
	fmt.Printf("  Created:        %s\n", env.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("  Archive size:   %s\n", humanize.Bytes(uint64(len(data))))
	fmt.Println()

	recursive, err := table.RowCountRecursive()
	if err != nil {
		return err
	}
	header.Println("Root table")
	fmt.Printf("  Rows:           %d (%d in full tree)\n", table.RowCount(), recursive)
	fmt.Printf("  Columns:        %v\n", table.ColumnNames())
	fmt.Println()

	header.Println("Blobs")
	ids := make([]int, 0, len(env.Tables))
	for id := range env.Tables {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		name := fmt.Sprintf("table %d", id)
		if id == datatable.RootBlobKey {
			name = "root"
		}
		fmt.Printf("  %-10s %s\n", name, humanize.Bytes(uint64(len(env.Tables[id]))))
	}
	return nil
}

func newMergeCmd() *cobra.Command {
	var output string
	var algorithm string
	cmd := &cobra.Command{
		Use:   "merge <archive-a> <archive-b>",
		Short: "Merge two archived reports into one",
		Long: `Load two archives, merge the second forest into the first with the
label-matched aggregation semantics, and write the combined archive.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mergeArchives(args[0], args[1], output, algorithm)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path for the merged archive (required)")
	_ = cmd.MarkFlagRequired("output")
	cmd.Flags().StringVar(&algorithm, "compression", string(compression.Snappy), "Compression algorithm (none, gzip, snappy, lz4, zstd, s2, deflate)")
	return cmd
}

func mergeArchives(pathA, pathB, output, algorithm string) error {
	log := runLogger("merge")
	mgr := datatable.NewManager()

	a, err := archive.DecodeFile(mgr, pathA)
	if err != nil {
		return err
	}
	b, err := archive.DecodeFile(mgr, pathB)
	if err != nil {
		return err
	}
	if err := a.AddDataTable(b); err != nil {
		return err
	}

	codec, err := archive.NewCodec(compression.Algorithm(algorithm), compression.Default)
	if err != nil {
		return err
	}
	if err := codec.EncodeToFile(a, datatable.SerializeOptions{}, output); err != nil {
		return err
	}
	log.Info("archives merged",
		zap.String("a", pathA),
		zap.String("b", pathB),
		zap.String("output", output),
		zap.Int("rows", a.RowCount()),
	)
	color.Green("Merged %s + %s -> %s (%d rows)", pathA, pathB, output, a.RowCount())
	return nil
}

func newConvertCmd() *cobra.Command {
	var output string
	var algorithm string
	var maxRows int
	var sortColumn string
	cmd := &cobra.Command{
		Use:   "convert <json>",
		Short: "Convert a simple JSON report to an archive",
		Long: `Read a JSON object in the simple form (label -> value, or
label -> {column: value}), load it as a table, and write it as an archive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return convertJSON(args[0], output, algorithm, maxRows, sortColumn)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path for the archive (required)")
	_ = cmd.MarkFlagRequired("output")
	cmd.Flags().StringVar(&algorithm, "compression", string(compression.Snappy), "Compression algorithm (none, gzip, snappy, lz4, zstd, s2, deflate)")
	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "Cap the archived row count, folding the excess into a summary row (0 = unlimited)")
	cmd.Flags().StringVar(&sortColumn, "sort-column", "", "Sort descending by this column before applying --max-rows")
	return cmd
}

func convertJSON(input, output, algorithm string, maxRows int, sortColumn string) error {
	log := runLogger("convert")
	data, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "read input file")
	}

	var simple map[string]interface{}
	if err := jsonpool.UnmarshalUseNumber(data, &simple); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConversion, "parse input JSON")
	}

	mgr := datatable.NewManager()
	table := mgr.NewTable()
	if err := table.AddRowsFromSimpleMap(simple); err != nil {
		return err
	}

	codec, err := archive.NewCodec(compression.Algorithm(algorithm), compression.Default)
	if err != nil {
		return err
	}
	opts := datatable.SerializeOptions{MaxRows: maxRows, SortColumn: sortColumn}
	if err := codec.EncodeToFile(table, opts, output); err != nil {
		return err
	}
	log.Info("report converted",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("rows", table.RowCount()),
	)
	color.Green("Converted %s -> %s (%d rows)", input, output, table.RowCount())
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and scaffold configuration files",
	}
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(output, config.NewConfig()); err != nil {
				return errors.Wrap(err, errors.ErrorTypeFile, "write config file")
			}
			color.Green("Wrote default configuration to %s", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "quasar.yaml", "Path for the configuration file")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Show the effective configuration loaded from a file",
		Long: `Load a YAML configuration file, substituting ${VAR_NAME} references
from the environment, and print the validated result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(args[0])
		},
	}
	return cmd
}

func showConfig(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	header := color.New(color.FgCyan, color.Bold)
	header.Printf("Configuration: %s\n", path)
	fmt.Printf("  Max depth:          %d\n", cfg.Limits.MaxDepth)
	fmt.Printf("  Max subtable rows:  %d\n", cfg.Limits.MaxSubtableRows)
	fmt.Printf("  Compression:        %s (level %d)\n", cfg.Serialization.Compression, cfg.Serialization.Level)
	fmt.Printf("  Metrics enabled:    %t\n", cfg.Observability.EnableMetrics)
	fmt.Printf("  Log level:          %s\n", cfg.Observability.LogLevel)
	return nil
}
