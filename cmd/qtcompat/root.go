// Package main provides the CLI entrypoint for qtcompat.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/plotkit/qtcompat"
	"github.com/plotkit/qtcompat/internal/adapter/output"
	"github.com/plotkit/qtcompat/internal/config"
	"github.com/plotkit/qtcompat/internal/sim"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose     bool
		historyFile string
		configPath  string
		backend     string
		with        []string
		preloaded   []string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "qtcompat",
	Short: "Qt binding resolution inspector",
	Long: `qtcompat resolves which Qt for Python binding a process would bind and
explains why.

It applies the same precedence as the embedding shim: an already-loaded
binding wins, then the QT_API environment variable, then the fixed probe
order PyQt6, PySide6, PyQt5, PySide2.

On machines with no binding installed, synthetic candidates can be
supplied with --with and --preloaded to exercise the full procedure.

Running qtcompat without a subcommand launches the interactive enum
inspector.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logging
		setupLogger()

		// Load configuration
		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Re-apply the configured log level now that config is known
		setupLogger()

		if err := config.EnsureDataDir(); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}

		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.historyFile, "history-file", "",
		"Path to report history file (default: ~/.local/share/qtcompat/reports.jsonl)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/qtcompat/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.backend, "backend", "",
		"Rendering backend name the resolver should consider (default: from config)")
	rootCmd.PersistentFlags().StringSliceVar(&globalOpts.with, "with", nil,
		"Synthetic bindings to treat as installed (pyqt6, pyside6, pyqt5, pyside2)")
	rootCmd.PersistentFlags().StringSliceVar(&globalOpts.preloaded, "preloaded", nil,
		"Synthetic bindings to treat as already loaded")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if cfg != nil {
		switch cfg.Log.Level {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// candidateSet merges the configured synthetic bindings with the global
// flags. With nothing configured, the process-registered candidates apply.
func candidateSet() ([]qtcompat.Candidate, error) {
	with := append(append([]string{}, cfg.Simulate.With...), globalOpts.with...)
	preloaded := append(append([]string{}, cfg.Simulate.Preloaded...), globalOpts.preloaded...)
	if len(with) == 0 && len(preloaded) == 0 {
		return qtcompat.Registered(), nil
	}
	return sim.Candidates(with, preloaded)
}

// backendName returns the backend the resolver should consider.
func backendName() string {
	if globalOpts.backend != "" {
		return globalOpts.backend
	}
	return cfg.Backend
}

// configFilePath returns the config file location in use.
func configFilePath() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.ConfigPath()
}

// historyPath returns the report history location in use.
func historyPath() string {
	if globalOpts.historyFile != "" {
		return globalOpts.historyFile
	}
	return config.HistoryPath()
}

// newFormatter builds a formatter from a per-command format flag, falling
// back to the configured default.
func newFormatter(name string) (output.Formatter, error) {
	if name == "" {
		name = cfg.Output.Format
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(format, output.FormatterOptions{Verbose: globalOpts.verbose}), nil
}

// getConfig returns the global config instance.
func getConfig() *config.Config {
	return cfg
}
