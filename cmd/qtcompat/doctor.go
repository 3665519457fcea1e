package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/plotkit/qtcompat/internal/adapter/output"
	"github.com/plotkit/qtcompat/internal/config"
	"github.com/plotkit/qtcompat/internal/diag"
)

var doctorOpts struct {
	format string
	noSave bool
	watch  bool
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose binding resolution and record a report",
	Long: `Run one full resolution and print a diagnosis report.

The report records the environment, every candidate in probe order, each
resolver decision, and the outcome. Reports are appended to the history
file unless --no-save is given, and the configured retention is applied
after each append.

With --watch, the config file is watched and a fresh report is printed
whenever it changes.

Examples:
  # Diagnose with two synthetic bindings installed
  qtcompat doctor --with pyqt6,pyside2

  # Machine-readable output
  qtcompat doctor --format json

  # Include the resolver trace
  qtcompat doctor --with pyqt5 --verbose

  # Re-diagnose on config changes
  qtcompat doctor --watch`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().StringVarP(&doctorOpts.format, "format", "f", "",
		"Output format (plain, json, yaml; default from config)")
	doctorCmd.Flags().BoolVar(&doctorOpts.noSave, "no-save", false,
		"Do not append the report to history")
	doctorCmd.Flags().BoolVar(&doctorOpts.watch, "watch", false,
		"Re-diagnose whenever the config file changes")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(doctorOpts.format)
	if err != nil {
		return err
	}

	if err := diagnoseOnce(formatter); err != nil {
		return err
	}
	if !doctorOpts.watch {
		return nil
	}

	return watchAndDiagnose(formatter)
}

// diagnoseOnce collects one report, persists it, and prints it.
func diagnoseOnce(formatter output.Formatter) error {
	cands, err := candidateSet()
	if err != nil {
		return err
	}

	report, _ := diag.Collect(diag.CollectOptions{
		Candidates: cands,
		Backend:    backendName(),
		ConfigPath: configFilePath(),
		Logger:     logger,
	})

	if !doctorOpts.noSave {
		if err := saveReport(report); err != nil {
			logger.Warn("failed to save report", "error", err)
		}
	}

	return formatter.Format(os.Stdout, report)
}

// saveReport appends the report to history and applies the configured
// retention.
func saveReport(report *diag.Report) error {
	hist, err := diag.NewHistory(historyPath())
	if err != nil {
		return err
	}
	defer hist.Close()

	if err := hist.Append(*report); err != nil {
		return err
	}

	removed, err := hist.Prune(cfg.History.MaxAge.Duration(), cfg.History.MaxReports)
	if err != nil {
		return err
	}
	if removed > 0 {
		logger.Debug("pruned old reports", "count", removed)
	}
	return nil
}

// watchAndDiagnose re-diagnoses on config changes until interrupted.
func watchAndDiagnose(formatter output.Formatter) error {
	path := configFilePath()

	events := make(chan struct{}, 1)
	watcher, err := diag.NewWatcher(path, cfg.Watch.Debounce.Duration(), func() {
		select {
		case events <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	defer watcher.Stop()

	logger.Info("watching config", "path", path)

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-events:
			// Reload so backend and simulate changes take effect
			next, err := config.LoadConfig(globalOpts.configPath)
			if err != nil {
				logger.Warn("config reload failed", "error", err)
			} else {
				cfg = next
			}
			if err := diagnoseOnce(formatter); err != nil {
				logger.Warn("diagnosis failed", "error", err)
			}
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			return nil
		}
	}
}
