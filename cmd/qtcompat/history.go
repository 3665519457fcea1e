package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/plotkit/qtcompat/internal/diag"
)

// historyCmd represents the history command group.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and maintain recorded reports",
	Long: `Browse and maintain the persistent report history.

Use 'qtcompat history list' to list recorded reports.
Use 'qtcompat history show <id>' to print one report.
Use 'qtcompat history prune' to apply retention.
Use 'qtcompat history clear' to drop everything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to listing
		return historyListRun(cmd, args)
	},
}

var historyListOpts struct {
	format string
	limit  int
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded reports",
	RunE:  historyListRun,
}

var historyShowOpts struct {
	format string
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one recorded report",
	Long:  `Print one recorded report, looked up by its full ID or a unique prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  historyShowRun,
}

var historyPruneOpts struct {
	olderThan string
	keep      int
	dryRun    bool
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old reports from history",
	Long: `Remove old reports from the persistent history.

Without flags the configured retention applies.

Examples:
  # Remove reports older than a week
  qtcompat history prune --older-than 168h

  # Keep only the 50 most recent reports
  qtcompat history prune --keep 50

  # Preview what would be removed
  qtcompat history prune --older-than 48h --dry-run`,
	RunE: historyPruneRun,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded reports",
	RunE:  historyClearRun,
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
	historyCmd.AddCommand(historyClearCmd)

	historyListCmd.Flags().StringVarP(&historyListOpts.format, "format", "f", "",
		"Output format (plain, json, yaml; default from config)")
	historyListCmd.Flags().IntVarP(&historyListOpts.limit, "limit", "n", 0,
		"Maximum number of reports to show, newest last (0=unlimited)")

	historyShowCmd.Flags().StringVarP(&historyShowOpts.format, "format", "f", "",
		"Output format (plain, json, yaml; default from config)")

	historyPruneCmd.Flags().StringVar(&historyPruneOpts.olderThan, "older-than", "",
		"Remove reports older than this duration (e.g., 48h, 168h)")
	historyPruneCmd.Flags().IntVar(&historyPruneOpts.keep, "keep", 0,
		"Keep only the N most recent reports (0=unlimited)")
	historyPruneCmd.Flags().BoolVar(&historyPruneOpts.dryRun, "dry-run", false,
		"Show what would be removed without actually removing")

	rootCmd.AddCommand(historyCmd)
}

// loadReports opens the history file and reads everything, oldest first.
func loadReports() ([]diag.Report, error) {
	hist, err := diag.NewHistory(historyPath())
	if err != nil {
		return nil, err
	}
	defer hist.Close()
	return hist.Load()
}

func historyListRun(cmd *cobra.Command, args []string) error {
	reports, err := loadReports()
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("No reports recorded")
		return nil
	}

	if historyListOpts.limit > 0 && len(reports) > historyListOpts.limit {
		reports = reports[len(reports)-historyListOpts.limit:]
	}

	formatter, err := newFormatter(historyListOpts.format)
	if err != nil {
		return err
	}
	return formatter.FormatList(os.Stdout, reports)
}

func historyShowRun(cmd *cobra.Command, args []string) error {
	reports, err := loadReports()
	if err != nil {
		return err
	}

	// ULIDs are upper case; accept any case and unique prefixes
	id := strings.ToUpper(strings.TrimSpace(args[0]))
	var match *diag.Report
	for i := range reports {
		if !strings.HasPrefix(reports[i].ID, id) {
			continue
		}
		if match != nil {
			return fmt.Errorf("report id %q is ambiguous", args[0])
		}
		match = &reports[i]
	}
	if match == nil {
		return fmt.Errorf("report %s not found", args[0])
	}

	formatter, err := newFormatter(historyShowOpts.format)
	if err != nil {
		return err
	}
	return formatter.Format(os.Stdout, match)
}

func historyPruneRun(cmd *cobra.Command, args []string) error {
	maxAge := cfg.History.MaxAge.Duration()
	keep := cfg.History.MaxReports

	if historyPruneOpts.olderThan != "" {
		d, err := time.ParseDuration(historyPruneOpts.olderThan)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		maxAge = d
	}
	if historyPruneOpts.keep > 0 {
		keep = historyPruneOpts.keep
	}

	if historyPruneOpts.dryRun {
		reports, err := loadReports()
		if err != nil {
			return err
		}

		_, doomed := diag.Retain(reports, maxAge, keep)
		if len(doomed) == 0 {
			fmt.Println("No reports to remove")
			return nil
		}

		fmt.Printf("Would remove %d report(s):\n", len(doomed))
		for i, r := range doomed {
			if i >= 10 {
				fmt.Printf("  ... and %d more\n", len(doomed)-10)
				break
			}
			fmt.Printf("  - %s (%s)\n", r.ID, humanize.Time(r.GeneratedAt))
		}
		return nil
	}

	hist, err := diag.NewHistory(historyPath())
	if err != nil {
		return err
	}
	defer hist.Close()

	removed, err := hist.Prune(maxAge, keep)
	if err != nil {
		return err
	}
	if removed == 0 {
		fmt.Println("No reports to remove")
		return nil
	}
	fmt.Printf("Removed %d report(s)\n", removed)
	return nil
}

func historyClearRun(cmd *cobra.Command, args []string) error {
	hist, err := diag.NewHistory(historyPath())
	if err != nil {
		return err
	}
	defer hist.Close()

	if err := hist.Clear(); err != nil {
		return err
	}
	fmt.Println("History cleared")
	return nil
}
