package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plotkit/qtcompat/internal/diag"
	"github.com/plotkit/qtcompat/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive enum inspector",
	Long: `Launch the interactive terminal browser over the resolved binding's
enum members.

The TUI provides:
  - Scrollable list of every enum member the binding exposes
  - Search/filter across member paths
  - Detail view with decimal and hex values
  - Copy to clipboard support

Key bindings:
  j/k, ↑/↓    Navigate list
  enter       View member details
  c           Copy member path to clipboard
  s           Copy value to clipboard
  /           Search members
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cands, err := candidateSet()
	if err != nil {
		return err
	}

	report, qt := diag.Collect(diag.CollectOptions{
		Candidates: cands,
		Backend:    backendName(),
		ConfigPath: configFilePath(),
		Logger:     logger,
	})
	if qt == nil {
		return fmt.Errorf("%s (hint: pass --with to simulate a binding)", report.Outcome.Error)
	}

	return tui.Run(tui.RunOptions{
		Config:  getConfig(),
		Context: qt,
		Report:  report,
	})
}
