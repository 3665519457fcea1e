package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plotkit/qtcompat"
)

var resolveOpts struct {
	enum  string
	quiet bool
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the active Qt binding",
	Long: `Run the resolution procedure once and print what was bound.

The exit status reflects the outcome: 0 when a binding was bound,
non-zero when resolution failed.

Examples:
  # Resolve against two synthetic bindings
  qtcompat resolve --with pyqt5,pyside2

  # Respect QT_API the way a Qt5 era backend would
  QT_API=pyside2 qtcompat resolve --with pyqt5,pyside2 --backend Qt5Agg

  # Look up an enum member on whatever was bound
  qtcompat resolve --with pyqt6 --enum QtCore.Qt.AlignmentFlag.AlignLeft

  # Exit status only
  qtcompat resolve --with pyqt6 --quiet`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&resolveOpts.enum, "enum", "",
		"Look up an enum member on the resolved binding and print its integer value")
	resolveCmd.Flags().BoolVarP(&resolveOpts.quiet, "quiet", "q", false,
		"Suppress the resolution summary, return exit status only")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cands, err := candidateSet()
	if err != nil {
		return err
	}

	ctx, err := qtcompat.Resolve(qtcompat.Options{
		Candidates: cands,
		Backend:    backendName(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	if !resolveOpts.quiet {
		b := ctx.Binding()
		fmt.Printf("%s %s (Qt %s)\n", b, ctx.Version(), ctx.ToolkitVersion())
		fmt.Printf("  generation: %s\n", b.Generation())
		fmt.Printf("  family:     %s\n", b.Family())
	}

	if resolveOpts.enum != "" {
		v, err := ctx.Enum(resolveOpts.enum)
		if err != nil {
			return err
		}
		n, err := ctx.ToInt(v)
		if err != nil {
			return err
		}
		fmt.Printf("%s = %d (0x%X)\n", resolveOpts.enum, n, n)
	}

	return nil
}
