package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plotkit/qtcompat"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Explain how the environment affects binding selection",
	Long: `Show the selection-related environment variables and how they would be
interpreted against the configured backend.

QT_API can only ever select a legacy binding, and only when the backend
is one of the Qt5 era names. Against any other backend a recognized value
is ignored and an unrecognized value fails resolution outright.`,
	RunE: runEnv,
}

func init() {
	rootCmd.AddCommand(envCmd)
}

func runEnv(cmd *cobra.Command, args []string) error {
	backend := backendName()

	fmt.Printf("Backend:           %s\n", orNone(backend))
	fmt.Printf("Legacy compatible: %v\n", qtcompat.LegacyCompatibleBackend(backend))
	fmt.Println()

	raw, set := os.LookupEnv(qtcompat.EnvOverride)
	if !set || raw == "" {
		fmt.Printf("%s: (unset)\n", qtcompat.EnvOverride)
	} else {
		fmt.Printf("%s: %s\n", qtcompat.EnvOverride, raw)
		fmt.Printf("  %s\n", explainOverride(raw, backend))
	}

	layer, set := os.LookupEnv(qtcompat.EnvMacWantsLayer)
	if set {
		fmt.Printf("%s: %s\n", qtcompat.EnvMacWantsLayer, layer)
	} else {
		fmt.Printf("%s: (unset)\n", qtcompat.EnvMacWantsLayer)
	}
	fmt.Println()

	fmt.Printf("Recognized values: %s\n", strings.Join(qtcompat.RecognizedOverrides(), ", "))
	fmt.Println("Legacy selectors:")
	for _, o := range qtcompat.LegacyOverrides() {
		fmt.Printf("  %-8s selects %s (Qt %d)\n", o.Name, o.Binding, o.ToolkitMajor)
	}

	return nil
}

// explainOverride describes what the override value would do during
// resolution.
func explainOverride(raw, backend string) string {
	value, recognized := qtcompat.ParseOverride(raw)

	if qtcompat.LegacyCompatibleBackend(backend) {
		if recognized && value.Generation() == qtcompat.GenerationLegacy {
			return fmt.Sprintf("selects %s with backend %s", value, backend)
		}
		return fmt.Sprintf("not usable with backend %s; probing runs instead", backend)
	}

	if recognized {
		return "recognized but not applicable here; probing runs instead"
	}
	return "unrecognized; resolution would fail"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
