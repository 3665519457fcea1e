package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// configCmd represents the config command group.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage configuration",
	Long: `Inspect the effective configuration and write a starting config file.

Use 'qtcompat config show' to print the effective configuration.
Use 'qtcompat config init' to write it to disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to showing the effective config
		return configShowRun(cmd, args)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Print the effective configuration as TOML, flags and defaults applied.`,
	RunE:  configShowRun,
}

var configInitOpts struct {
	force bool
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to disk",
	Long: `Write the effective configuration to the config file location, as a
starting point for editing.`,
	RunE: configInitRun,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&configInitOpts.force, "force", false,
		"Overwrite an existing config file")

	rootCmd.AddCommand(configCmd)
}

func configShowRun(cmd *cobra.Command, args []string) error {
	path := configFilePath()
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("# %s\n", path)
	} else {
		fmt.Printf("# %s (not present, showing defaults)\n", path)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func configInitRun(cmd *cobra.Command, args []string) error {
	path := configFilePath()
	if _, err := os.Stat(path); err == nil && !configInitOpts.force {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
