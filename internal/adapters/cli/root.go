// Package cli provides the aps-engine command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aps-engine",
		Short: "APS engine - schedule decade plans into MES work orders",
		Long: `APS engine turns raw decade-plan rows into executable MES work
orders for the feeder (HWS) and packer (HJB) lines.

Examples:
  aps-engine schedule --input plans.json
  aps-engine schedule --input plans.json --task-id 2026-08-21-A --dry-run
  aps-engine migrate`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	rootCmd.AddCommand(NewScheduleCommand())
	rootCmd.AddCommand(NewMigrateCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
