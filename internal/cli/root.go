// Package cli implements the shipit command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/tui"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	var (
		configPath string
		colorMode  string
	)

	rootCmd := &cobra.Command{
		Use:   "shipit",
		Short: "Shipit builds, tests, packages, and publishes release binaries from version tags",
		Long: `Shipit is a release pipeline runner. When a version tag (v1.2.3) is pushed,
it builds the project in release mode, runs the test suite, stages the
resulting binary, and uploads it as a release asset.

Run "shipit run" in CI, or locally with --dry-run to rehearse a release.`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		PersistentPreRun: func(*cobra.Command, []string) {
			tui.ConfigureColor(colorMode)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to shipit.toml (defaults to the repo root)")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Color output: auto, always, never")

	// Add subcommands
	rootCmd.AddCommand(newRunCmd(&configPath))
	rootCmd.AddCommand(newBuildCmd(&configPath))
	rootCmd.AddCommand(newTestCmd(&configPath))
	rootCmd.AddCommand(newPackageCmd(&configPath))
	rootCmd.AddCommand(newPublishCmd(&configPath))
	rootCmd.AddCommand(newTagCmd())
	rootCmd.AddCommand(newDoctorCmd(&configPath))
	rootCmd.AddCommand(newInitCmd(&configPath))

	return rootCmd
}
