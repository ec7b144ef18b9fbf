package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/runner"
	"shipit.dev/shipit/internal/tui"
)

// newBuildCmd creates the build command
func newBuildCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "build",
		Short:        "Build the project in release mode",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			splog := newSplog()
			defer func() { _ = splog.Close() }()

			repo, err := openRepo()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(*configPath, repo.Root())
			if err != nil {
				return err
			}

			splog.Info("Building with: %s", cfg.Build.Command)
			run := runner.New(runner.WithWorkingDir(repo.Root()), runner.WithStream(os.Stdout))
			if _, err := run.RunShell(cmd.Context(), cfg.Build.Command); err != nil {
				return err
			}

			if _, statErr := os.Stat(filepath.Join(repo.Root(), cfg.Build.Artifact)); statErr == nil {
				splog.Info("%s Built %s", tui.ColorGreen("✓"), cfg.Build.Artifact)
			} else {
				splog.Warn("Build succeeded but %s does not exist yet", cfg.Build.Artifact)
			}
			return nil
		},
	}
	return cmd
}
