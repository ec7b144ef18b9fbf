package cli

import (
	"os"

	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/runner"
	"shipit.dev/shipit/internal/tui"
)

// newTestCmd creates the test command
func newTestCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "test",
		Short:        "Run the project's test suite in release mode",
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

			if cfg.Test.Command == "" {
				splog.Info("No test command configured, nothing to run")
				return nil
			}

			splog.Info("Testing with: %s", cfg.Test.Command)
			run := runner.New(runner.WithWorkingDir(repo.Root()), runner.WithStream(os.Stdout))
			if _, err := run.RunShell(cmd.Context(), cfg.Test.Command); err != nil {
				return err
			}

			splog.Info("%s Tests passed", tui.ColorGreen("✓"))
			return nil
		},
	}
	return cmd
}
