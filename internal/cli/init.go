package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/config"
)

// newInitCmd creates the init command
func newInitCmd(configPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:          "init",
		Short:        "Write a starter shipit.toml",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			splog := newSplog()
			defer func() { _ = splog.Close() }()

			repo, err := openRepo()
			if err != nil {
				return err
			}

			path := *configPath
			if path == "" {
				path = filepath.Join(repo.Root(), config.DefaultFileName)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.Default()
			cfg.Project.Name = filepath.Base(repo.Root())
			cfg.Build.Command = fmt.Sprintf("go build -o bin/%s .", cfg.Project.Name)
			cfg.Build.Artifact = filepath.Join("bin", cfg.Project.Name)

			if err := cfg.Save(path); err != nil {
				return err
			}
			splog.Info("Wrote %s", path)
			splog.Info("Edit the build command, then push a version tag to cut a release.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
