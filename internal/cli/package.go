package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/ci"
	"shipit.dev/shipit/internal/packaging"
	"shipit.dev/shipit/internal/tui"
)

// newPackageCmd creates the package command
func newPackageCmd(configPath *string) *cobra.Command {
	var tagName string

	cmd := &cobra.Command{
		Use:          "package",
		Short:        "Copy the built binary into the staging directory",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
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

			env, err := ci.Detect()
			if err != nil {
				return err
			}
			tag, err := resolveTag(tagName, env, repo)
			if err != nil {
				return err
			}

			artifacts, err := packaging.Stage(packaging.Options{
				ArtifactPath: filepath.Join(repo.Root(), cfg.Build.Artifact),
				StagingDir:   filepath.Join(repo.Root(), cfg.Package.StagingDir),
				Name:         cfg.ArtifactName(),
				TagName:      tag.String(),
				Archive:      cfg.Package.Archive,
				Checksum:     cfg.Package.Checksum,
			})
			if err != nil {
				return err
			}

			for _, artifact := range artifacts {
				splog.Info("%s Staged %s (%d bytes)", tui.ColorGreen("✓"), artifact.Name, artifact.Size)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tagName, "tag", "", "Release tag used in archive names")

	return cmd
}
