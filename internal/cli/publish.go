package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/ci"
	"shipit.dev/shipit/internal/config"
	"shipit.dev/shipit/internal/packaging"
	"shipit.dev/shipit/internal/pipeline"
	"shipit.dev/shipit/internal/tui"
)

// newPublishCmd creates the publish command
func newPublishCmd(configPath *string) *cobra.Command {
	var (
		tagName string
		token   string
		envFile string
		yes     bool
	)

	cmd := &cobra.Command{
		Use:          "publish",
		Short:        "Stage the built binary and upload it as a release asset",
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

			env, err := ci.Detect()
			if err != nil {
				return err
			}
			tag, err := resolveTag(tagName, env, repo)
			if err != nil {
				return err
			}

			// Publishing from a laptop is deliberate; CI is not asked.
			if !env.IsCI() && !yes && tui.IsTTY() {
				ok, err := tui.Confirm(fmt.Sprintf("Upload release assets for %s?", tag), false)
				if err != nil {
					return err
				}
				if !ok {
					splog.Info("Aborted")
					return nil
				}
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

			sha, err := repo.HeadSHA()
			if err != nil {
				return err
			}

			client, err := newGitHubClient(cmd.Context(), config.TokenOptions{
				Token:   token,
				EnvFile: envFile,
				Dir:     repo.Root(),
			}, cfg, env, repo)
			if err != nil {
				return err
			}

			result, err := pipeline.Publish(cmd.Context(), client, cfg, tag, sha, artifacts)
			if err != nil {
				return err
			}

			splog.Info("Release %s: %s", tui.ColorTagName(result.Release.TagName), result.Release.HTMLURL)
			for _, asset := range result.Uploaded {
				splog.Info("  %s uploaded %s (%d bytes)", tui.ColorGreen("✓"), asset.Name, asset.Size)
			}
			for _, name := range result.Skipped {
				splog.Info("  %s already present, skipped", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tagName, "tag", "", "Release tag (defaults to the CI tag push or a tag at HEAD)")
	cmd.Flags().StringVar(&token, "token", "", "Authentication token for the upload")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Read the token from this dotenv file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
