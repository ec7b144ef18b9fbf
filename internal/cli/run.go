package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/ci"
	"shipit.dev/shipit/internal/config"
	shipiterrors "shipit.dev/shipit/internal/errors"
	"shipit.dev/shipit/internal/github"
	"shipit.dev/shipit/internal/pipeline"
	"shipit.dev/shipit/internal/tui"
)

// newRunCmd creates the run command
func newRunCmd(configPath *string) *cobra.Command {
	var (
		tagName    string
		token      string
		envFile    string
		dryRun     bool
		skipTests  bool
		draft      bool
		prerelease bool
		verbose    bool
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:          "run",
		Short:        "Run the full release pipeline: setup, build, test, package, publish",
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
			if draft {
				cfg.Release.Draft = true
			}
			if prerelease {
				cfg.Release.Prerelease = true
			}

			env, err := ci.Detect()
			if err != nil {
				return err
			}

			tag, err := resolveTag(tagName, env, repo)
			if err != nil {
				if errors.Is(err, shipiterrors.ErrNotTriggered) {
					splog.Info("Nothing to release: %v", err)
					return nil
				}
				return err
			}

			sha, err := repo.HeadSHA()
			if err != nil {
				return err
			}

			var client github.Client
			if !dryRun {
				client, err = newGitHubClient(cmd.Context(), config.TokenOptions{
					Token:   token,
					EnvFile: envFile,
					Dir:     repo.Root(),
				}, cfg, env, repo)
				if err != nil {
					return err
				}
			}

			splog.Info("Releasing %s as %s", cfg.ArtifactName(), tui.ColorTagName(tag.String()))
			splog.Debug("commit %s", sha)

			opts := pipeline.Options{
				Config:    cfg,
				RepoRoot:  repo.Root(),
				Tag:       tag,
				SHA:       sha,
				Client:    client,
				DryRun:    dryRun,
				SkipTests: skipTests,
			}
			if verbose {
				opts.Output = os.Stdout
			}

			release, p := pipeline.Plan(opts)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if !noProgress && !verbose && tui.IsTTY() {
				splog.SetQuiet(true)
				_, err = tui.RunPipelineTUI(ctx, cancel, p)
				splog.SetQuiet(false)
			} else {
				p.OnStepStart(func(stage string) {
					splog.Info("▸ %s", stage)
				})
				p.OnStepDone(func(result pipeline.StepResult) {
					switch result.Status {
					case pipeline.StatusOK:
						splog.Info("  %s %s (%s)", tui.ColorGreen("✓"), result.Stage, result.Duration.Round(timeRounding))
					case pipeline.StatusSkipped:
						splog.Info("  %s %s (%s)", tui.ColorDim("−"), result.Stage, result.SkipReason)
					case pipeline.StatusFailed:
						splog.Error("%s failed: %v", result.Stage, result.Err)
					}
				})
				_, err = p.Run(ctx)
			}

			if err != nil {
				return err
			}

			for _, artifact := range release.Artifacts() {
				splog.Info("Staged %s (%d bytes, sha256 %s)", artifact.Name, artifact.Size, artifact.SHA256[:12])
			}
			if info := release.ReleaseInfo(); info != nil {
				splog.Newline()
				splog.Info("Release %s published: %s", tui.ColorTagName(info.TagName), info.HTMLURL)
				for _, name := range release.SkippedAssets() {
					splog.Info("  %s already present, skipped", name)
				}
			} else if dryRun {
				splog.Newline()
				splog.Info("Dry run complete; nothing was uploaded")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&tagName, "tag", "", "Release tag (defaults to the CI tag push or a tag at HEAD)")
	cmd.Flags().StringVar(&token, "token", "", "Authentication token for the upload")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Read the token from this dotenv file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run everything except the publish stage")
	cmd.Flags().BoolVar(&skipTests, "skip-tests", false, "Skip the test stage")
	cmd.Flags().BoolVar(&draft, "draft", false, "Create the release as a draft")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Mark the release as a pre-release")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Stream build and test output")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the interactive progress view")

	return cmd
}
