package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/kballard/go-shellquote"

	"shipit.dev/shipit/internal/config"
	shipiterrors "shipit.dev/shipit/internal/errors"
	"shipit.dev/shipit/internal/github"
	"shipit.dev/shipit/internal/packaging"
	"shipit.dev/shipit/internal/runner"
	"shipit.dev/shipit/internal/semver"
)

// Stage names, in execution order.
const (
	StageSetup   = "setup"
	StageBuild   = "build"
	StageTest    = "test"
	StagePackage = "package"
	StagePublish = "publish"
)

// Options configure a release run.
type Options struct {
	Config   *config.Config
	RepoRoot string
	Tag      semver.Tag
	// SHA is the commit the release targets; optional.
	SHA string
	// Client performs the upload. May be nil for dry runs.
	Client github.Client
	// DryRun skips the publish stage.
	DryRun bool
	// SkipTests skips the verify stage.
	SkipTests bool
	// Output receives streamed build/test output. May be nil.
	Output io.Writer
}

// Release is a planned release run. It carries state between stages
// (the packaged artifacts feed the publish stage).
type Release struct {
	opts      Options
	runner    *runner.Runner
	artifacts []packaging.Artifact
	release   *github.ReleaseInfo
	uploaded  []github.AssetInfo
	skipped   []string
}

// Plan builds the pipeline for a release run.
func Plan(opts Options) (*Release, *Pipeline) {
	runnerOpts := []runner.Option{runner.WithWorkingDir(opts.RepoRoot)}
	if opts.Output != nil {
		runnerOpts = append(runnerOpts, runner.WithStream(opts.Output))
	}

	r := &Release{
		opts:   opts,
		runner: runner.New(runnerOpts...),
	}

	p := New(
		Step{Name: StageSetup, Run: r.setup},
		Step{Name: StageBuild, Run: r.build},
		Step{Name: StageTest, Skip: r.skipTests, Run: r.test},
		Step{Name: StagePackage, Run: r.pack},
		Step{Name: StagePublish, Skip: r.skipPublish, Run: r.publish},
	)
	return r, p
}

// Artifacts returns the artifacts staged by the package stage.
func (r *Release) Artifacts() []packaging.Artifact {
	return r.artifacts
}

// ReleaseInfo returns the release the publish stage created or reused.
func (r *Release) ReleaseInfo() *github.ReleaseInfo {
	return r.release
}

// UploadedAssets returns the assets the publish stage uploaded.
func (r *Release) UploadedAssets() []github.AssetInfo {
	return r.uploaded
}

// SkippedAssets returns the names of assets already present on the release.
func (r *Release) SkippedAssets() []string {
	return r.skipped
}

// setup verifies the tools and credentials the later stages need.
func (r *Release) setup(context.Context) error {
	for _, command := range []string{r.opts.Config.Build.Command, r.opts.Config.Test.Command} {
		if command == "" {
			continue
		}
		words, err := shellquote.Split(command)
		if err != nil || len(words) == 0 {
			return fmt.Errorf("invalid command %q", command)
		}
		if _, ok := runner.LookPath(words[0]); !ok {
			return fmt.Errorf("%s is not installed or not in PATH", words[0])
		}
	}

	if !r.opts.DryRun && r.opts.Client == nil {
		return shipiterrors.ErrNoToken
	}
	return nil
}

func (r *Release) build(ctx context.Context) error {
	_, err := r.runner.RunShell(ctx, r.opts.Config.Build.Command)
	return err
}

func (r *Release) skipTests() (string, bool) {
	if r.opts.SkipTests {
		return "skipped by flag", true
	}
	if r.opts.Config.Test.Command == "" {
		return "no test command configured", true
	}
	return "", false
}

func (r *Release) test(ctx context.Context) error {
	_, err := r.runner.RunShell(ctx, r.opts.Config.Test.Command)
	return err
}

func (r *Release) pack(context.Context) error {
	cfg := r.opts.Config
	artifacts, err := packaging.Stage(packaging.Options{
		ArtifactPath: filepath.Join(r.opts.RepoRoot, cfg.Build.Artifact),
		StagingDir:   filepath.Join(r.opts.RepoRoot, cfg.Package.StagingDir),
		Name:         cfg.ArtifactName(),
		TagName:      r.opts.Tag.String(),
		Archive:      cfg.Package.Archive,
		Checksum:     cfg.Package.Checksum,
	})
	if err != nil {
		return err
	}
	r.artifacts = artifacts
	return nil
}

func (r *Release) skipPublish() (string, bool) {
	if r.opts.DryRun {
		return "dry run", true
	}
	return "", false
}

func (r *Release) publish(ctx context.Context) error {
	result, err := Publish(ctx, r.opts.Client, r.opts.Config, r.opts.Tag, r.opts.SHA, r.artifacts)
	if err != nil {
		return err
	}
	r.release = result.Release
	r.uploaded = result.Uploaded
	r.skipped = result.Skipped
	return nil
}

// PublishResult describes what the publish stage did.
type PublishResult struct {
	Release  *github.ReleaseInfo
	Uploaded []github.AssetInfo
	Skipped  []string
}

// Publish creates (or reuses) the release for the tag and uploads the
// staged artifacts. Assets already on the release are left untouched so a
// re-run after a partial failure does not duplicate uploads.
func Publish(ctx context.Context, client github.Client, cfg *config.Config, tag semver.Tag, sha string, artifacts []packaging.Artifact) (*PublishResult, error) {
	tagName := tag.String()

	release, err := client.GetReleaseByTag(ctx, tagName)
	if err != nil {
		return nil, err
	}
	if release == nil {
		release, err = client.CreateRelease(ctx, github.CreateReleaseOptions{
			TagName:    tagName,
			TargetSHA:  sha,
			Name:       tagName,
			Draft:      cfg.Release.Draft,
			Prerelease: cfg.Release.Prerelease || tag.IsPrerelease(),
		})
		if err != nil {
			return nil, err
		}
	}

	existing, err := client.ListAssets(ctx, release.ID)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(existing))
	for _, asset := range existing {
		present[asset.Name] = true
	}

	result := &PublishResult{Release: release}
	for _, artifact := range artifacts {
		if present[artifact.Name] {
			result.Skipped = append(result.Skipped, artifact.Name)
			continue
		}
		uploaded, err := client.UploadAsset(ctx, release.ID, artifact.Path)
		if err != nil {
			return nil, err
		}
		result.Uploaded = append(result.Uploaded, *uploaded)
	}

	return result, nil
}
