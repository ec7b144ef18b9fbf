package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"shipit.dev/shipit/internal/ci"
	"shipit.dev/shipit/internal/config"
	shipiterrors "shipit.dev/shipit/internal/errors"
	"shipit.dev/shipit/internal/github"
	"shipit.dev/shipit/internal/gitrepo"
	"shipit.dev/shipit/internal/semver"
	"shipit.dev/shipit/internal/tui"
)

// timeRounding trims stage durations for display.
const timeRounding = 10 * time.Millisecond

// loadConfig loads the pipeline configuration, from --config when given,
// otherwise from shipit.toml at the repo root.
func loadConfig(configPath, repoRoot string) (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadFromDir(repoRoot)
}

// openRepo opens the enclosing git repository.
func openRepo() (*gitrepo.Repository, error) {
	repo, err := gitrepo.Open(".")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	return repo, nil
}

// newSplog creates the logger used by all commands, with the debug logfile attached.
func newSplog() *tui.Splog {
	splog, err := tui.NewSplogWithConfig(tui.GetLogFilePath())
	if err != nil {
		return tui.NewSplog()
	}
	return splog
}

// resolveTag determines the release tag for this invocation.
//
// Order: the --tag flag, the CI tag-push ref, then tags pointing at HEAD
// (highest first). Non-matching names from the flag are an error; a CI ref
// that is not a release tag means the run is simply not triggered.
func resolveTag(flagValue string, env *ci.Environment, repo *gitrepo.Repository) (semver.Tag, error) {
	if flagValue != "" {
		return semver.Parse(flagValue)
	}

	if env != nil {
		if name := env.TagName(); name != "" {
			tag, err := semver.Parse(name)
			if err != nil {
				return semver.Tag{}, fmt.Errorf("%w: pushed tag %q is not a release tag", shipiterrors.ErrNotTriggered, name)
			}
			return tag, nil
		}
	}

	if repo != nil {
		names, err := repo.TagsAtHead()
		if err != nil {
			return semver.Tag{}, err
		}
		var tags []semver.Tag
		for _, name := range names {
			if tag, err := semver.Parse(name); err == nil {
				tags = append(tags, tag)
			}
		}
		if len(tags) > 0 {
			sort.Slice(tags, func(i, j int) bool {
				return semver.Compare(tags[i], tags[j]) > 0
			})
			return tags[0], nil
		}
	}

	return semver.Tag{}, fmt.Errorf("%w: pass --tag or push a v<major>.<minor>.<patch> tag", shipiterrors.ErrNotTriggered)
}

// resolveOwnerRepo determines the repository to publish to: the config
// override, the CI environment, then the origin remote.
func resolveOwnerRepo(cfg *config.Config, env *ci.Environment, repo *gitrepo.Repository) (owner, name string, err error) {
	if cfg.Release.Repository != "" {
		owner, name, ok := splitOwnerRepo(cfg.Release.Repository)
		if !ok {
			return "", "", fmt.Errorf("release.repository must be owner/repo (got %q)", cfg.Release.Repository)
		}
		return owner, name, nil
	}

	if env != nil {
		if owner, name, ok := env.OwnerRepo(); ok {
			return owner, name, nil
		}
	}

	if repo != nil {
		return repo.OriginOwnerRepo()
	}

	return "", "", fmt.Errorf("could not determine repository owner and name")
}

func splitOwnerRepo(s string) (owner, repo string, ok bool) {
	owner, repo, ok = strings.Cut(s, "/")
	return owner, repo, ok && owner != "" && repo != ""
}

// newGitHubClient resolves the token and builds the release API client.
func newGitHubClient(ctx context.Context, tokenOpts config.TokenOptions, cfg *config.Config, env *ci.Environment, repo *gitrepo.Repository) (github.Client, error) {
	token, err := config.ResolveToken(ctx, tokenOpts)
	if err != nil {
		return nil, err
	}
	owner, name, err := resolveOwnerRepo(cfg, env, repo)
	if err != nil {
		return nil, err
	}
	return github.NewRealClient(ctx, token, owner, name), nil
}
