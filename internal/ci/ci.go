// Package ci detects the CI environment and the release-triggering tag.
package ci

import (
	"strings"

	"github.com/caarlos0/env/v11"
)

// Environment is a typed view of the GitHub Actions variables shipit cares about.
// See https://docs.github.com/en/actions/learn-github-actions/environment-variables
type Environment struct {
	Actions    bool   `env:"GITHUB_ACTIONS"`
	Ref        string `env:"GITHUB_REF"`
	RefType    string `env:"GITHUB_REF_TYPE"` // "branch" or "tag"
	RefName    string `env:"GITHUB_REF_NAME"`
	SHA        string `env:"GITHUB_SHA"`
	Repository string `env:"GITHUB_REPOSITORY"` // "owner/repo"
	RunID      string `env:"GITHUB_RUN_ID"`
	ServerURL  string `env:"GITHUB_SERVER_URL"`
	Token      string `env:"GITHUB_TOKEN"`
}

// Detect reads the CI environment from process env vars.
func Detect() (*Environment, error) {
	e := &Environment{}
	if err := env.Parse(e); err != nil {
		return nil, err
	}
	return e, nil
}

// IsCI reports whether the process is running under GitHub Actions.
func (e *Environment) IsCI() bool {
	return e.Actions
}

// TagName returns the tag that triggered the workflow, or "" when the
// run was not triggered by a tag push.
func (e *Environment) TagName() string {
	if e.RefType == "tag" && e.RefName != "" {
		return e.RefName
	}
	// Older runners only set GITHUB_REF.
	if name, ok := strings.CutPrefix(e.Ref, "refs/tags/"); ok {
		return name
	}
	return ""
}

// OwnerRepo splits GITHUB_REPOSITORY into its owner and repo parts.
func (e *Environment) OwnerRepo() (owner, repo string, ok bool) {
	owner, repo, ok = strings.Cut(e.Repository, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", false
	}
	return owner, repo, true
}
