// Package testhelpers provides fixtures shared across shipit tests.
package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// GitRepo is a throwaway git repository for tests.
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a git repository with one commit in a temp directory.
func NewGitRepo(t *testing.T) *GitRepo {
	t.Helper()

	dir := t.TempDir()
	repo := &GitRepo{Dir: dir}

	// Use -c flags and GIT_CONFIG_GLOBAL=/dev/null so the host's git
	// configuration cannot leak into tests.
	cmd := exec.Command("git", "-c", "init.defaultBranch=main", "-c", "core.autocrlf=false", "init", dir, "-b", "main")
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	repo.Git(t, "config", "user.name", "Test User")
	repo.Git(t, "config", "user.email", "test@example.com")

	repo.WriteFile(t, "README.md", "test repo\n")
	repo.Git(t, "add", ".")
	repo.Git(t, "commit", "-m", "initial commit")

	return repo
}

// Git runs a git command in the repository and fails the test on error.
func (r *GitRepo) Git(t *testing.T, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// WriteFile writes a file relative to the repository root.
func (r *GitRepo) WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(r.Dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// Commit stages everything and commits with the given message.
func (r *GitRepo) Commit(t *testing.T, message string) {
	t.Helper()
	r.Git(t, "add", ".")
	r.Git(t, "commit", "-m", message)
}

// Tag creates an annotated tag at HEAD.
func (r *GitRepo) Tag(t *testing.T, name string) {
	t.Helper()
	r.Git(t, "tag", "-a", name, "-m", fmt.Sprintf("release %s", name))
}

// SetOrigin points the origin remote at url without contacting it.
func (r *GitRepo) SetOrigin(t *testing.T, url string) {
	t.Helper()
	r.Git(t, "remote", "add", "origin", url)
}

// HeadSHA returns the commit hash of HEAD.
func (r *GitRepo) HeadSHA(t *testing.T) string {
	t.Helper()
	return r.Git(t, "rev-parse", "HEAD")
}
