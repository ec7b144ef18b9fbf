// Package gitrepo provides repository introspection and tag operations,
// backed by go-git for reads and the git CLI for ref pushes.
package gitrepo

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"shipit.dev/shipit/internal/runner"
)

// Repository wraps a go-git repository
type Repository struct {
	*git.Repository
	path string
}

// Open opens the git repository containing path.
func Open(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := git.PlainOpenWithOptions(absPath, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	root := absPath
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}

	return &Repository{
		Repository: repo,
		path:       root,
	}, nil
}

// Root returns the root directory of the repository.
func (r *Repository) Root() string {
	return r.path
}

// HeadSHA returns the commit hash HEAD points at.
func (r *Repository) HeadSHA() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// TagsAtHead returns the names of all tags pointing at the HEAD commit.
// Annotated tags are resolved to their target commit.
func (r *Repository) TagsAtHead() ([]string, error) {
	head, err := r.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	iter, err := r.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		if tagObj, err := r.TagObject(hash); err == nil {
			hash = tagObj.Target
		}
		if hash == head.Hash() {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

// TagExists reports whether a tag with the given name exists.
func (r *Repository) TagExists(name string) (bool, error) {
	_, err := r.Reference(plumbing.NewTagReferenceName(name), true)
	if err == plumbing.ErrReferenceNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTag creates an annotated tag at HEAD.
func (r *Repository) CreateTag(ctx context.Context, name, message string) error {
	if message == "" {
		message = name
	}
	run := runner.New(runner.WithWorkingDir(r.path))
	_, err := run.Run(ctx, "git", "tag", "-a", name, "-m", message)
	return err
}

// PushTag pushes a tag to the origin remote.
func (r *Repository) PushTag(ctx context.Context, name string) error {
	run := runner.New(runner.WithWorkingDir(r.path))
	_, err := run.Run(ctx, "git", "push", "origin", "refs/tags/"+name)
	return err
}

// OriginOwnerRepo parses the owner and repository name from the origin remote URL.
func (r *Repository) OriginOwnerRepo() (owner, repo string, err error) {
	remote, err := r.Remote("origin")
	if err != nil {
		return "", "", fmt.Errorf("failed to get origin remote: %w", err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", "", fmt.Errorf("origin remote has no URL")
	}
	return ParseRemoteURL(urls[0])
}

// ParseRemoteURL extracts owner and repo from a remote URL.
// Handles both https and ssh formats:
//
//	https://github.com/owner/repo.git
//	git@github.com:owner/repo.git
func ParseRemoteURL(url string) (owner, repo string, err error) {
	url = strings.TrimSuffix(url, ".git")
	parts := strings.Split(url, "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("invalid remote URL %q", url)
	}

	repo = parts[len(parts)-1]
	if strings.Contains(url, "@") && strings.Contains(url, ":") && !strings.Contains(url, "://") {
		// SSH format: git@github.com:owner/repo
		_, path, _ := strings.Cut(url, ":")
		pathParts := strings.Split(path, "/")
		if len(pathParts) < 2 {
			return "", "", fmt.Errorf("invalid SSH remote URL %q", url)
		}
		owner = pathParts[0]
	} else {
		owner = parts[len(parts)-2]
	}

	if owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid remote URL %q", url)
	}
	return owner, repo, nil
}
