package github

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

// RealClient implements Client using the real GitHub API
type RealClient struct {
	client *github.Client
	owner  string
	repo   string
}

var _ Client = (*RealClient)(nil)

// NewRealClient creates a client authenticated with token for owner/repo.
func NewRealClient(ctx context.Context, token, owner, repo string) *RealClient {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &RealClient{
		client: github.NewClient(tc),
		owner:  owner,
		repo:   repo,
	}
}

// GetOwnerRepo returns the repository owner and name
func (c *RealClient) GetOwnerRepo() (string, string) {
	return c.owner, c.repo
}

// GetReleaseByTag returns the release for a tag, or nil when none exists
func (c *RealClient) GetReleaseByTag(ctx context.Context, tag string) (*ReleaseInfo, error) {
	release, resp, err := c.client.Repositories.GetReleaseByTag(ctx, c.owner, c.repo, tag)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get release for tag %s: %w", tag, err)
	}
	return toReleaseInfo(release), nil
}

// CreateRelease creates a new release
func (c *RealClient) CreateRelease(ctx context.Context, opts CreateReleaseOptions) (*ReleaseInfo, error) {
	release := &github.RepositoryRelease{
		TagName:    github.String(opts.TagName),
		Draft:      github.Bool(opts.Draft),
		Prerelease: github.Bool(opts.Prerelease),
	}
	if opts.Name != "" {
		release.Name = github.String(opts.Name)
	}
	if opts.Body != "" {
		release.Body = github.String(opts.Body)
	}
	if opts.TargetSHA != "" {
		release.TargetCommitish = github.String(opts.TargetSHA)
	}

	created, _, err := c.client.Repositories.CreateRelease(ctx, c.owner, c.repo, release)
	if err != nil {
		return nil, fmt.Errorf("failed to create release for tag %s: %w", opts.TagName, err)
	}
	return toReleaseInfo(created), nil
}

// ListAssets returns the assets attached to a release
func (c *RealClient) ListAssets(ctx context.Context, releaseID int64) ([]AssetInfo, error) {
	var infos []AssetInfo
	listOpts := &github.ListOptions{PerPage: 100}
	for {
		assets, resp, err := c.client.Repositories.ListReleaseAssets(ctx, c.owner, c.repo, releaseID, listOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to list release assets: %w", err)
		}
		for _, asset := range assets {
			infos = append(infos, toAssetInfo(asset))
		}
		if resp.NextPage == 0 {
			break
		}
		listOpts.Page = resp.NextPage
	}
	return infos, nil
}

// UploadAsset uploads the file at path as a release asset
func (c *RealClient) UploadAsset(ctx context.Context, releaseID int64, path string) (*AssetInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	uploaded, resp, err := c.client.Repositories.UploadReleaseAsset(ctx, c.owner, c.repo, releaseID, &github.UploadOptions{
		Name: filepath.Base(path),
	}, file)
	if err != nil {
		// A 422 means an asset with this name is already on the release.
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			return nil, fmt.Errorf("%w: %s", shipiterrors.ErrAssetExists, filepath.Base(path))
		}
		return nil, fmt.Errorf("failed to upload asset %s: %w", filepath.Base(path), err)
	}
	info := toAssetInfo(uploaded)
	return &info, nil
}

func toReleaseInfo(r *github.RepositoryRelease) *ReleaseInfo {
	info := &ReleaseInfo{}
	if r.ID != nil {
		info.ID = *r.ID
	}
	if r.TagName != nil {
		info.TagName = *r.TagName
	}
	if r.Name != nil {
		info.Name = *r.Name
	}
	if r.HTMLURL != nil {
		info.HTMLURL = *r.HTMLURL
	}
	if r.Draft != nil {
		info.Draft = *r.Draft
	}
	if r.Prerelease != nil {
		info.Prerelease = *r.Prerelease
	}
	return info
}

func toAssetInfo(a *github.ReleaseAsset) AssetInfo {
	info := AssetInfo{}
	if a.ID != nil {
		info.ID = *a.ID
	}
	if a.Name != nil {
		info.Name = *a.Name
	}
	if a.Size != nil {
		info.Size = *a.Size
	}
	if a.BrowserDownloadURL != nil {
		info.URL = *a.BrowserDownloadURL
	}
	return info
}
