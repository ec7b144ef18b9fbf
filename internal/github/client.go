// Package github provides a client for the GitHub release API.
package github

import (
	"context"
)

// ReleaseInfo contains information about a release.
// This is a simplified struct to avoid coupling to the go-github library.
type ReleaseInfo struct {
	ID         int64
	TagName    string
	Name       string
	HTMLURL    string
	Draft      bool
	Prerelease bool
}

// AssetInfo describes an uploaded release asset.
type AssetInfo struct {
	ID   int64
	Name string
	Size int
	URL  string
}

// CreateReleaseOptions are the options for creating a release.
type CreateReleaseOptions struct {
	TagName    string
	TargetSHA  string // commitish the tag should point at; optional when the tag exists
	Name       string
	Body       string
	Draft      bool
	Prerelease bool
}

// Client is an interface for GitHub release API interactions
type Client interface {
	// GetReleaseByTag returns the release for a tag, or nil when none exists
	GetReleaseByTag(ctx context.Context, tag string) (*ReleaseInfo, error)

	// CreateRelease creates a new release
	CreateRelease(ctx context.Context, opts CreateReleaseOptions) (*ReleaseInfo, error)

	// ListAssets returns the assets attached to a release
	ListAssets(ctx context.Context, releaseID int64) ([]AssetInfo, error)

	// UploadAsset uploads the file at path as a release asset
	UploadAsset(ctx context.Context, releaseID int64, path string) (*AssetInfo, error)

	// GetOwnerRepo returns the repository owner and name
	GetOwnerRepo() (owner, repo string)
}
