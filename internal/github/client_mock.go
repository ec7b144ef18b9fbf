package github

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

// MockClient is a mock implementation of Client for testing purposes.
// It records calls and serves releases from memory without network access.
type MockClient struct {
	mu       sync.Mutex
	owner    string
	repo     string
	nextID   int64
	releases map[string]*ReleaseInfo
	assets   map[int64][]AssetInfo
	uploads  []string // paths passed to UploadAsset, in order

	mockGetError    error
	mockCreateError error
	mockUploadError error
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a new MockClient instance.
func NewMockClient(owner, repo string) *MockClient {
	return &MockClient{
		owner:    owner,
		repo:     repo,
		nextID:   1,
		releases: make(map[string]*ReleaseInfo),
		assets:   make(map[int64][]AssetInfo),
	}
}

// GetOwnerRepo implements Client.
func (m *MockClient) GetOwnerRepo() (string, string) {
	return m.owner, m.repo
}

// GetReleaseByTag implements Client.
func (m *MockClient) GetReleaseByTag(_ context.Context, tag string) (*ReleaseInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mockGetError != nil {
		return nil, m.mockGetError
	}
	release, ok := m.releases[tag]
	if !ok {
		return nil, nil
	}
	copied := *release
	return &copied, nil
}

// CreateRelease implements Client.
func (m *MockClient) CreateRelease(_ context.Context, opts CreateReleaseOptions) (*ReleaseInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mockCreateError != nil {
		return nil, m.mockCreateError
	}
	release := &ReleaseInfo{
		ID:         m.nextID,
		TagName:    opts.TagName,
		Name:       opts.Name,
		Draft:      opts.Draft,
		Prerelease: opts.Prerelease,
	}
	m.nextID++
	m.releases[opts.TagName] = release
	copied := *release
	return &copied, nil
}

// ListAssets implements Client.
func (m *MockClient) ListAssets(_ context.Context, releaseID int64) ([]AssetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AssetInfo(nil), m.assets[releaseID]...), nil
}

// UploadAsset implements Client.
func (m *MockClient) UploadAsset(_ context.Context, releaseID int64, path string) (*AssetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mockUploadError != nil {
		return nil, m.mockUploadError
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	// GitHub rejects duplicate asset names with a 422.
	name := filepath.Base(path)
	for _, existing := range m.assets[releaseID] {
		if existing.Name == name {
			return nil, fmt.Errorf("%w: %s", shipiterrors.ErrAssetExists, name)
		}
	}

	asset := AssetInfo{
		ID:   m.nextID,
		Name: name,
		Size: int(info.Size()),
	}
	m.nextID++
	m.assets[releaseID] = append(m.assets[releaseID], asset)
	m.uploads = append(m.uploads, path)
	return &asset, nil
}

// Uploads returns the asset paths uploaded so far, in call order.
func (m *MockClient) Uploads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uploads...)
}

// SetGetError makes GetReleaseByTag fail with err.
func (m *MockClient) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mockGetError = err
}

// SetCreateError makes CreateRelease fail with err.
func (m *MockClient) SetCreateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mockCreateError = err
}

// SetUploadError makes UploadAsset fail with err.
func (m *MockClient) SetUploadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mockUploadError = err
}
