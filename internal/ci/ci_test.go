package ci

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func clearGitHubEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GITHUB_ACTIONS", "GITHUB_REF", "GITHUB_REF_TYPE", "GITHUB_REF_NAME",
		"GITHUB_SHA", "GITHUB_REPOSITORY", "GITHUB_RUN_ID", "GITHUB_SERVER_URL",
		"GITHUB_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func TestDetect(t *testing.T) {
	t.Run("reads a tag-push environment", func(t *testing.T) {
		clearGitHubEnv(t)
		t.Setenv("GITHUB_ACTIONS", "true")
		t.Setenv("GITHUB_REF", "refs/tags/v1.2.3")
		t.Setenv("GITHUB_REF_TYPE", "tag")
		t.Setenv("GITHUB_REF_NAME", "v1.2.3")
		t.Setenv("GITHUB_REPOSITORY", "octocat/widget")
		t.Setenv("GITHUB_SHA", "deadbeef")

		e, err := Detect()
		require.NoError(t, err)
		require.True(t, e.IsCI())
		require.Equal(t, "v1.2.3", e.TagName())

		owner, repo, ok := e.OwnerRepo()
		require.True(t, ok)
		require.Equal(t, "octocat", owner)
		require.Equal(t, "widget", repo)
	})

	t.Run("outside CI nothing is detected", func(t *testing.T) {
		clearGitHubEnv(t)

		e, err := Detect()
		require.NoError(t, err)
		require.False(t, e.IsCI())
		require.Empty(t, e.TagName())

		_, _, ok := e.OwnerRepo()
		require.False(t, ok)
	})

	t.Run("branch pushes do not yield a tag", func(t *testing.T) {
		clearGitHubEnv(t)
		t.Setenv("GITHUB_ACTIONS", "true")
		t.Setenv("GITHUB_REF", "refs/heads/main")
		t.Setenv("GITHUB_REF_TYPE", "branch")
		t.Setenv("GITHUB_REF_NAME", "main")

		e, err := Detect()
		require.NoError(t, err)
		require.Empty(t, e.TagName())
	})

	t.Run("falls back to GITHUB_REF when ref type is unset", func(t *testing.T) {
		clearGitHubEnv(t)
		t.Setenv("GITHUB_REF", "refs/tags/v0.1.0-rc.1")

		e, err := Detect()
		require.NoError(t, err)
		require.Equal(t, "v0.1.0-rc.1", e.TagName())
	})
}
