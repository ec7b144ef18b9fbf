package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"shipit.dev/shipit/internal/ci"
	"shipit.dev/shipit/internal/config"
	shipiterrors "shipit.dev/shipit/internal/errors"
	"shipit.dev/shipit/internal/gitrepo"
	"shipit.dev/shipit/testhelpers"
)

func TestResolveTag(t *testing.T) {
	t.Parallel()

	t.Run("flag wins over everything", func(t *testing.T) {
		t.Parallel()
		env := &ci.Environment{RefType: "tag", RefName: "v9.9.9"}

		tag, err := resolveTag("v1.2.3", env, nil)
		require.NoError(t, err)
		require.Equal(t, "v1.2.3", tag.String())
	})

	t.Run("invalid flag value is an error", func(t *testing.T) {
		t.Parallel()
		_, err := resolveTag("release-1", nil, nil)
		require.ErrorIs(t, err, shipiterrors.ErrTagMismatch)
	})

	t.Run("uses the CI tag push", func(t *testing.T) {
		t.Parallel()
		env := &ci.Environment{RefType: "tag", RefName: "v2.0.0-rc.1"}

		tag, err := resolveTag("", env, nil)
		require.NoError(t, err)
		require.Equal(t, "v2.0.0-rc.1", tag.String())
		require.True(t, tag.IsPrerelease())
	})

	t.Run("non-release CI tag means not triggered", func(t *testing.T) {
		t.Parallel()
		env := &ci.Environment{RefType: "tag", RefName: "nightly"}

		_, err := resolveTag("", env, nil)
		require.ErrorIs(t, err, shipiterrors.ErrNotTriggered)
	})

	t.Run("branch push means not triggered", func(t *testing.T) {
		t.Parallel()
		env := &ci.Environment{RefType: "branch", RefName: "main"}

		_, err := resolveTag("", env, nil)
		require.ErrorIs(t, err, shipiterrors.ErrNotTriggered)
	})

	t.Run("picks the highest tag at HEAD", func(t *testing.T) {
		t.Parallel()
		fixture := testhelpers.NewGitRepo(t)
		fixture.Tag(t, "v0.9.0")
		fixture.Tag(t, "v0.10.0")
		fixture.Tag(t, "not-a-release")

		repo, err := gitrepo.Open(fixture.Dir)
		require.NoError(t, err)

		tag, err := resolveTag("", &ci.Environment{}, repo)
		require.NoError(t, err)
		require.Equal(t, "v0.10.0", tag.String())
	})

	t.Run("no tags at HEAD means not triggered", func(t *testing.T) {
		t.Parallel()
		fixture := testhelpers.NewGitRepo(t)

		repo, err := gitrepo.Open(fixture.Dir)
		require.NoError(t, err)

		_, err = resolveTag("", &ci.Environment{}, repo)
		require.ErrorIs(t, err, shipiterrors.ErrNotTriggered)
	})
}

func TestResolveOwnerRepo(t *testing.T) {
	t.Parallel()

	t.Run("config override wins", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.Release.Repository = "acme/widgets"
		env := &ci.Environment{Repository: "other/repo"}

		owner, name, err := resolveOwnerRepo(cfg, env, nil)
		require.NoError(t, err)
		require.Equal(t, "acme", owner)
		require.Equal(t, "widgets", name)
	})

	t.Run("malformed config override is an error", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.Release.Repository = "just-a-name"

		_, _, err := resolveOwnerRepo(cfg, nil, nil)
		require.Error(t, err)
	})

	t.Run("falls back to the CI environment", func(t *testing.T) {
		t.Parallel()
		env := &ci.Environment{Repository: "acme/widgets"}

		owner, name, err := resolveOwnerRepo(config.Default(), env, nil)
		require.NoError(t, err)
		require.Equal(t, "acme", owner)
		require.Equal(t, "widgets", name)
	})

	t.Run("falls back to the origin remote", func(t *testing.T) {
		t.Parallel()
		fixture := testhelpers.NewGitRepo(t)
		fixture.SetOrigin(t, "git@github.com:acme/widgets.git")

		repo, err := gitrepo.Open(fixture.Dir)
		require.NoError(t, err)

		owner, name, err := resolveOwnerRepo(config.Default(), &ci.Environment{}, repo)
		require.NoError(t, err)
		require.Equal(t, "acme", owner)
		require.Equal(t, "widgets", name)
	})
}

func TestSplitOwnerRepo(t *testing.T) {
	t.Parallel()

	owner, repo, ok := splitOwnerRepo("acme/widgets")
	require.True(t, ok)
	require.Equal(t, "acme", owner)
	require.Equal(t, "widgets", repo)

	_, _, ok = splitOwnerRepo("acme")
	require.False(t, ok)

	_, _, ok = splitOwnerRepo("/widgets")
	require.False(t, ok)
}

func TestRootCommandWiring(t *testing.T) {
	t.Parallel()

	root := NewRootCmd("1.0.0", "abc1234", "2026-01-02")

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"run", "build", "test", "package", "publish", "tag", "doctor", "init"} {
		require.True(t, names[want], "missing subcommand %s", want)
	}

	require.Contains(t, root.Version, "1.0.0")
	require.Contains(t, root.Version, "abc1234")
}
