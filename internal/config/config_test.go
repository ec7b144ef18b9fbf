package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func clearOverrideEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SHIPIT_STAGING_DIR", "")
	t.Setenv("SHIPIT_DRAFT", "")
	t.Setenv("SHIPIT_REPOSITORY", "")
}

func TestLoad(t *testing.T) {
	t.Run("returns defaults when no file exists", func(t *testing.T) {
		clearOverrideEnv(t)

		cfg, err := LoadFromDir(t.TempDir())
		require.NoError(t, err)
		require.Equal(t, "dist", cfg.Package.StagingDir)
		require.True(t, cfg.Package.Checksum)
		require.NotEmpty(t, cfg.Build.Command)
	})

	t.Run("reads values from shipit.toml", func(t *testing.T) {
		clearOverrideEnv(t)
		dir := t.TempDir()
		writeConfig(t, dir, `
[project]
name = "widget"

[build]
command = "cargo build --release"
artifact = "target/release/widget"

[test]
command = "cargo test --release"

[package]
staging_dir = "out"
archive = "tar.gz"
checksum = true

[release]
draft = true
`)

		cfg, err := LoadFromDir(dir)
		require.NoError(t, err)
		require.Equal(t, "widget", cfg.Project.Name)
		require.Equal(t, "cargo build --release", cfg.Build.Command)
		require.Equal(t, "target/release/widget", cfg.Build.Artifact)
		require.Equal(t, "out", cfg.Package.StagingDir)
		require.Equal(t, "tar.gz", cfg.Package.Archive)
		require.True(t, cfg.Release.Draft)
	})

	t.Run("environment overrides file values", func(t *testing.T) {
		clearOverrideEnv(t)
		dir := t.TempDir()
		writeConfig(t, dir, `
[build]
command = "make release"
artifact = "bin/widget"

[package]
staging_dir = "out"
`)
		t.Setenv("SHIPIT_STAGING_DIR", "elsewhere")
		t.Setenv("SHIPIT_REPOSITORY", "octocat/widget")

		cfg, err := LoadFromDir(dir)
		require.NoError(t, err)
		require.Equal(t, "elsewhere", cfg.Package.StagingDir)
		require.Equal(t, "octocat/widget", cfg.Release.Repository)
	})

	t.Run("rejects an unknown archive format", func(t *testing.T) {
		clearOverrideEnv(t)
		dir := t.TempDir()
		writeConfig(t, dir, `
[build]
command = "make"
artifact = "bin/widget"

[package]
archive = "rar"
`)

		_, err := LoadFromDir(dir)
		require.Error(t, err)
		require.Contains(t, err.Error(), "package.archive")
	})

	t.Run("rejects a missing build command", func(t *testing.T) {
		clearOverrideEnv(t)
		dir := t.TempDir()
		writeConfig(t, dir, `
[build]
command = ""
artifact = "bin/widget"
`)

		_, err := LoadFromDir(dir)
		require.Error(t, err)
	})

	t.Run("malformed TOML is an error", func(t *testing.T) {
		clearOverrideEnv(t)
		dir := t.TempDir()
		writeConfig(t, dir, "[build\ncommand=")

		_, err := LoadFromDir(dir)
		require.Error(t, err)
	})
}

func TestArtifactName(t *testing.T) {
	t.Parallel()

	t.Run("prefers the project name", func(t *testing.T) {
		t.Parallel()
		cfg := Default()
		cfg.Project.Name = "widget"
		cfg.Build.Artifact = "target/release/other"
		require.Equal(t, "widget", cfg.ArtifactName())
	})

	t.Run("falls back to the binary base name", func(t *testing.T) {
		t.Parallel()
		cfg := Default()
		cfg.Build.Artifact = "target/release/widget"
		require.Equal(t, "widget", cfg.ArtifactName())
	})
}

func TestSaveRoundTrip(t *testing.T) {
	clearOverrideEnv(t)

	dir := t.TempDir()
	cfg := Default()
	cfg.Project.Name = "widget"
	cfg.Build.Artifact = "target/release/widget"

	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Project.Name, loaded.Project.Name)
	require.Equal(t, cfg.Build.Artifact, loaded.Build.Artifact)
}

func TestResolveToken(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit token wins", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "from-env")

		token, err := ResolveToken(ctx, TokenOptions{Token: "from-flag"})
		require.NoError(t, err)
		require.Equal(t, "from-flag", token)
	})

	t.Run("explicit env file is read", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "")
		dir := t.TempDir()
		envFile := filepath.Join(dir, "secrets.env")
		require.NoError(t, os.WriteFile(envFile, []byte("GITHUB_TOKEN=from-file\n"), 0600))

		token, err := ResolveToken(ctx, TokenOptions{EnvFile: envFile})
		require.NoError(t, err)
		require.Equal(t, "from-file", token)
	})

	t.Run("explicit env file must exist", func(t *testing.T) {
		_, err := ResolveToken(ctx, TokenOptions{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
		require.Error(t, err)
	})

	t.Run("env file without the token is an error", func(t *testing.T) {
		dir := t.TempDir()
		envFile := filepath.Join(dir, "secrets.env")
		require.NoError(t, os.WriteFile(envFile, []byte("OTHER=1\n"), 0600))

		_, err := ResolveToken(ctx, TokenOptions{EnvFile: envFile})
		require.Error(t, err)
		require.True(t, errors.Is(err, shipiterrors.ErrNoToken))
	})

	t.Run("default .env in the working directory is picked up", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "")
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GITHUB_TOKEN=from-dotenv\n"), 0600))

		token, err := ResolveToken(ctx, TokenOptions{Dir: dir})
		require.NoError(t, err)
		require.Equal(t, "from-dotenv", token)
	})

	t.Run("process environment is used when no file matches", func(t *testing.T) {
		t.Setenv(TokenEnvVar, "from-process-env")

		token, err := ResolveToken(ctx, TokenOptions{Dir: t.TempDir()})
		require.NoError(t, err)
		require.Equal(t, "from-process-env", token)
	})
}
