package packaging

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

func writeBinary(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "target", "release", "widget")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho widget\n"), 0755))
	return path
}

func TestStage(t *testing.T) {
	t.Parallel()

	t.Run("copies the binary into the staging directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		binary := writeBinary(t, dir)
		staging := filepath.Join(dir, "dist")

		artifacts, err := Stage(Options{
			ArtifactPath: binary,
			StagingDir:   staging,
			Name:         "widget",
			TagName:      "v1.0.0",
		})
		require.NoError(t, err)
		require.Len(t, artifacts, 1)
		require.Equal(t, "widget", artifacts[0].Name)
		require.Equal(t, filepath.Join(staging, "widget"), artifacts[0].Path)

		staged, err := os.ReadFile(artifacts[0].Path)
		require.NoError(t, err)
		original, err := os.ReadFile(binary)
		require.NoError(t, err)
		require.Equal(t, original, staged)
	})

	t.Run("records the sha256 of the artifact", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		binary := writeBinary(t, dir)

		artifacts, err := Stage(Options{
			ArtifactPath: binary,
			StagingDir:   filepath.Join(dir, "dist"),
			Name:         "widget",
		})
		require.NoError(t, err)

		data, err := os.ReadFile(binary)
		require.NoError(t, err)
		sum := sha256.Sum256(data)
		require.Equal(t, hex.EncodeToString(sum[:]), artifacts[0].SHA256)
		require.Equal(t, int64(len(data)), artifacts[0].Size)
	})

	t.Run("writes a checksum file when asked", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		binary := writeBinary(t, dir)
		staging := filepath.Join(dir, "dist")

		artifacts, err := Stage(Options{
			ArtifactPath: binary,
			StagingDir:   staging,
			Name:         "widget",
			Checksum:     true,
		})
		require.NoError(t, err)
		require.Len(t, artifacts, 2)
		require.Equal(t, "widget.sha256", artifacts[1].Name)

		content, err := os.ReadFile(artifacts[1].Path)
		require.NoError(t, err)
		require.Contains(t, string(content), artifacts[0].SHA256)
		require.Contains(t, string(content), "widget")
	})

	t.Run("produces a tar.gz archive", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		binary := writeBinary(t, dir)
		staging := filepath.Join(dir, "dist")

		artifacts, err := Stage(Options{
			ArtifactPath: binary,
			StagingDir:   staging,
			Name:         "widget",
			TagName:      "v1.2.3",
			Archive:      "tar.gz",
		})
		require.NoError(t, err)
		require.Equal(t, "widget-v1.2.3.tar.gz", artifacts[0].Name)
		require.FileExists(t, artifacts[0].Path)
	})

	t.Run("produces a zip archive", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		binary := writeBinary(t, dir)

		artifacts, err := Stage(Options{
			ArtifactPath: binary,
			StagingDir:   filepath.Join(dir, "dist"),
			Name:         "widget",
			TagName:      "v1.2.3",
			Archive:      "zip",
		})
		require.NoError(t, err)
		require.Equal(t, "widget-v1.2.3.zip", artifacts[0].Name)
	})

	t.Run("fails when the binary is missing", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()

		_, err := Stage(Options{
			ArtifactPath: filepath.Join(dir, "target", "release", "widget"),
			StagingDir:   filepath.Join(dir, "dist"),
			Name:         "widget",
		})
		require.Error(t, err)
		require.True(t, errors.Is(err, shipiterrors.ErrArtifactMissing))

		var missing *shipiterrors.ArtifactMissingError
		require.ErrorAs(t, err, &missing)
	})
}
