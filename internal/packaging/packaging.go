// Package packaging stages build artifacts for upload: it copies the release
// binary into the staging directory and produces checksums and archives.
package packaging

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

// Artifact is a staged file ready for upload.
type Artifact struct {
	Path   string
	Name   string
	SHA256 string
	Size   int64
}

// Options control how the build artifact is staged.
type Options struct {
	// ArtifactPath is where the build left the release binary.
	ArtifactPath string
	// StagingDir receives the staged files. Created if absent.
	StagingDir string
	// Name is the base name artifacts are staged under.
	Name string
	// TagName is included in archive names, e.g. widget-v1.2.3.tar.gz.
	TagName string
	// Archive is one of "", "none", "tar.gz", "zip".
	Archive string
	// Checksum writes a .sha256 file next to each uploadable.
	Checksum bool
}

// Stage copies the release binary into the staging directory and returns the
// artifacts to upload. Returns an ArtifactMissingError when the binary is not
// at its expected path.
func Stage(opts Options) ([]Artifact, error) {
	info, err := os.Stat(opts.ArtifactPath)
	if err != nil || info.IsDir() {
		return nil, shipiterrors.NewArtifactMissingError(opts.ArtifactPath)
	}

	if err := os.MkdirAll(opts.StagingDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create staging dir: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(opts.ArtifactPath)
	}

	stagedBinary := filepath.Join(opts.StagingDir, name)
	if err := copyFile(opts.ArtifactPath, stagedBinary, 0755); err != nil {
		return nil, fmt.Errorf("failed to stage binary: %w", err)
	}

	uploadable := stagedBinary
	switch opts.Archive {
	case "", "none":
	case "tar.gz":
		archivePath := filepath.Join(opts.StagingDir, archiveName(name, opts.TagName)+".tar.gz")
		if err := writeTarGz(archivePath, stagedBinary, name); err != nil {
			return nil, fmt.Errorf("failed to archive binary: %w", err)
		}
		uploadable = archivePath
	case "zip":
		archivePath := filepath.Join(opts.StagingDir, archiveName(name, opts.TagName)+".zip")
		if err := writeZip(archivePath, stagedBinary, name); err != nil {
			return nil, fmt.Errorf("failed to archive binary: %w", err)
		}
		uploadable = archivePath
	default:
		return nil, fmt.Errorf("unknown archive format %q", opts.Archive)
	}

	artifact, err := describe(uploadable)
	if err != nil {
		return nil, err
	}
	artifacts := []Artifact{artifact}

	if opts.Checksum {
		checksumPath := uploadable + ".sha256"
		line := fmt.Sprintf("%s  %s\n", artifact.SHA256, artifact.Name)
		if err := os.WriteFile(checksumPath, []byte(line), 0644); err != nil {
			return nil, fmt.Errorf("failed to write checksum: %w", err)
		}
		checksumArtifact, err := describe(checksumPath)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, checksumArtifact)
	}

	return artifacts, nil
}

func archiveName(name, tagName string) string {
	if tagName == "" {
		return name
	}
	return name + "-" + tagName
}

func describe(path string) (Artifact, error) {
	digest, size, err := fileSHA256(path)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Path:   path,
		Name:   filepath.Base(path),
		SHA256: digest,
		Size:   size,
	}, nil
}

func fileSHA256(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	size, err := io.Copy(hash, file)
	if err != nil {
		return "", 0, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), size, nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func writeTarGz(archivePath, filePath, nameInArchive string) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return err
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	header := &tar.Header{
		Name: nameInArchive,
		Mode: 0755,
		Size: info.Size(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	in, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if _, err := io.Copy(tw, in); err != nil {
		return err
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return gz.Close()
}

func writeZip(archivePath, filePath, nameInArchive string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	zw := zip.NewWriter(out)

	header := &zip.FileHeader{
		Name:   nameInArchive,
		Method: zip.Deflate,
	}
	header.SetMode(0755)

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	in, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if _, err := io.Copy(w, in); err != nil {
		return err
	}
	return zw.Close()
}
