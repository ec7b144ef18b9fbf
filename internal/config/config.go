// Package config provides pipeline configuration management,
// including reading shipit configuration files and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the configuration file shipit looks for at the repo root.
const DefaultFileName = "shipit.toml"

// Config is the pipeline configuration.
type Config struct {
	Project ProjectConfig `toml:"project"`
	Build   BuildConfig   `toml:"build"`
	Test    TestConfig    `toml:"test"`
	Package PackageConfig `toml:"package"`
	Release ReleaseConfig `toml:"release"`
}

// ProjectConfig names the project being released.
type ProjectConfig struct {
	Name string `toml:"name"`
}

// BuildConfig describes the release build.
type BuildConfig struct {
	// Command is the build command, run with shell-style word splitting.
	Command string `toml:"command"`
	// Artifact is the path (relative to the repo root) where the command
	// leaves the release binary. Packaging fails if it is absent.
	Artifact string `toml:"artifact"`
}

// TestConfig describes the verification step.
type TestConfig struct {
	Command string `toml:"command"`
}

// PackageConfig describes how the artifact is staged.
type PackageConfig struct {
	StagingDir string `toml:"staging_dir"`
	// Archive is one of "none", "tar.gz", "zip".
	Archive  string `toml:"archive"`
	Checksum bool   `toml:"checksum"`
}

// ReleaseConfig describes the published release.
type ReleaseConfig struct {
	Draft bool `toml:"draft"`
	// Prerelease marks every release as a pre-release. When false, tags
	// with a pre-release suffix (v1.0.0-rc.1) are still marked automatically.
	Prerelease bool `toml:"prerelease"`
	// Repository overrides the owner/repo derived from the origin remote.
	Repository string `toml:"repository"`
}

// envOverrides are environment variables that take precedence over file values.
type envOverrides struct {
	StagingDir string `env:"SHIPIT_STAGING_DIR"`
	Draft      bool   `env:"SHIPIT_DRAFT"`
	Repository string `env:"SHIPIT_REPOSITORY"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			Command:  "go build -o bin/app .",
			Artifact: filepath.Join("bin", "app"),
		},
		Test: TestConfig{
			Command: "go test ./...",
		},
		Package: PackageConfig{
			StagingDir: "dist",
			Archive:    "none",
			Checksum:   true,
		},
	}
}

// Load reads the configuration from path. A missing file yields defaults;
// environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file, defaults apply.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	overrides := envOverrides{}
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	if overrides.StagingDir != "" {
		cfg.Package.StagingDir = overrides.StagingDir
	}
	if overrides.Draft {
		cfg.Release.Draft = true
	}
	if overrides.Repository != "" {
		cfg.Release.Repository = overrides.Repository
	}

	return cfg, cfg.Validate()
}

// LoadFromDir loads the configuration file from a directory, using DefaultFileName.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, DefaultFileName))
}

// Validate checks the configuration for values the pipeline cannot work with.
func (c *Config) Validate() error {
	if c.Build.Command == "" {
		return fmt.Errorf("build.command must not be empty")
	}
	if c.Build.Artifact == "" {
		return fmt.Errorf("build.artifact must not be empty")
	}
	switch c.Package.Archive {
	case "", "none", "tar.gz", "zip":
	default:
		return fmt.Errorf("package.archive must be one of none, tar.gz, zip (got %q)", c.Package.Archive)
	}
	if c.Package.StagingDir == "" {
		c.Package.StagingDir = "dist"
	}
	return nil
}

// ArtifactName returns the base name artifacts are staged and uploaded under.
// It prefers the project name, then the binary's base name.
func (c *Config) ArtifactName() string {
	if c.Project.Name != "" {
		return c.Project.Name
	}
	return filepath.Base(c.Build.Artifact)
}

// Save writes the configuration to path as TOML.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
