package cli

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"shipit.dev/shipit/internal/ci"
	"shipit.dev/shipit/internal/config"
	"shipit.dev/shipit/internal/gitrepo"
	"shipit.dev/shipit/internal/runner"
	"shipit.dev/shipit/internal/tui"
)

// newDoctorCmd creates the doctor command
func newDoctorCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "doctor",
		Short:        "Check that the release environment is ready",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			splog := newSplog()
			defer func() { _ = splog.Close() }()

			splog.Info("Running shipit doctor...")
			splog.Newline()

			var warnings []string
			var errors []string

			splog.Info("Environment:")
			warnings, errors = checkTools(splog, warnings, errors)

			splog.Newline()

			splog.Info("Repository:")
			warnings, errors = checkRepository(cmd, *configPath, splog, warnings, errors)

			splog.Newline()
			if len(errors) > 0 {
				splog.Warn("Doctor found %d error(s) and %d warning(s).", len(errors), len(warnings))
				for _, err := range errors {
					splog.Warn("  ❌ %s", err)
				}
				for _, warn := range warnings {
					splog.Warn("  ⚠️  %s", warn)
				}
				return fmt.Errorf("doctor found %d error(s)", len(errors))
			} else if len(warnings) > 0 {
				splog.Info("Doctor found %d warning(s). Your shipit setup is mostly healthy.", len(warnings))
				for _, warn := range warnings {
					splog.Warn("  ⚠️  %s", warn)
				}
			} else {
				splog.Info("✅ All checks passed. Your shipit setup is healthy.")
			}

			return nil
		},
	}

	return cmd
}

// checkTools verifies the external commands shipit shells out to
func checkTools(splog *tui.Splog, warnings []string, errors []string) ([]string, []string) {
	if path, ok := runner.LookPath("git"); ok {
		splog.Info("  ✅ git found at %s", path)
	} else {
		errors = append(errors, "git is not installed or not in PATH")
		splog.Warn("  ❌ git is not installed or not in PATH")
	}

	if _, ok := runner.LookPath("gh"); ok {
		splog.Info("  ✅ GitHub CLI (gh) found")
	} else {
		warnings = append(warnings, "GitHub CLI (gh) is not installed; token must come from GITHUB_TOKEN or an env file")
		splog.Warn("  ⚠️  GitHub CLI (gh) is not installed or not in PATH")
	}

	env, err := ci.Detect()
	if err == nil && env.IsCI() {
		splog.Info("  ✅ Running under GitHub Actions (%s)", env.Repository)
	} else {
		splog.Info("  ✅ Running locally")
	}

	return warnings, errors
}

// checkRepository verifies the repository, config and credentials
func checkRepository(cmd *cobra.Command, configPath string, splog *tui.Splog, warnings []string, errors []string) ([]string, []string) {
	repo, err := gitrepo.Open(".")
	if err != nil {
		errors = append(errors, "not in a git repository")
		splog.Warn("  ❌ not in a git repository")
		return warnings, errors
	}
	splog.Info("  ✅ Current directory is a git repository")

	owner, name, err := repo.OriginOwnerRepo()
	if err != nil {
		warnings = append(warnings, "remote 'origin' is not a GitHub repository")
		splog.Warn("  ⚠️  remote 'origin' is not a GitHub repository")
	} else {
		splog.Info("  ✅ Remote 'origin' points at GitHub (%s/%s)", owner, name)
	}

	cfg, err := loadConfig(configPath, repo.Root())
	if err != nil {
		errors = append(errors, fmt.Sprintf("config: %v", err))
		splog.Warn("  ❌ config: %v", err)
		return warnings, errors
	}
	splog.Info("  ✅ Config loaded (project %q)", cfg.Project.Name)

	warnings, errors = checkConfiguredCommand(splog, "build", cfg.Build.Command, warnings, errors)
	if cfg.Test.Command != "" {
		warnings, errors = checkConfiguredCommand(splog, "test", cfg.Test.Command, warnings, errors)
	}

	token, err := config.ResolveToken(cmd.Context(), config.TokenOptions{Dir: repo.Root()})
	if err != nil || token == "" {
		warnings = append(warnings, "no GitHub token found (set GITHUB_TOKEN, add a .env file, or sign in with gh)")
		splog.Warn("  ⚠️  no GitHub token found")
	} else {
		splog.Info("  ✅ GitHub token resolved")
	}

	return warnings, errors
}

// checkConfiguredCommand verifies the first word of a configured command is on PATH
func checkConfiguredCommand(splog *tui.Splog, stage, command string, warnings []string, errors []string) ([]string, []string) {
	words, err := shellquote.Split(command)
	if err != nil || len(words) == 0 {
		errors = append(errors, fmt.Sprintf("%s command is not parseable: %q", stage, command))
		splog.Warn("  ❌ %s command is not parseable: %q", stage, command)
		return warnings, errors
	}
	if _, ok := runner.LookPath(words[0]); !ok {
		errors = append(errors, fmt.Sprintf("%s tool %q is not in PATH", stage, words[0]))
		splog.Warn("  ❌ %s tool %q is not in PATH", stage, words[0])
		return warnings, errors
	}
	splog.Info("  ✅ %s command: %s", stage, strings.Join(words, " "))
	return warnings, errors
}
