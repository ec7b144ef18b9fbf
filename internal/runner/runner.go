// Package runner executes pipeline subprocesses with timeouts and captured output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	shipiterrors "shipit.dev/shipit/internal/errors"
)

// DefaultCommandTimeout is the default timeout for pipeline commands.
// Builds of larger projects can take a while, so this is generous.
const DefaultCommandTimeout = 30 * time.Minute

var errEmptyCommand = errors.New("empty command")

// Runner handles execution of subprocesses
type Runner struct {
	workingDir string
	env        []string  // extra environment, KEY=VALUE
	stream     io.Writer // when set, stdout/stderr are mirrored here
}

// Option configures a Runner
type Option func(*Runner)

// WithWorkingDir sets the working directory for commands
func WithWorkingDir(dir string) Option {
	return func(r *Runner) { r.workingDir = dir }
}

// WithEnv appends KEY=VALUE pairs to the command environment
func WithEnv(env ...string) Option {
	return func(r *Runner) { r.env = append(r.env, env...) }
}

// WithStream mirrors combined command output to w as it is produced,
// in addition to capturing it. Used so build/test output stays visible.
func WithStream(w io.Writer) Option {
	return func(r *Runner) { r.stream = w }
}

// New creates a new Runner
func New(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes name with args and returns trimmed stdout.
// A CommandError carrying captured stdout/stderr is returned on failure.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// If no timeout/deadline is set in the context, add the default one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}

	var stdout, stderr bytes.Buffer
	if r.stream != nil {
		cmd.Stdout = io.MultiWriter(&stdout, r.stream)
		cmd.Stderr = io.MultiWriter(&stderr, r.stream)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		return "", shipiterrors.NewCommandError(name, args, stdout.String(), stderr.String(), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// RunShell splits command with shell quoting rules and executes it.
// This is how configured pipeline commands ("go build -trimpath ./...")
// are run; no shell is involved, only word splitting.
func (r *Runner) RunShell(ctx context.Context, command string) (string, error) {
	words, err := shellquote.Split(command)
	if err != nil {
		return "", shipiterrors.NewCommandError(command, nil, "", "", err)
	}
	if len(words) == 0 {
		return "", shipiterrors.NewCommandError(command, nil, "", "", errEmptyCommand)
	}
	return r.Run(ctx, words[0], words[1:]...)
}

// LookPath reports whether a binary is available on PATH.
func LookPath(name string) (string, bool) {
	path, err := exec.LookPath(name)
	return path, err == nil
}
