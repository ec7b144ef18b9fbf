// Package errors provides sentinel errors and custom error types for the shipit application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrTagMismatch indicates that a tag name does not match the release pattern
	ErrTagMismatch = errors.New("tag does not match release pattern")

	// ErrNotTriggered indicates that no release-triggering tag could be determined
	ErrNotTriggered = errors.New("no release tag found")

	// ErrNoToken indicates that no authentication token could be resolved
	ErrNoToken = errors.New("no authentication token")

	// ErrArtifactMissing indicates that an expected build artifact does not exist
	ErrArtifactMissing = errors.New("artifact missing")

	// ErrStepFailed indicates that a pipeline stage failed
	ErrStepFailed = errors.New("pipeline stage failed")

	// ErrAssetExists indicates that the release already carries an asset with the same name
	ErrAssetExists = errors.New("release asset already exists")
)

// TagMismatchError represents an error when a tag name does not match the pattern
type TagMismatchError struct {
	TagName string
	Reason  string
}

func (e *TagMismatchError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("tag %q does not match release pattern: %s", e.TagName, e.Reason)
	}
	return fmt.Sprintf("tag %q does not match release pattern", e.TagName)
}

// Is returns true if the target error is ErrTagMismatch
func (e *TagMismatchError) Is(target error) bool {
	return target == ErrTagMismatch
}

// NewTagMismatchError creates a new TagMismatchError
func NewTagMismatchError(tagName string, reason string) *TagMismatchError {
	return &TagMismatchError{TagName: tagName, Reason: reason}
}

// ArtifactMissingError represents an error when a build artifact is not at its expected path
type ArtifactMissingError struct {
	Path string
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("artifact does not exist at %s", e.Path)
}

// Is returns true if the target error is ErrArtifactMissing
func (e *ArtifactMissingError) Is(target error) bool {
	return target == ErrArtifactMissing
}

// NewArtifactMissingError creates a new ArtifactMissingError
func NewArtifactMissingError(path string) *ArtifactMissingError {
	return &ArtifactMissingError{Path: path}
}

// StepError represents the failure of a named pipeline stage
type StepError struct {
	Stage string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrStepFailed
func (e *StepError) Is(target error) bool {
	return target == ErrStepFailed
}

// NewStepError creates a new StepError
func NewStepError(stage string, err error) *StepError {
	return &StepError{Stage: stage, Err: err}
}

// CommandError represents an error from a subprocess execution
type CommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += " " + strings.Join(e.Args, " ")
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError
func NewCommandError(command string, args []string, stdout, stderr string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
