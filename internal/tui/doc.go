// Package tui provides terminal output: the Splog logger, color handling,
// the interactive pipeline progress view, and confirmation prompts.
package tui
