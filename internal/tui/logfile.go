package tui

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// If SHIPIT_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.shipit/logs/shipit.log
func GetLogFilePath() string {
	if customPath := os.Getenv("SHIPIT_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if we can't get home dir
		return "shipit.log"
	}

	return filepath.Join(homeDir, ".shipit", "logs", "shipit.log")
}
