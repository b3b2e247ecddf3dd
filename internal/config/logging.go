package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// logFilePrefix names the rotated files. Each server start gets its own
// file; execution rounds log every persistence write, so files from active
// sessions grow quickly and old ones are pruned rather than truncated.
const logFilePrefix = "agentchain-"

// SetupLogFile creates a new timestamped log file and prunes old ones,
// keeping the maxFiles most recent. Returns the file handle (caller must
// close) or error.
func SetupLogFile(dir string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s%s.log",
		logFilePrefix, time.Now().Format("2006-01-02T15-04-05")))

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if err := cleanupOldLogs(dir, maxFiles); err != nil {
		// Pruning failure is not fatal; the new file is already open
		fmt.Fprintf(os.Stderr, "warning: failed to cleanup old logs: %v\n", err)
	}

	return f, nil
}

// cleanupOldLogs removes oldest log files when count exceeds maxFiles.
// The timestamp in the name sorts chronologically, so a plain string sort
// orders the files oldest first.
func cleanupOldLogs(dir string, maxFiles int) error {
	files, err := filepath.Glob(filepath.Join(dir, logFilePrefix+"*.log"))
	if err != nil {
		return err
	}

	if len(files) <= maxFiles {
		return nil
	}

	sort.Strings(files)

	for i := 0; i < len(files)-maxFiles; i++ {
		if err := os.Remove(files[i]); err != nil {
			return fmt.Errorf("remove %s: %w", files[i], err)
		}
	}

	return nil
}
