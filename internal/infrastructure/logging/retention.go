package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CleanupOldLogs removes *.log files in dir whose modification time is older
// than maxAgeDays days before now. It returns the number of files removed.
//
// A missing directory is not an error. Files that cannot be removed are
// skipped and reported in the returned error after the sweep completes.
func CleanupOldLogs(dir string, maxAgeDays int, now time.Time) (int, error) {
	if maxAgeDays <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading log directory: %w", err)
	}

	cutoff := now.Add(-time.Duration(maxAgeDays) * 24 * time.Hour)
	removed := 0
	var failed []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			failed = append(failed, entry.Name())
			continue
		}
		removed++
	}

	if len(failed) > 0 {
		return removed, fmt.Errorf("removing old logs: %s", strings.Join(failed, ", "))
	}
	return removed, nil
}
