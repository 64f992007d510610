package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns <cwd>/logs, falling back to the temp directory when
// the working directory is unavailable.
func DefaultLogDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return filepath.Join(os.TempDir(), "netview", "logs")
	}
	return filepath.Join(wd, "logs")
}

// FindLogDir resolves the directory to view. An explicit directory must
// exist; otherwise fallback (or DefaultLogDir) is used.
func FindLogDir(explicit, fallback string) (string, error) {
	if explicit != "" {
		if info, err := os.Stat(explicit); err == nil && info.IsDir() {
			return explicit, nil
		}
		return "", fmt.Errorf("log directory not found: %s", explicit)
	}

	dir := fallback
	if dir == "" {
		dir = DefaultLogDir()
	}
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir, nil
	}
	return "", fmt.Errorf("no log directory found. The backend may not have written any logs yet.\nExpected at: %s\n\nTo generate logs:\n  netview write info \"hello\"", dir)
}
