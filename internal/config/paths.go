package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ArtifactsDir returns the directory of the file artifact store.
func (p PathsConfig) ArtifactsDir() string {
	return filepath.Join(p.OutputDir, "artifacts")
}

// ReportsDir returns the directory of exported reports.
func (p PathsConfig) ReportsDir() string {
	return filepath.Join(p.OutputDir, "reports")
}

// EnsureDirectories creates the output and log directories.
func (p PathsConfig) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.ArtifactsDir(), p.ReportsDir(), p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// CheckDataDir verifies that the data root exists.
func (p PathsConfig) CheckDataDir() error {
	info, err := os.Stat(p.DataDir)
	if err != nil {
		return fmt.Errorf("data directory %s: %w", p.DataDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", p.DataDir)
	}
	return nil
}
