package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths centralizes filesystem locations used by the exporters and the CLI.
type Paths struct {
	DataDir    string
	ReportsDir string
	ExportsDir string
	LogsDir    string
}

// NewPaths builds a Paths from configuration, leaving relative directories
// relative to the working directory.
func NewPaths(cfg PathsConfig) *Paths {
	p := &Paths{
		DataDir:    cfg.DataDir,
		ReportsDir: cfg.ReportsDir,
		ExportsDir: cfg.ExportsDir,
		LogsDir:    cfg.LogsDir,
	}
	if p.DataDir == "" {
		p.DataDir = "data"
	}
	if p.ReportsDir == "" {
		p.ReportsDir = filepath.Join(p.DataDir, "reports")
	}
	if p.ExportsDir == "" {
		p.ExportsDir = filepath.Join(p.DataDir, "exports")
	}
	if p.LogsDir == "" {
		p.LogsDir = "logs"
	}
	return p
}

// EnsureDirectories creates all configured directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.ExportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportPath returns the full path for a report file.
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetExportPath returns the full path for an export file.
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// GetLogPath returns the full path for a log file.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
