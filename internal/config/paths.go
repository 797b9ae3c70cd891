package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths are the resolved directories a run reads from and writes to.
type Paths struct {
	DataDir    string
	OutputDir  string
	ReportsDir string
	LogsDir    string
}

// ResolvePaths makes the configured directories absolute.
func (c *Config) ResolvePaths() (*Paths, error) {
	abs := func(p string) (string, error) {
		if p == "" {
			return "", nil
		}
		return filepath.Abs(p)
	}
	data, err := abs(c.Paths.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}
	output, err := abs(c.Paths.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output dir: %w", err)
	}
	paths := &Paths{
		DataDir:    data,
		OutputDir:  output,
		ReportsDir: filepath.Join(output, "reports"),
	}
	if c.Logging.Output != "console" {
		if paths.LogsDir, err = abs(filepath.Dir(c.Logging.FilePath)); err != nil {
			return nil, fmt.Errorf("failed to resolve logs dir: %w", err)
		}
	}
	return paths, nil
}

// EnsureDirectories creates the output directories if they don't exist.
// The data directory is input and is never created.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.ReportsDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// CanonicalPath is where the canonical table for a source file is written.
func (p *Paths) CanonicalPath(source, ext string) string {
	return filepath.Join(p.OutputDir, stem(source)+"."+strings.TrimPrefix(ext, "."))
}

// ReportPath is where the parse report for a source file is written.
func (p *Paths) ReportPath(source string) string {
	return filepath.Join(p.ReportsDir, stem(source)+"_report.csv")
}

func stem(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
