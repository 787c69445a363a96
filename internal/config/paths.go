package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	WebDir        string
	StaticDir     string
	DataDir       string
	ExportsDir    string
	CacheDir      string
	LogsDir       string
}

// GetPaths returns the application paths relative to the executable location
// All paths are ALWAYS relative to the executable directory, never the current working directory
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	// Get the directory containing the executable
	exeDir := filepath.Dir(exe)

	// All paths are relative to the executable directory.
	// Directory structure:
	// dist/
	//   ├── data/
	//   │   ├── exports/   (CSV exports written by the CLI)
	//   │   └── cache/     (Temporary files)
	//   ├── logs/          (Application logs)
	//   └── web/           (Frontend assets)

	dataDir := filepath.Join(exeDir, "data")

	paths := &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		WebDir:        filepath.Join(exeDir, "web"),
		StaticDir:     filepath.Join(exeDir, "web", "static"),
		ExportsDir:    filepath.Join(dataDir, "exports"),
		CacheDir:      filepath.Join(dataDir, "cache"),
		LogsDir:       filepath.Join(exeDir, "logs"),
	}

	return paths, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ExportsDir,
		p.CacheDir,
		p.LogsDir,
		p.WebDir,
		p.StaticDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetRelativePath returns a path relative to the executable directory
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetWebFilePath returns the path to a web file
func (p *Paths) GetWebFilePath(filename string) string {
	return filepath.Join(p.WebDir, filename)
}

// GetStaticFilePath returns the path to a static file
func (p *Paths) GetStaticFilePath(filename string) string {
	return filepath.Join(p.StaticDir, filename)
}

// GetExportPath returns the path for an exported CSV file
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetCachePath returns the path for a cache file
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// GetRecordsExportPath returns the path for a records export of a stored report
func (p *Paths) GetRecordsExportPath(reportID string) string {
	filename := fmt.Sprintf("records_%s.csv", reportID)
	return filepath.Join(p.ExportsDir, filename)
}

// GetSummaryExportPath returns the path for a summary export of a stored report
func (p *Paths) GetSummaryExportPath(reportID string) string {
	filename := fmt.Sprintf("summary_%s.csv", reportID)
	return filepath.Join(p.ExportsDir, filename)
}

// GetDatedExportPath returns the path for a dated export file
// (e.g. occupancy_20250131.csv)
func (p *Paths) GetDatedExportPath(prefix string, date time.Time) string {
	filename := fmt.Sprintf("%s_%s.csv", prefix, date.Format("20060102"))
	return filepath.Join(p.ExportsDir, filename)
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("exports", p.ExportsDir),
			slog.String("cache", p.CacheDir),
			slog.String("logs", p.LogsDir),
			slog.String("web", p.WebDir),
		))
}

// ValidateWebAssets checks if the web frontend is present and returns
// detailed error information when it is not
func (p *Paths) ValidateWebAssets() error {
	requiredFiles := map[string]string{
		"Index": filepath.Join(p.WebDir, "index.html"),
	}

	var missingFiles []string
	for name, path := range requiredFiles {
		if !FileExists(path) {
			missingFiles = append(missingFiles, fmt.Sprintf("%s (%s)", name, path))
		}
	}

	if len(missingFiles) > 0 {
		return fmt.Errorf("required files missing: %s", strings.Join(missingFiles, ", "))
	}

	return nil
}
