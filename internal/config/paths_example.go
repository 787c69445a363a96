//go:build example

package config

import (
	"log/slog"
	"os"
	"time"
)

// ExampleUsage demonstrates how to use the paths package throughout the application
func ExampleUsage() {
	// Always get paths from the centralized GetPaths() function
	paths, err := GetPaths()
	if err != nil {
		slog.Error("Failed to get paths", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Ensure all directories exist at startup
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to ensure directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Log all resolved paths for debugging
	paths.LogPathResolution()

	// Example 1: CLI exporting the records of a stored report
	recordsCSV := paths.GetRecordsExportPath("3f2c61d8")
	slog.Info("Records export will be written to", slog.String("path", recordsCSV))

	// Example 2: Dated occupancy export
	today := time.Now()
	datedCSV := paths.GetDatedExportPath("occupancy", today)
	slog.Info("Dated export will be written to", slog.String("path", datedCSV))

	// Example 3: Log files
	logPath := paths.GetLogPath("app.log")
	slog.Info("Application log", slog.String("path", logPath))

	// Example 4: Validate web assets exist before serving the dashboard
	if err := paths.ValidateWebAssets(); err != nil {
		slog.Warn("Web assets incomplete", slog.String("error", err.Error()))
		// The API still works without the frontend
	}
}
