// Package config provides centralized configuration management for AVR Pulse.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern AVR_* for namespacing:
//
//	AVR_SERVER_PORT=8080
//	AVR_CAPACITY_TOTAL=4060
//	AVR_CAPACITY_HEIGHT_075=2030
//	AVR_CAPACITY_HEIGHT_150=2030
//	AVR_LOGGING_LEVEL=info
//	AVR_UPLOAD_MAX_SIZE=26214400
//
// # Configuration Structure
//
// The main configuration struct groups settings by concern:
//
//	type Config struct {
//	    Server   ServerConfig
//	    Security SecurityConfig
//	    Logging  LoggingConfig
//	    Paths    PathsConfig
//	    Capacity CapacityConfig
//	    Upload   UploadConfig
//	    Reports  ReportsConfig
//	}
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, _ := config.GetPaths()
//	exportPath := paths.GetExportPath("records.csv")
//	logPath := paths.GetLogPath("app.log")
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Required fields are present
//	- Values are within acceptable ranges
//	- Capacities are usable (total >= 1, per-height >= 0)
//	- File paths are accessible
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
