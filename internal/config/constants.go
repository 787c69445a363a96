package config

import "time"

// Application constants - all hardcoded values for the AVR Pulse system
const (
	// Application Info
	AppName    = "AVR Pulse"
	AppVersion = "0.1.0"
	AppVendor  = "AVR Logistica"

	// Upload Limits
	MaxUploadFileSize  = 25 * 1024 * 1024 // 25MB
	UploadFormField    = "file"
	UploadMemoryBuffer = 8 * 1024 * 1024 // multipart in-memory threshold

	// Rate Limiting
	DefaultRateLimit = 100 // requests per minute
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultHTTPTimeout    = 30 * time.Second
	AggregateTimeout      = 60 * time.Second
	HealthCheckTimeout    = 5 * time.Second
	DefaultRequestTimeout = 60 * time.Second

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultWebDir     = "web"
	DefaultExportsDir = "data/exports"
	DefaultCacheDir   = "data/cache"

	// Report Store and Parse Cache
	DefaultMaxStoredReports = 64
	DefaultParseCacheSize   = 32
	DefaultRecordsPageLimit = 1000
	MaxRecordsPageLimit     = 10000

	// Operation Timeouts
	ExportTimeout = 2 * time.Minute

	// Observability
	SystemMetricsInterval = 30 * time.Second

	// Log Settings
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	MaxLogFileSize    = 100 * 1024 * 1024 // 100MB
	MaxLogFileAge     = 30                // days
	MaxLogFileBackups = 10

	// Spreadsheet Upload Patterns
	InventoryReportPattern = ".*\\.(xlsx|xls)$"
)

// API Endpoints (internal)
const (
	APIBasePath        = "/api"
	AggregateEndpoint  = "/api/aggregate"
	ReportsEndpoint    = "/api/reports"
	CapacitiesEndpoint = "/api/capacities"
	HealthEndpoint     = "/api/health"
	VersionEndpoint    = "/api/version"
	MetricsEndpoint    = "/metrics"
)

// Feature Flags - compile-time configuration
const (
	// Core Features
	FeatureMetricsEnabled     = true
	FeatureHealthCheckEnabled = true
	FeatureTracingEnabled     = true
	FeatureParseCacheEnabled  = true

	// Security Features
	FeatureRateLimitingEnabled = true

	// Development Features
	FeatureDebugLoggingEnabled = false
	FeatureVerboseModeEnabled  = false
)

// GetFeatureFlag returns the value of a feature flag
func GetFeatureFlag(flag string) bool {
	switch flag {
	case "metrics":
		return FeatureMetricsEnabled
	case "health_check":
		return FeatureHealthCheckEnabled
	case "tracing":
		return FeatureTracingEnabled
	case "parse_cache":
		return FeatureParseCacheEnabled
	case "rate_limiting":
		return FeatureRateLimitingEnabled
	case "debug_logging":
		return FeatureDebugLoggingEnabled
	case "verbose_mode":
		return FeatureVerboseModeEnabled
	default:
		return false
	}
}
