package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"avrcli/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Capacity CapacityConfig `yaml:"capacity" envconfig:"CAPACITY"`
	Upload   UploadConfig   `yaml:"upload" envconfig:"UPLOAD"`
	Reports  ReportsConfig  `yaml:"reports" envconfig:"REPORTS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR"`
	WebDir        string `yaml:"web_dir" envconfig:"WEB_DIR"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	ExportsDir    string `yaml:"exports_dir" envconfig:"EXPORTS_DIR"`
}

// CapacityConfig contains the configured slot capacities. These are the
// server-wide defaults; individual aggregate requests may override them.
type CapacityConfig struct {
	Total     int `yaml:"total" envconfig:"TOTAL"`
	Height075 int `yaml:"height_075" envconfig:"HEIGHT_075"`
	Height150 int `yaml:"height_150" envconfig:"HEIGHT_150"`
}

// Domain converts the config section into the domain capacity type.
func (c CapacityConfig) Domain() domain.CapacityConfig {
	return domain.CapacityConfig{
		Total:     c.Total,
		Height075: c.Height075,
		Height150: c.Height150,
	}
}

// UploadConfig contains spreadsheet upload limits
type UploadConfig struct {
	MaxSize           int64    `yaml:"max_size" envconfig:"MAX_SIZE"`
	AllowedExtensions []string `yaml:"allowed_extensions" envconfig:"ALLOWED_EXTENSIONS"`
}

// ReportsConfig contains the in-memory report store and parse cache settings
type ReportsConfig struct {
	MaxStored    int `yaml:"max_stored" envconfig:"MAX_STORED"`
	ParseCache   int `yaml:"parse_cache" envconfig:"PARSE_CACHE"`
	RecordsLimit int `yaml:"records_limit" envconfig:"RECORDS_LIMIT"`
}

// Load loads configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	// Overlay values from config file if one exists
	configFile := getConfigFilePath()
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Environment variables win over file values
	if err := envconfig.Process("AVR", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Resolve relative paths
	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Validate paths
	if err := cfg.ValidatePaths(); err != nil {
		return nil, fmt.Errorf("path validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays configuration from a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// resolvePaths sets up the executable directory
func (c *Config) resolvePaths() error {
	paths, err := GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}

	c.Paths.ExecutableDir = paths.ExecutableDir

	return nil
}

// ValidatePaths validates that critical paths exist or can be created
func (c *Config) ValidatePaths() error {
	paths, err := GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}

	if err := paths.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	paths.LogPathResolution()

	return nil
}

// GetDataDir returns the resolved data directory path
func (c *Config) GetDataDir() string {
	paths, err := GetPaths()
	if err != nil {
		if filepath.IsAbs(c.Paths.DataDir) {
			return c.Paths.DataDir
		}
		return filepath.Join(c.Paths.ExecutableDir, c.Paths.DataDir)
	}
	return paths.DataDir
}

// GetWebDir returns the resolved web directory path
func (c *Config) GetWebDir() string {
	paths, err := GetPaths()
	if err != nil {
		if filepath.IsAbs(c.Paths.WebDir) {
			return c.Paths.WebDir
		}
		return filepath.Join(c.Paths.ExecutableDir, c.Paths.WebDir)
	}
	return paths.WebDir
}

// GetLogsDir returns the resolved logs directory path
func (c *Config) GetLogsDir() string {
	paths, err := GetPaths()
	if err != nil {
		if filepath.IsAbs(c.Paths.LogsDir) {
			return c.Paths.LogsDir
		}
		return filepath.Join(c.Paths.ExecutableDir, c.Paths.LogsDir)
	}
	return paths.LogsDir
}

// GetExportsDir returns the resolved exports directory path
func (c *Config) GetExportsDir() string {
	paths, err := GetPaths()
	if err != nil {
		if filepath.IsAbs(c.Paths.ExportsDir) {
			return c.Paths.ExportsDir
		}
		return filepath.Join(c.Paths.ExecutableDir, c.Paths.ExportsDir)
	}
	return paths.ExportsDir
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if err := c.Capacity.Domain().Validate(); err != nil {
		return fmt.Errorf("invalid capacity configuration: %w", err)
	}

	if c.Upload.MaxSize <= 0 {
		return fmt.Errorf("upload max size must be positive")
	}

	if c.Reports.MaxStored <= 0 {
		return fmt.Errorf("report store size must be positive")
	}

	if c.Reports.ParseCache < 0 {
		return fmt.Errorf("parse cache size must not be negative")
	}

	// Always JSON logs; anything else is a misconfiguration we correct
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
		"../../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Output:      "both",
			FilePath:    "logs/app.log",
			Development: true,
		},
		Paths: PathsConfig{
			DataDir:    "data",
			WebDir:     "web",
			LogsDir:    "logs",
			ExportsDir: "data/exports",
		},
		Capacity: CapacityConfig{
			Total:     domain.DefaultCapacityTotal,
			Height075: domain.DefaultCapacity075,
			Height150: domain.DefaultCapacity150,
		},
		Upload: UploadConfig{
			MaxSize:           MaxUploadFileSize,
			AllowedExtensions: []string{".xlsx", ".xls"},
		},
		Reports: ReportsConfig{
			MaxStored:    DefaultMaxStoredReports,
			ParseCache:   DefaultParseCacheSize,
			RecordsLimit: DefaultRecordsPageLimit,
		},
	}
}
