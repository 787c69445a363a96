package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avrcli/pkg/contracts/domain"
)

var configEnvVars = []string{
	"AVR_SERVER_PORT", "AVR_SERVER_READ_TIMEOUT", "AVR_SERVER_WRITE_TIMEOUT",
	"AVR_SECURITY_ALLOWED_ORIGINS", "AVR_SECURITY_ENABLE_CORS",
	"AVR_LOGGING_LEVEL", "AVR_LOGGING_FORMAT", "AVR_LOGGING_OUTPUT",
	"AVR_PATHS_DATA_DIR", "AVR_PATHS_WEB_DIR", "AVR_PATHS_LOGS_DIR",
	"AVR_CAPACITY_TOTAL", "AVR_CAPACITY_HEIGHT_075", "AVR_CAPACITY_HEIGHT_150",
	"AVR_UPLOAD_MAX_SIZE", "AVR_REPORTS_MAX_STORED", "AVR_REPORTS_PARSE_CACHE",
}

// saveEnv snapshots the AVR_* variables and restores them when the test ends.
func saveEnv(t *testing.T) {
	t.Helper()

	originalEnv := make(map[string]string)
	for _, envVar := range configEnvVars {
		originalEnv[envVar] = os.Getenv(envVar)
	}

	t.Cleanup(func() {
		for _, envVar := range configEnvVars {
			if val, exists := originalEnv[envVar]; exists && val != "" {
				os.Setenv(envVar, val)
			} else {
				os.Unsetenv(envVar)
			}
		}
	})
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	saveEnv(t)

	tests := []struct {
		name        string
		setupEnv    func()
		setupFile   func() string // returns temp file path
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "default configuration with no env vars",
			setupEnv: func() {
				for _, envVar := range configEnvVars {
					os.Unsetenv(envVar)
				}
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				// Verify default values
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
				assert.Equal(t, 1048576, cfg.Server.MaxHeaderBytes)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.EnableCORS)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)
				assert.Equal(t, 50, cfg.Security.RateLimit.Burst)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "both", cfg.Logging.Output)
				assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
				assert.True(t, cfg.Logging.Development)

				assert.Equal(t, "data", cfg.Paths.DataDir)
				assert.Equal(t, "web", cfg.Paths.WebDir)
				assert.Equal(t, "logs", cfg.Paths.LogsDir)
				assert.Equal(t, "data/exports", cfg.Paths.ExportsDir)

				assert.Equal(t, domain.DefaultCapacityTotal, cfg.Capacity.Total)
				assert.Equal(t, domain.DefaultCapacity075, cfg.Capacity.Height075)
				assert.Equal(t, domain.DefaultCapacity150, cfg.Capacity.Height150)

				assert.Equal(t, int64(MaxUploadFileSize), cfg.Upload.MaxSize)
				assert.Equal(t, []string{".xlsx", ".xls"}, cfg.Upload.AllowedExtensions)

				assert.Equal(t, DefaultMaxStoredReports, cfg.Reports.MaxStored)
				assert.Equal(t, DefaultParseCacheSize, cfg.Reports.ParseCache)
				assert.Equal(t, DefaultRecordsPageLimit, cfg.Reports.RecordsLimit)
			},
		},
		{
			name: "custom environment variables",
			setupEnv: func() {
				os.Setenv("AVR_SERVER_PORT", "9090")
				os.Setenv("AVR_SERVER_READ_TIMEOUT", "30s")
				os.Setenv("AVR_SECURITY_ALLOWED_ORIGINS", "http://example.com,https://example.com")
				os.Setenv("AVR_SECURITY_ENABLE_CORS", "false")
				os.Setenv("AVR_LOGGING_LEVEL", "debug")
				os.Setenv("AVR_LOGGING_FORMAT", "text")
				os.Setenv("AVR_CAPACITY_TOTAL", "5000")
				os.Setenv("AVR_CAPACITY_HEIGHT_075", "2500")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://example.com", "https://example.com"}, cfg.Security.AllowedOrigins)
				assert.False(t, cfg.Security.EnableCORS)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format) // validate() should force this to json
				assert.Equal(t, 5000, cfg.Capacity.Total)
				assert.Equal(t, 2500, cfg.Capacity.Height075)
				// Unset height keeps its default
				assert.Equal(t, domain.DefaultCapacity150, cfg.Capacity.Height150)
			},
		},
		{
			name: "invalid port number",
			setupEnv: func() {
				os.Setenv("AVR_SERVER_PORT", "99999")
			},
			wantErr: true,
		},
		{
			name: "zero port number",
			setupEnv: func() {
				os.Setenv("AVR_SERVER_PORT", "0")
			},
			wantErr: true,
		},
		{
			name: "negative timeout",
			setupEnv: func() {
				os.Setenv("AVR_SERVER_READ_TIMEOUT", "-5s")
			},
			wantErr: true,
		},
		{
			name: "empty allowed origins",
			setupEnv: func() {
				os.Setenv("AVR_SECURITY_ALLOWED_ORIGINS", "")
			},
			wantErr: true,
		},
		{
			name: "zero capacity total",
			setupEnv: func() {
				os.Setenv("AVR_CAPACITY_TOTAL", "0")
			},
			wantErr: true,
		},
		{
			name: "negative height capacity",
			setupEnv: func() {
				os.Setenv("AVR_CAPACITY_HEIGHT_150", "-10")
			},
			wantErr: true,
		},
		{
			name: "config file with environment override",
			setupEnv: func() {
				// Set some env vars that should override file
				os.Setenv("AVR_SERVER_PORT", "7070")
				os.Setenv("AVR_LOGGING_LEVEL", "warn")
			},
			setupFile: func() string {
				tempDir := t.TempDir()
				configFile := filepath.Join(tempDir, "config.yaml")
				configContent := `
server:
  port: 6060
  read_timeout: 20s
logging:
  level: error
  format: json
security:
  allowed_origins: ["http://file.example.com"]
capacity:
  total: 3000
  height_075: 1500
  height_150: 1500
`
				require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))
				// Change to temp directory so config file is found
				originalDir, _ := os.Getwd()
				os.Chdir(tempDir)
				t.Cleanup(func() { os.Chdir(originalDir) })
				return configFile
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				// Environment should override file
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "warn", cfg.Logging.Level)
				// File should override defaults
				assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://file.example.com"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, 3000, cfg.Capacity.Total)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clean environment first
			for _, envVar := range configEnvVars {
				os.Unsetenv(envVar)
			}

			// Setup environment
			if tt.setupEnv != nil {
				tt.setupEnv()
			}

			// Setup config file if needed
			if tt.setupFile != nil {
				_ = tt.setupFile()
			}

			// Load configuration
			cfg, err := Load()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			// Validate configuration
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

// TestLoadFromFile tests the loadFromFile overlay behavior
func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name        string
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "valid YAML config",
			fileContent: `
server:
  port: 9000
  read_timeout: 25s
security:
  allowed_origins: ["http://test.com"]
  enable_cors: false
logging:
  level: debug
capacity:
  total: 1200
  height_075: 600
  height_150: 600
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, 25*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://test.com"}, cfg.Security.AllowedOrigins)
				assert.False(t, cfg.Security.EnableCORS)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 1200, cfg.Capacity.Total)
			},
		},
		{
			name:        "invalid YAML syntax",
			fileContent: "invalid: yaml: content: [unclosed",
			wantErr:     true,
		},
		{
			name: "partial config keeps untouched fields",
			fileContent: `
server:
  port: 8888
logging:
  level: error
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8888, cfg.Server.Port)
				assert.Equal(t, "error", cfg.Logging.Level)
				// Fields left alone by the file keep their zero values
				assert.Equal(t, time.Duration(0), cfg.Server.ReadTimeout)
				assert.Empty(t, cfg.Security.AllowedOrigins)
				assert.Zero(t, cfg.Capacity.Total)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configFile := filepath.Join(tempDir, "config.yaml")
			require.NoError(t, os.WriteFile(configFile, []byte(tt.fileContent), 0644))

			var cfg Config
			err := loadFromFile(configFile, &cfg)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)

			if tt.validateCfg != nil {
				tt.validateCfg(t, &cfg)
			}
		})
	}

	t.Run("non-existent file", func(t *testing.T) {
		var cfg Config
		err := loadFromFile("/non/existent/file.yaml", &cfg)
		assert.Error(t, err)
	})

	t.Run("overlay onto defaults keeps defaults for unset fields", func(t *testing.T) {
		tempDir := t.TempDir()
		configFile := filepath.Join(tempDir, "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("server:\n  port: 9999\n"), 0644))

		cfg := Default()
		require.NoError(t, loadFromFile(configFile, cfg))

		assert.Equal(t, 9999, cfg.Server.Port)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, domain.DefaultCapacityTotal, cfg.Capacity.Total)
		assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
	})
}

// TestValidate tests the validate function
func TestValidate(t *testing.T) {
	validBase := func() Config {
		return *Default()
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid configuration",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "invalid port - zero",
			mutate:  func(cfg *Config) { cfg.Server.Port = 0 },
			wantErr: true,
			errMsg:  "invalid server port: 0",
		},
		{
			name:    "invalid port - negative",
			mutate:  func(cfg *Config) { cfg.Server.Port = -1 },
			wantErr: true,
			errMsg:  "invalid server port: -1",
		},
		{
			name:    "invalid port - too high",
			mutate:  func(cfg *Config) { cfg.Server.Port = 99999 },
			wantErr: true,
			errMsg:  "invalid server port: 99999",
		},
		{
			name:    "invalid read timeout",
			mutate:  func(cfg *Config) { cfg.Server.ReadTimeout = -1 * time.Second },
			wantErr: true,
			errMsg:  "server read timeout must be positive",
		},
		{
			name:    "invalid write timeout",
			mutate:  func(cfg *Config) { cfg.Server.WriteTimeout = 0 },
			wantErr: true,
			errMsg:  "server write timeout must be positive",
		},
		{
			name:    "empty allowed origins",
			mutate:  func(cfg *Config) { cfg.Security.AllowedOrigins = nil },
			wantErr: true,
			errMsg:  "at least one allowed origin must be specified",
		},
		{
			name:    "zero capacity total",
			mutate:  func(cfg *Config) { cfg.Capacity.Total = 0 },
			wantErr: true,
			errMsg:  "invalid capacity configuration",
		},
		{
			name:    "negative height capacity",
			mutate:  func(cfg *Config) { cfg.Capacity.Height075 = -5 },
			wantErr: true,
			errMsg:  "invalid capacity configuration",
		},
		{
			name:    "zero upload size",
			mutate:  func(cfg *Config) { cfg.Upload.MaxSize = 0 },
			wantErr: true,
			errMsg:  "upload max size must be positive",
		},
		{
			name:    "zero report store size",
			mutate:  func(cfg *Config) { cfg.Reports.MaxStored = 0 },
			wantErr: true,
			errMsg:  "report store size must be positive",
		},
		{
			name:    "negative parse cache",
			mutate:  func(cfg *Config) { cfg.Reports.ParseCache = -1 },
			wantErr: true,
			errMsg:  "parse cache size must not be negative",
		},
		{
			name: "logging format auto-correction",
			mutate: func(cfg *Config) {
				cfg.Logging.Format = "text"
				cfg.Logging.Output = "stderr"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBase()
			tt.mutate(&cfg)

			err := cfg.validate()

			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}

			assert.NoError(t, err)
		})
	}

	t.Run("format and output corrected in place", func(t *testing.T) {
		cfg := validBase()
		cfg.Logging.Format = "text"
		cfg.Logging.Output = "stderr"
		cfg.Logging.FilePath = ""

		require.NoError(t, cfg.validate())

		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, "both", cfg.Logging.Output)
		assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
	})
}

// TestCapacityConfigDomain tests conversion into the domain type
func TestCapacityConfigDomain(t *testing.T) {
	cfg := CapacityConfig{Total: 4060, Height075: 2030, Height150: 2030}

	d := cfg.Domain()

	assert.Equal(t, 4060, d.Total)
	assert.Equal(t, 2030, d.Height075)
	assert.Equal(t, 2030, d.Height150)
	assert.NoError(t, d.Validate())
}

// TestConfigResolvePaths tests the resolvePaths method
func TestConfigResolvePaths(t *testing.T) {
	cfg := &Config{
		Paths: PathsConfig{
			DataDir: "relative/data",
			WebDir:  "relative/web",
			LogsDir: "relative/logs",
		},
	}

	err := cfg.resolvePaths()
	assert.NoError(t, err)

	// After resolution, ExecutableDir should be set
	assert.NotEmpty(t, cfg.Paths.ExecutableDir)
}

// TestConfigDirGetters tests the directory resolution helpers
func TestConfigDirGetters(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.resolvePaths())

	assert.NotEmpty(t, cfg.GetDataDir())
	assert.NotEmpty(t, cfg.GetWebDir())
	assert.NotEmpty(t, cfg.GetLogsDir())
	assert.NotEmpty(t, cfg.GetExportsDir())

	// All resolved directories hang off the executable directory
	assert.True(t, filepath.IsAbs(cfg.GetDataDir()))
	assert.True(t, filepath.IsAbs(cfg.GetExportsDir()))
}

// TestLoadWithFullFlow tests Load with complete validation flow
func TestLoadWithFullFlow(t *testing.T) {
	saveEnv(t)
	for _, envVar := range configEnvVars {
		os.Unsetenv(envVar)
	}

	os.Setenv("AVR_SERVER_PORT", "8888")
	os.Setenv("AVR_SECURITY_ALLOWED_ORIGINS", "http://test.example.com")
	os.Setenv("AVR_LOGGING_LEVEL", "warn")
	os.Setenv("AVR_REPORTS_PARSE_CACHE", "8")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8888, cfg.Server.Port)
	assert.Equal(t, []string{"http://test.example.com"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 8, cfg.Reports.ParseCache)
	assert.NotEmpty(t, cfg.Paths.ExecutableDir)
}

// TestDefault verifies the default configuration is internally consistent
func TestDefault(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.NoError(t, cfg.validate())

	// Defaults declare a consistent capacity split
	_, inconsistent := cfg.Capacity.Domain().InconsistencyAdvisory()
	assert.False(t, inconsistent)
}
