package app

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"avrcli/internal/config"
	"avrcli/internal/dataprocessing"
	apierrors "avrcli/internal/errors"
	"avrcli/internal/infrastructure"
	custommw "avrcli/internal/middleware"
	"avrcli/internal/reports"
	"avrcli/internal/services"
	handlers "avrcli/internal/transport/http"
	"avrcli/internal/validation"
	"avrcli/pkg/contracts"
)

const (
	REPO_URL = "https://github.com/avr-logistica/avr-pulse"
	AppName  = "AVR Pulse - Ocupação de Vagas"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	// Generate a deterministic build ID based on version and time
	h := sha256.New()
	h.Write([]byte(contracts.Version))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	Loader          *dataprocessing.Loader
	ParseCache      *dataprocessing.ParseCache
	ReportStore     *reports.Store
	ReportService   *services.ReportService
	HealthService   *services.HealthService
	Logger          *slog.Logger
	Services        *ServiceContainer
	OTelProviders   *infrastructure.OTelProviders
	BusinessMetrics *infrastructure.BusinessMetrics
	SystemMetrics   *infrastructure.SystemMetricsCollector
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Report *services.ReportService
	Health *services.HealthService
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize single infrastructure logger
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Log startup information
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("build_id", BuildID))

	// Validate and log all paths at startup for debugging
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}

	// Ensure all required directories exist
	logger.Info("Ensuring required directories exist")
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	// Log all resolved paths at startup for debugging
	paths.LogPathResolution()

	// Initialize OpenTelemetry
	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	// Create application
	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	// Initialize services in order
	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Setup router
	app.setupRouter()

	// Create HTTP server
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	// Business metrics feed both the HTTP middleware and the report service
	metrics, err := infrastructure.CreateBusinessMetrics(a.OTelProviders.Meter)
	if err != nil {
		a.Logger.Warn("Business metrics unavailable, instruments disabled",
			slog.String("error", err.Error()))
	}
	a.BusinessMetrics = metrics

	// Runtime gauges for the Prometheus endpoint, collected periodically
	collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, config.SystemMetricsInterval)
	if err != nil {
		a.Logger.Warn("System metrics collector unavailable",
			slog.String("error", err.Error()))
	} else {
		a.SystemMetrics = collector
	}

	// Spreadsheet loader and its content-addressed parse cache
	a.Loader = dataprocessing.NewLoader(a.Logger)
	a.ParseCache = dataprocessing.NewParseCache(a.Loader, a.Config.Reports.ParseCache, metrics)

	// Bounded in-memory report store
	a.ReportStore = reports.NewStore(a.Config.Reports.MaxStored)

	// Report service owns the upload -> aggregate -> store pipeline
	reportService := services.NewReportServiceWithLogger(
		a.ParseCache,
		a.ReportStore,
		a.Config.Capacity.Domain(),
		metrics,
		a.Logger,
	)
	a.ReportService = reportService

	// Health service probes the stores and the data directory
	pathsCfg := a.Config.Paths
	pathsCfg.DataDir = a.Config.GetDataDir()
	healthService := services.NewHealthServiceWithBuildInfo(
		contracts.Version,
		REPO_URL,
		BuildTime,
		BuildID,
		pathsCfg,
		a.ReportStore,
		a.ParseCache,
		a.Logger,
	)
	a.HealthService = healthService

	// Create service container
	a.Services = &ServiceContainer{
		Report: reportService,
		Health: healthService,
	}

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal outer middleware; everything else lives in the group below
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	// Unmatched routes still answer in RFC 7807
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		// OpenTelemetry middleware for tracing and metrics
		otelMiddleware, err := custommw.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		// Business metrics middleware puts the instruments on the request context
		r.Use(custommw.BusinessMetricsMiddleware(a.BusinessMetrics))

		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)
		r.Use(custommw.Compress(5))

		// CORS middleware, configured per environment
		r.Use(custommw.CORS(a.getCORSConfig()))

		// Rate limiting
		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r, errorHandler)

		// Embedded status page at the root
		r.Get("/", handlers.ServeStatusPage(contracts.Version))
	})

	// Prometheus metrics endpoint (outside the middleware group for performance)
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler) {
	upload := validation.NewUploadValidator(
		a.Config.Upload.MaxSize,
		a.Config.Upload.AllowedExtensions,
		a.Logger,
	)

	reportHandler := handlers.NewReportHandler(
		a.ReportService,
		upload,
		a.Config.Reports.RecordsLimit,
		a.Logger,
		errorHandler,
	)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		// Reject malformed JSON bodies early; multipart uploads pass through
		validationMw := custommw.NewValidationMiddleware(a.Logger, errorHandler)
		r.Use(validationMw.ValidateRequest)

		// Uploads get a longer budget than the rest of the API
		r.Group(func(r chi.Router) {
			r.Use(custommw.Timeout(config.AggregateTimeout, a.Logger))
			r.Post("/aggregate", reportHandler.Aggregate)
		})

		r.Group(func(r chi.Router) {
			r.Use(custommw.Timeout(a.Config.Server.RequestTimeout, a.Logger))

			r.Get("/capacities", reportHandler.GetCapacities)
			r.Mount("/reports", reportHandler.Routes())
			r.Mount("/health", healthHandler.Routes())
			r.Get("/version", healthHandler.Version)
		})
	})
}

// getCORSConfig returns CORS configuration based on environment
func (a *Application) getCORSConfig() custommw.CORSConfig {
	isDevelopment := a.isDevelopmentMode()

	cfg := custommw.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}

	if isDevelopment {
		// Development mode: allow the local frontend dev server too
		cfg.AllowedOrigins = []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
			fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
		}
		a.Logger.Info("CORS configured for development mode",
			slog.Any("allowed_origins", cfg.AllowedOrigins))
	} else {
		// Production mode: same origin plus whatever the config allows
		cfg.AllowedOrigins = []string{
			fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
			fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
		}

		if a.Config.Security.EnableCORS && len(a.Config.Security.AllowedOrigins) > 0 {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, a.Config.Security.AllowedOrigins...)
		}

		a.Logger.Info("CORS configured for production mode",
			slog.Any("allowed_origins", cfg.AllowedOrigins))
	}

	return cfg
}

// isDevelopmentMode detects if we're running in development mode
func (a *Application) isDevelopmentMode() bool {
	if env := os.Getenv("GO_ENV"); env == "development" {
		return true
	}
	return a.Config.Logging.Development
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the application
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	// Log important paths for debugging
	paths, _ := config.GetPaths()
	a.Logger.InfoContext(ctx, "Application paths",
		slog.String("executable_dir", paths.ExecutableDir),
		slog.String("data_dir", paths.DataDir),
		slog.String("exports_dir", paths.ExportsDir),
		slog.String("logs_dir", paths.LogsDir))

	// Start server
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	// Collect runtime gauges until shutdown
	if a.SystemMetrics != nil {
		go a.SystemMetrics.Start(ctx)
	}

	// Perform health check on critical paths
	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Stop server
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.SystemMetrics != nil {
		a.SystemMetrics.Stop()
	}

	// Shutdown OpenTelemetry providers
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start application
	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	// Wait for interrupt or server failure
	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped, shutting down")
	}

	// Graceful shutdown
	return a.Stop(context.Background())
}

// performStartupHealthCheck verifies the critical directories are writable
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	paths, err := config.GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}

	validator := validation.NewFileValidator(a.Logger)

	directories := map[string]string{
		"Data":    paths.DataDir,
		"Exports": paths.ExportsDir,
		"Cache":   paths.CacheDir,
		"Logs":    paths.LogsDir,
	}

	var warnings []string
	for name, dir := range directories {
		if err := validator.ValidateOutputDirectory(dir); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
