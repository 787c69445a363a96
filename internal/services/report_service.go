package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"avrcli/internal/dashboard"
	"avrcli/internal/dataprocessing"
	"avrcli/internal/infrastructure"
	"avrcli/internal/occupancy"
	"avrcli/internal/reports"
	"avrcli/pkg/contracts/domain"
)

// Record scopes selectable when reading back a stored report's rows.
const (
	// ScopeFiltered returns only the rows that entered the occupancy counts.
	ScopeFiltered = "filtered"
	// ScopeCleaned returns every row that survived spreadsheet cleaning,
	// including statuses the counts ignore.
	ScopeCleaned = "cleaned"
)

// AggregateInput carries one uploaded spreadsheet through the pipeline.
type AggregateInput struct {
	// Filename is the client-side name, kept for display only. Format
	// detection never looks at it.
	Filename string
	// Raw is the spreadsheet content.
	Raw []byte
	// Capacities are the capacities to count against. The zero value means
	// "use the configured defaults".
	Capacities domain.CapacityConfig
}

// RecordsPage is one page of rows from a stored report.
type RecordsPage struct {
	ReportID string
	Filename string
	Scope    string
	Columns  []string
	Rows     [][]string
	Total    int
	Limit    int
	Offset   int
}

// ReportService runs uploads through the load → aggregate pipeline and keeps
// the results in the bounded report store. It owns the business-level
// telemetry for the pipeline; the packages below it stay free of
// orchestration concerns.
type ReportService struct {
	cache    *dataprocessing.ParseCache
	store    *reports.Store
	defaults domain.CapacityConfig
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
}

// NewReportService creates a report service using the default logger.
func NewReportService(cache *dataprocessing.ParseCache, store *reports.Store, defaults domain.CapacityConfig, metrics *infrastructure.BusinessMetrics) *ReportService {
	return NewReportServiceWithLogger(cache, store, defaults, metrics, slog.Default())
}

// NewReportServiceWithLogger creates a report service with a specific logger.
func NewReportServiceWithLogger(cache *dataprocessing.ParseCache, store *reports.Store, defaults domain.CapacityConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ReportService {
	// Ensure we have a logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("ReportService initialized",
		slog.Int("capacity_total", defaults.Total),
		slog.Int("capacity_075", defaults.Height075),
		slog.Int("capacity_150", defaults.Height150))

	return &ReportService{
		cache:    cache,
		store:    store,
		defaults: defaults,
		metrics:  metrics,
		logger:   logger,
	}
}

// Defaults returns the capacity configuration uploads fall back to when the
// request does not override it.
func (s *ReportService) Defaults() domain.CapacityConfig {
	return s.defaults
}

// Aggregate loads the spreadsheet, counts slot occupancy against the
// effective capacities, and stores the result for later retrieval. Loader
// errors pass through untouched so callers can inspect their concrete types.
func (s *ReportService) Aggregate(ctx context.Context, input AggregateInput) (*domain.StoredReport, error) {
	start := time.Now()

	caps := input.Capacities
	if caps == (domain.CapacityConfig{}) {
		caps = s.defaults
	}
	if err := caps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	loaded, err := s.cache.Load(ctx, input.Filename, input.Raw)
	if err != nil {
		infrastructure.RecordAggregationMetrics(ctx, s.metrics, "unknown", time.Since(start), false, err)
		s.logger.WarnContext(ctx, "aggregation rejected",
			slog.String("filename", input.Filename),
			slog.String("error", err.Error()))
		return nil, err
	}

	result := occupancy.Aggregate(loaded.Table, caps)

	report := domain.StoredReport{
		ID:          uuid.NewString(),
		Filename:    input.Filename,
		UploadedAt:  time.Now().UTC(),
		RowsCleaned: len(loaded.Table.Rows),
		RowsCounted: result.Counted,
		Capacities:  caps,
		Summary:     result.Summary,
	}
	if result.EmptyFilter {
		report.Warnings = append(report.Warnings, occupancy.EmptyFilterWarning)
	}
	if advisory, ok := caps.InconsistencyAdvisory(); ok {
		report.Advisories = append(report.Advisories, advisory)
	}

	evicted := s.store.Put(report, loaded.Table)

	infrastructure.RecordUploadBytes(ctx, s.metrics, loaded.SourceFormat, int64(len(input.Raw)))
	infrastructure.RecordRowMetrics(ctx, s.metrics, loaded.SourceFormat,
		int64(loaded.RowsRead), int64(loaded.RowsDropped), int64(result.Counted))
	infrastructure.RecordReportStoreChange(ctx, s.metrics, 1)
	infrastructure.RecordReportEviction(ctx, s.metrics, int64(len(evicted)))
	infrastructure.RecordAggregationMetrics(ctx, s.metrics, loaded.SourceFormat, time.Since(start), true, nil)

	s.logger.InfoContext(ctx, "report aggregated",
		slog.String("report_id", report.ID),
		slog.String("filename", report.Filename),
		slog.String("source_format", loaded.SourceFormat),
		slog.Int("rows_cleaned", report.RowsCleaned),
		slog.Int("rows_counted", report.RowsCounted),
		slog.Int("stored_total", report.Summary.StoredTotal),
		slog.Int("evicted", len(evicted)),
		slog.Duration("duration", time.Since(start)))

	return &report, nil
}

// List returns the stored report metadata, newest first.
func (s *ReportService) List(ctx context.Context) []domain.StoredReport {
	return s.store.List()
}

// Get returns the stored metadata for one report.
func (s *ReportService) Get(ctx context.Context, id string) (domain.StoredReport, error) {
	report, _, err := s.store.Get(id)
	return report, err
}

// Delete removes a stored report. Returns reports.ErrNotFound for unknown ids.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}

	infrastructure.RecordReportStoreChange(ctx, s.metrics, -1)
	s.logger.InfoContext(ctx, "report deleted", slog.String("report_id", id))
	return nil
}

// Dashboard builds the dashboard payload for one stored report.
func (s *ReportService) Dashboard(ctx context.Context, id string) (*dashboard.Dashboard, error) {
	report, table, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return dashboard.Build(report.Summary, report.Capacities, table, report.Warnings, report.Advisories), nil
}

// Records returns one page of a stored report's rows. An empty scope defaults
// to ScopeFiltered. A limit of zero returns every row from the offset on.
func (s *ReportService) Records(ctx context.Context, id, scope string, limit, offset int) (*RecordsPage, error) {
	if scope == "" {
		scope = ScopeFiltered
	}

	report, table, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	var rows []domain.SlotRecord
	switch scope {
	case ScopeFiltered:
		rows = occupancy.FilterRows(table)
	case ScopeCleaned:
		rows = table.Rows
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}

	total := len(rows)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	window := rows[offset:]
	if limit > 0 && limit < len(window) {
		window = window[:limit]
	}

	cells := make([][]string, 0, len(window))
	for _, record := range window {
		cells = append(cells, record.Cells)
	}

	return &RecordsPage{
		ReportID: id,
		Filename: report.Filename,
		Scope:    scope,
		Columns:  table.Columns,
		Rows:     cells,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// CacheStats exposes parse cache counters for the status endpoints.
func (s *ReportService) CacheStats() map[string]any {
	return s.cache.Stats()
}

// StoreStats exposes report store counters for the status endpoints.
func (s *ReportService) StoreStats() map[string]any {
	return s.store.Stats()
}
