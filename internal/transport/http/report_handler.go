package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"avrcli/internal/dataprocessing"
	apierrors "avrcli/internal/errors"
	"avrcli/internal/exporter"
	"avrcli/internal/infrastructure"
	custommw "avrcli/internal/middleware"
	"avrcli/internal/reports"
	"avrcli/internal/services"
	"avrcli/internal/validation"
	apiv1 "avrcli/pkg/contracts/api/v1"
	"avrcli/pkg/contracts/domain"
)

// multipartFormMemory bounds how much of an upload stays in memory before
// spilling to a temp file.
const multipartFormMemory = 10 << 20

// uploadBodySlack covers multipart framing and the capacity form fields on
// top of the configured file size limit.
const uploadBodySlack = 64 << 10

// ReportHandler handles the upload pipeline and stored report HTTP requests
// with RFC 7807 compliance
type ReportHandler struct {
	service        ReportServiceInterface
	upload         *validation.UploadValidator
	recordsLimit   int
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	queryValidator *custommw.QueryParamValidator
}

// NewReportHandler creates a new report handler with RFC 7807 error handling.
// recordsLimit is the default page size for GET records.
func NewReportHandler(service ReportServiceInterface, upload *validation.UploadValidator, recordsLimit int, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	if recordsLimit <= 0 {
		recordsLimit = 1000
	}
	return &ReportHandler{
		service:        service,
		upload:         upload,
		recordsLimit:   recordsLimit,
		logger:         logger.With(slog.String("component", "report_handler")),
		errorHandler:   errorHandler,
		queryValidator: custommw.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the stored-report routes, mounted at /api/reports
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListReports)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetReport)
		r.Delete("/", h.DeleteReport)
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/records", h.GetRecords)
		r.Get("/export/records.csv", h.ExportRecords)
		r.Get("/export/summary.csv", h.ExportSummary)
	})

	return r
}

func newAggregateResponse(report *domain.StoredReport) apiv1.AggregateResponse {
	resp := apiv1.AggregateResponse{
		OccupancySummary: report.Summary,
		ReportID:         report.ID,
		Warnings:         report.Warnings,
		Advisories:       report.Advisories,
	}
	// Keep the arrays present in the JSON even when empty.
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	if resp.Advisories == nil {
		resp.Advisories = []string{}
	}
	return resp
}

// Aggregate handles POST /api/aggregate: a multipart inventory upload with
// optional capacity overrides
func (h *ReportHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "aggregating upload",
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	// Refuse oversized bodies before buffering the whole upload.
	if max := h.upload.MaxSize(); max > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, max+uploadBodySlack)
	}

	if err := r.ParseMultipartForm(multipartFormMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				"UPLOAD_TOO_LARGE",
				"Uploaded file exceeds the size limit",
				fmt.Sprintf("limit is %d bytes", h.upload.MaxSize()),
			))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"INVALID_UPLOAD",
			"Upload is not valid multipart form data",
			err.Error(),
		))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrInvalidUpload)
		return
	}
	defer file.Close()

	if err := h.upload.ValidateUpload(header.Filename, header.Size); err != nil {
		h.handleUploadValidationError(w, r, err)
		return
	}

	caps, apiErr := h.parseCapacities(r)
	if apiErr != nil {
		h.errorHandler.HandleError(w, r, apiErr)
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"INVALID_UPLOAD",
			"Upload could not be read",
			err.Error(),
		))
		return
	}

	report, err := h.service.Aggregate(r.Context(), services.AggregateInput{
		Filename:   header.Filename,
		Raw:        raw,
		Capacities: caps,
	})
	if err != nil {
		h.handleAggregateError(w, r, err, reqID)
		return
	}

	render.JSON(w, r, newAggregateResponse(report))
}

// handleUploadValidationError maps upload validation failures to their
// RFC 7807 responses
func (h *ReportHandler) handleUploadValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var extErr *validation.ExtensionError
	if errors.As(err, &extErr) {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusUnsupportedMediaType,
			"UNSUPPORTED_FORMAT",
			"Only .xlsx and .xls workbooks are accepted",
			extErr.Error(),
		))
		return
	}

	var sizeErr *validation.SizeError
	if errors.As(err, &sizeErr) {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusRequestEntityTooLarge,
			"UPLOAD_TOO_LARGE",
			"Uploaded file exceeds the size limit",
			sizeErr.Error(),
		))
		return
	}

	h.errorHandler.HandleError(w, r, err)
}

// handleAggregateError maps pipeline failures to their RFC 7807 responses
func (h *ReportHandler) handleAggregateError(w http.ResponseWriter, r *http.Request, err error, reqID string) {
	h.logger.WarnContext(r.Context(), "aggregation failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
	)

	var missingErr *dataprocessing.MissingColumnsError
	if errors.As(err, &missingErr) {
		h.errorHandler.HandleError(w, r, apierrors.MissingColumnsError(missingErr.Columns))
		return
	}

	if errors.Is(err, dataprocessing.ErrNoValidData) {
		h.errorHandler.HandleError(w, r, apierrors.ErrNoValidData)
		return
	}

	var parseErr *dataprocessing.ParseError
	if errors.As(err, &parseErr) {
		h.errorHandler.HandleError(w, r, apierrors.ParseFailureError(parseErr))
		return
	}

	if errors.Is(err, services.ErrInvalidInput) {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"VALIDATION_ERROR",
			"Invalid capacity configuration",
			err.Error(),
		))
		return
	}

	h.errorHandler.HandleError(w, r, err)
}

// parseCapacities reads the optional capacity form fields, falling back to
// the configured defaults for absent ones
func (h *ReportHandler) parseCapacities(r *http.Request) (domain.CapacityConfig, *apierrors.APIError) {
	defaults := h.service.Defaults()
	req := apiv1.AggregateRequest{
		CapacityTotal: defaults.Total,
		Capacity075:   defaults.Height075,
		Capacity150:   defaults.Height150,
	}

	fields := []struct {
		name string
		dst  *int
	}{
		{"capacity_total", &req.CapacityTotal},
		{"capacity_075", &req.Capacity075},
		{"capacity_150", &req.Capacity150},
	}

	for _, field := range fields {
		value := strings.TrimSpace(r.FormValue(field.name))
		if value == "" {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return domain.CapacityConfig{}, apierrors.ErrValidation(field.name, fmt.Sprintf("%s must be an integer", field.name))
		}
		*field.dst = n
	}

	caps := domain.CapacityConfig{
		Total:     req.CapacityTotal,
		Height075: req.Capacity075,
		Height150: req.Capacity150,
	}

	if err := caps.Validate(); err != nil {
		return caps, apierrors.NewWithDetails(
			http.StatusBadRequest,
			"VALIDATION_ERROR",
			"Invalid capacity configuration",
			err.Error(),
		)
	}

	return caps, nil
}

// ListReports handles GET /api/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "listing reports",
		slog.String("request_id", reqID),
	)

	list := h.service.List(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   list,
		"count":  len(list),
	})
}

// GetReport handles GET /api/reports/{id}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleLookupError(w, r, err, id)
		return
	}

	render.JSON(w, r, report)
}

// DeleteReport handles DELETE /api/reports/{id}
func (h *ReportHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleLookupError(w, r, err, id)
		return
	}

	render.NoContent(w, r)
}

// GetDashboard handles GET /api/reports/{id}/dashboard
func (h *ReportHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dash, err := h.service.Dashboard(r.Context(), id)
	if err != nil {
		h.handleLookupError(w, r, err, id)
		return
	}

	render.JSON(w, r, dash)
}

// GetRecords handles GET /api/reports/{id}/records
func (h *ReportHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	scope, ok := h.queryValidator.ValidateEnum(w, r, "scope",
		[]string{services.ScopeFiltered, services.ScopeCleaned}, services.ScopeFiltered)
	if !ok {
		return
	}
	limit, ok := h.queryValidator.ValidateInt(w, r, "limit", 1, 10000, h.recordsLimit)
	if !ok {
		return
	}
	offset, ok := h.queryValidator.ValidateInt(w, r, "offset", 0, math.MaxInt32, 0)
	if !ok {
		return
	}

	page, err := h.service.Records(r.Context(), id, scope, limit, offset)
	if err != nil {
		h.handleLookupError(w, r, err, id)
		return
	}

	rows := page.Rows
	if rows == nil {
		rows = [][]string{}
	}

	render.JSON(w, r, apiv1.RecordsResponse{
		ReportID: page.ReportID,
		Scope:    page.Scope,
		Columns:  page.Columns,
		Rows:     rows,
		Total:    page.Total,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
}

// ExportRecords handles GET /api/reports/{id}/export/records.csv
func (h *ReportHandler) ExportRecords(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	scope, ok := h.queryValidator.ValidateEnum(w, r, "scope",
		[]string{services.ScopeFiltered, services.ScopeCleaned}, services.ScopeFiltered)
	if !ok {
		return
	}

	page, err := h.service.Records(r.Context(), id, scope, 0, 0)
	if err != nil {
		h.handleLookupError(w, r, err, id)
		return
	}

	filename := exporter.RecordsFilename(page.Filename, scope)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := exporter.ExportRecords(w, page.Columns, page.Rows, true); err != nil {
		// Headers are already on the wire, nothing left but to log.
		h.logger.ErrorContext(r.Context(), "records export failed mid-stream",
			slog.String("report_id", id),
			slog.String("error", err.Error()))
		return
	}

	infrastructure.RecordExport(r.Context(), custommw.GetBusinessMetricsFromContext(r.Context()), "records")
}

// ExportSummary handles GET /api/reports/{id}/export/summary.csv
func (h *ReportHandler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleLookupError(w, r, err, id)
		return
	}

	filename := exporter.SummaryFilename(report.Filename)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := exporter.ExportSummary(w, report.Summary, true); err != nil {
		h.logger.ErrorContext(r.Context(), "summary export failed mid-stream",
			slog.String("report_id", id),
			slog.String("error", err.Error()))
		return
	}

	infrastructure.RecordExport(r.Context(), custommw.GetBusinessMetricsFromContext(r.Context()), "summary")
}

// GetCapacities handles GET /api/capacities
func (h *ReportHandler) GetCapacities(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Defaults())
}

// handleLookupError maps store lookup failures to their RFC 7807 responses
func (h *ReportHandler) handleLookupError(w http.ResponseWriter, r *http.Request, err error, id string) {
	if errors.Is(err, reports.ErrNotFound) {
		h.errorHandler.HandleError(w, r, apierrors.ReportNotFoundError(id))
		return
	}

	if errors.Is(err, services.ErrInvalidScope) {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("scope", err.Error()))
		return
	}

	h.errorHandler.HandleError(w, r, err)
}
