package http

import (
	"context"

	"avrcli/internal/dashboard"
	"avrcli/internal/services"
	"avrcli/pkg/contracts/domain"
)

// ReportServiceInterface defines the report service surface the handlers
// depend on, so tests can substitute a mock.
type ReportServiceInterface interface {
	Aggregate(ctx context.Context, input services.AggregateInput) (*domain.StoredReport, error)
	List(ctx context.Context) []domain.StoredReport
	Get(ctx context.Context, id string) (domain.StoredReport, error)
	Delete(ctx context.Context, id string) error
	Dashboard(ctx context.Context, id string) (*dashboard.Dashboard, error)
	Records(ctx context.Context, id, scope string, limit, offset int) (*services.RecordsPage, error)
	Defaults() domain.CapacityConfig
}
