package http

import (
	"context"
	"io"

	"agridash/internal/exporter"
	"agridash/internal/services"
	"agridash/pkg/contracts/domain"
)

// DashboardServiceInterface computes dashboard pages
type DashboardServiceInterface interface {
	Pages() []domain.PageInfo
	Page(id domain.PageID) (domain.PageInfo, error)
	Compute(ctx context.Context, id domain.PageID, sel domain.Selection) (*domain.PageResult, error)
	KPI(ctx context.Context, id domain.PageID, kpiID string, sel domain.Selection) (*domain.KPI, error)
	Chart(ctx context.Context, id domain.PageID, chartID string, sel domain.Selection) (*domain.Chart, error)
}

// DataServiceInterface defines the interface for data operations
type DataServiceInterface interface {
	Filters(ctx context.Context) domain.FilterOptions
	Info(ctx context.Context) domain.DatasetInfo
	Observations(ctx context.Context, sel domain.Selection, normalize bool, limit, offset int) (*services.ObservationPage, error)
	Export(ctx context.Context, out io.Writer, sel domain.Selection, format exporter.Format, normalize bool) (int, error)
	GetReports(ctx context.Context) ([]services.ReportFile, error)
	ReportPath(name string) (string, error)
}

// HealthServiceInterface reports service health
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

// StructValidator checks decoded requests against their validate tags.
type StructValidator interface {
	ValidateStruct(v interface{}) error
}
