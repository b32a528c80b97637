package http

import (
	"context"
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	apierrors "agridash/internal/errors"
	"agridash/internal/exporter"
	"agridash/internal/middleware"
	"agridash/internal/services"
	"agridash/pkg/contracts/domain"
)

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Pages() []domain.PageInfo {
	return m.Called().Get(0).([]domain.PageInfo)
}

func (m *MockDashboardService) Page(id domain.PageID) (domain.PageInfo, error) {
	args := m.Called(id)
	return args.Get(0).(domain.PageInfo), args.Error(1)
}

func (m *MockDashboardService) Compute(ctx context.Context, id domain.PageID, sel domain.Selection) (*domain.PageResult, error) {
	args := m.Called(id, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PageResult), args.Error(1)
}

func (m *MockDashboardService) KPI(ctx context.Context, id domain.PageID, kpiID string, sel domain.Selection) (*domain.KPI, error) {
	args := m.Called(id, kpiID, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KPI), args.Error(1)
}

func (m *MockDashboardService) Chart(ctx context.Context, id domain.PageID, chartID string, sel domain.Selection) (*domain.Chart, error) {
	args := m.Called(id, chartID, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chart), args.Error(1)
}

type MockDataService struct {
	mock.Mock
}

func (m *MockDataService) Filters(ctx context.Context) domain.FilterOptions {
	return m.Called().Get(0).(domain.FilterOptions)
}

func (m *MockDataService) Info(ctx context.Context) domain.DatasetInfo {
	return m.Called().Get(0).(domain.DatasetInfo)
}

func (m *MockDataService) Observations(ctx context.Context, sel domain.Selection, normalize bool, limit, offset int) (*services.ObservationPage, error) {
	args := m.Called(sel, normalize, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ObservationPage), args.Error(1)
}

func (m *MockDataService) Export(ctx context.Context, out io.Writer, sel domain.Selection, format exporter.Format, normalize bool) (int, error) {
	args := m.Called(sel, format, normalize)
	if body, ok := args.Get(2).(string); ok {
		io.WriteString(out, body)
	}
	return args.Int(0), args.Error(1)
}

func (m *MockDataService) GetReports(ctx context.Context) ([]services.ReportFile, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.ReportFile), args.Error(1)
}

func (m *MockDataService) ReportPath(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}

type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testLogger(), false)
}

// newTestRouter mounts a handler's routes the way the server does.
func newTestRouter(prefix string, routes chi.Router) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount(prefix, routes)
	return r
}
