package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "agridash/internal/errors"
	"agridash/internal/middleware"
	"agridash/internal/services"
	"agridash/pkg/contracts/domain"
)

func newDashboardRouter(svc *MockDashboardService) http.Handler {
	h := NewDashboardHandler(svc, middleware.NewValidator(), testLogger(), testErrorHandler())
	return newTestRouter("/api/dashboard", h.Routes())
}

func knownPages(svc *MockDashboardService) {
	for _, id := range domain.Pages {
		svc.On("Page", id).Return(domain.PageInfo{ID: id}, nil).Maybe()
	}
	svc.On("Page", mock.Anything).Return(domain.PageInfo{}, fmt.Errorf("%w: x", services.ErrUnknownPage)).Maybe()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestDashboardHandler_ListPages(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Pages").Return([]domain.PageInfo{{ID: domain.PageOverview, Title: "Overview"}})

	rec := httptest.NewRecorder()
	newDashboardRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/pages", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pages":[{"id":"overview","title":"Overview","dimensions":null,"kpis":null,"charts":null}]}`, rec.Body.String())
}

func TestDashboardHandler_GetPage(t *testing.T) {
	wantSel := domain.Selection{
		Countries: []string{"France", "Japan"},
		YearRange: &domain.YearRange{Start: 2000, End: 2010},
		Nutrients: []string{"Nitrogen"},
	}

	svc := new(MockDashboardService)
	knownPages(svc)
	svc.On("Compute", domain.PageNutrients, wantSel).
		Return(&domain.PageResult{Page: domain.PageNutrients, RowCount: 7}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/dashboard/nutrients?country=France&country=Japan&year_start=2000&year_end=2010&nutrient=Nitrogen", nil)
	newDashboardRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "nutrients", body["page"])
	assert.Equal(t, float64(7), body["row_count"])
	svc.AssertExpectations(t)
}

func TestDashboardHandler_OpenYearBound(t *testing.T) {
	svc := new(MockDashboardService)
	knownPages(svc)
	svc.On("Compute", domain.PageErosion, domain.Selection{YearRange: &domain.YearRange{Start: 2005, End: 9999}}).
		Return(&domain.PageResult{Page: domain.PageErosion}, nil)

	rec := httptest.NewRecorder()
	newDashboardRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/erosion?year_start=2005", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestDashboardHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		setup      func(*MockDashboardService)
		wantStatus int
		wantType   string
	}{
		{
			name:       "unknown page",
			target:     "/api/dashboard/forestry",
			wantStatus: http.StatusNotFound,
			wantType:   apierrors.TypePageNotFound,
		},
		{
			name:       "year not a number",
			target:     "/api/dashboard/overview?year_start=abc",
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "inverted year range",
			target:     "/api/dashboard/overview?year_start=2010&year_end=2000",
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "unknown contamination type",
			target:     "/api/dashboard/water?contamination_type=Arsenic",
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:   "unknown kpi",
			target: "/api/dashboard/overview/kpis/bogus",
			setup: func(m *MockDashboardService) {
				m.On("KPI", domain.PageOverview, "bogus", domain.Selection{}).
					Return(nil, fmt.Errorf("%w: overview/bogus", services.ErrUnknownKPI))
			},
			wantStatus: http.StatusNotFound,
			wantType:   apierrors.TypeItemNotFound,
		},
		{
			name:   "unknown chart",
			target: "/api/dashboard/water/charts/bogus",
			setup: func(m *MockDashboardService) {
				m.On("Chart", domain.PageWater, "bogus", domain.Selection{}).
					Return(nil, fmt.Errorf("%w: water/bogus", services.ErrUnknownChart))
			},
			wantStatus: http.StatusNotFound,
			wantType:   apierrors.TypeItemNotFound,
		},
		{
			name:   "computation timed out",
			target: "/api/dashboard/manure",
			setup: func(m *MockDashboardService) {
				m.On("Compute", domain.PageManure, domain.Selection{}).
					Return(nil, fmt.Errorf("computing page manure: %w", context.DeadlineExceeded))
			},
			wantStatus: http.StatusGatewayTimeout,
			wantType:   apierrors.TypeTimeout,
		},
		{
			name:       "malformed post body",
			method:     http.MethodPost,
			target:     "/api/dashboard/overview",
			body:       `{"selection":`,
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			knownPages(svc)
			if tt.setup != nil {
				tt.setup(svc)
			}

			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			rec := httptest.NewRecorder()
			newDashboardRouter(svc).ServeHTTP(rec, httptest.NewRequest(method, tt.target, strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantType, decodeBody(t, rec)["type"])
			svc.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_PostPage(t *testing.T) {
	sel := domain.Selection{
		Countries:          []string{"France"},
		ContaminationTypes: []string{"Nitrate"},
	}

	svc := new(MockDashboardService)
	knownPages(svc)
	svc.On("Compute", domain.PageWater, sel).Return(&domain.PageResult{Page: domain.PageWater}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/water",
		strings.NewReader(`{"selection":{"countries":["France"],"contamination_types":["Nitrate"]}}`))
	req.Header.Set("Content-Type", "application/json")
	newDashboardRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestDashboardHandler_SingleItems(t *testing.T) {
	svc := new(MockDashboardService)
	knownPages(svc)
	svc.On("KPI", domain.PageOverview, "total_indicators", domain.Selection{Statuses: []string{"Normal value"}}).
		Return(&domain.KPI{ID: "total_indicators", Value: "10"}, nil)
	svc.On("Chart", domain.PageErosion, "erosion_risk_distribution", domain.Selection{}).
		Return(&domain.Chart{ID: "erosion_risk_distribution", Type: domain.ChartPie}, nil)

	router := newDashboardRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/overview/kpis/total_indicators?status=Normal+value", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10", decodeBody(t, rec)["value"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/erosion/charts/erosion_risk_distribution", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pie", decodeBody(t, rec)["type"])

	svc.AssertExpectations(t)
}
