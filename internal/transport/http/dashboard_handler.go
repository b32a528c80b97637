package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "agridash/internal/errors"
	"agridash/internal/middleware"
	api "agridash/pkg/contracts/api/v1"
	"agridash/pkg/contracts/domain"
)

// DashboardHandler serves computed dashboard pages.
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    StructValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, validator StructValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/pages", h.ListPages)
	r.Route("/{page}", func(r chi.Router) {
		r.Use(h.PageCtx)
		r.Get("/", h.GetPage)
		r.Post("/", h.PostPage)
		r.Get("/kpis/{kpi}", h.GetKPI)
		r.Get("/charts/{chart}", h.GetChart)
	})
	return r
}

type pageCtxKey struct{}

// PageCtx resolves the {page} parameter to a known page.
func (h *DashboardHandler) PageCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := chi.URLParam(r, "page")
		info, err := h.service.Page(domain.PageID(page))
		if err != nil {
			h.errorHandler.HandleError(w, r, mapServiceError(err, page, ""))
			return
		}
		ctx := context.WithValue(r.Context(), pageCtxKey{}, info.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func pageFrom(r *http.Request) domain.PageID {
	id, _ := r.Context().Value(pageCtxKey{}).(domain.PageID)
	return id
}

// ListPages handles GET /api/dashboard/pages
func (h *DashboardHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.PagesResponse{Pages: h.service.Pages()})
}

// GetPage handles GET /api/dashboard/{page}
func (h *DashboardHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.compute(w, r, sel)
}

// PostPage handles POST /api/dashboard/{page} with the selection as JSON.
func (h *DashboardHandler) PostPage(w http.ResponseWriter, r *http.Request) {
	var req api.PageRequest
	if r.Body != nil && r.Body != http.NoBody {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrInvalidRequest)
			return
		}
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.compute(w, r, req.Selection)
}

func (h *DashboardHandler) compute(w http.ResponseWriter, r *http.Request, sel domain.Selection) {
	page := pageFrom(r)
	result, err := h.service.Compute(r.Context(), page, sel)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "page computation failed",
			slog.String("page", string(page)),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, mapServiceError(err, string(page), ""))
		return
	}
	render.JSON(w, r, result)
}

// GetKPI handles GET /api/dashboard/{page}/kpis/{kpi}
func (h *DashboardHandler) GetKPI(w http.ResponseWriter, r *http.Request) {
	page, kpiID := pageFrom(r), chi.URLParam(r, "kpi")
	sel, err := parseSelection(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	kpi, err := h.service.KPI(r.Context(), page, kpiID, sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err, string(page), kpiID))
		return
	}
	render.JSON(w, r, kpi)
}

// GetChart handles GET /api/dashboard/{page}/charts/{chart}
func (h *DashboardHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	page, chartID := pageFrom(r), chi.URLParam(r, "chart")
	sel, err := parseSelection(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	chart, err := h.service.Chart(r.Context(), page, chartID, sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err, string(page), chartID))
		return
	}
	render.JSON(w, r, chart)
}
