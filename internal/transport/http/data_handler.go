package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"agridash/internal/config"
	apierrors "agridash/internal/errors"
	"agridash/internal/exporter"
	"agridash/internal/middleware"
	"agridash/internal/services"
	api "agridash/pkg/contracts/api/v1"
)

// DataHandler serves filter options, raw rows and downloads.
type DataHandler struct {
	service      DataServiceInterface
	validator    StructValidator
	params       *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DataServiceInterface, validator StructValidator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		validator:    validator,
		params:       middleware.NewQueryParamValidator(errorHandler),
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the data routes. Downloads are audited.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/filters", h.GetFilters)
		r.Get("/info", h.GetInfo)
		r.Get("/observations", h.GetObservations)
		r.Get("/reports", h.GetReports)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuditLog(h.logger))
		r.Get("/export.{format}", h.Export)
		r.Get("/reports/*", h.DownloadReport)
	})

	return r
}

// GetFilters handles GET /api/data/filters
func (h *DataHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Filters(r.Context()))
}

// GetInfo handles GET /api/data/info
func (h *DataHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Info(r.Context()))
}

// GetObservations handles GET /api/data/observations
func (h *DataHandler) GetObservations(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	limit, ok := h.params.ValidateInt(w, r, api.ParamLimit, 0, config.MaxPageSize, config.DefaultPageSize)
	if !ok {
		return
	}
	offset, ok := h.params.ValidateInt(w, r, api.ParamOffset, 0, int(^uint(0)>>1), 0)
	if !ok {
		return
	}
	normalize, ok := h.params.ValidateBool(w, r, api.ParamNormalize, false)
	if !ok {
		return
	}

	page, err := h.service.Observations(r.Context(), sel, normalize, limit, offset)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err, "", ""))
		return
	}
	render.JSON(w, r, page)
}

// Export handles GET /api/data/export.{csv,xlsx}. The file is rendered to
// memory first so a failure can still be reported as a problem document.
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := exporter.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "must be csv or xlsx"))
		return
	}
	sel, err := parseSelection(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	normalize, ok := h.params.ValidateBool(w, r, api.ParamNormalize, false)
	if !ok {
		return
	}

	var buf bytes.Buffer
	rows, err := h.service.Export(r.Context(), &buf, sel, format, normalize)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		if errors.Is(err, services.ErrExportTooLarge) || r.Context().Err() != nil {
			h.errorHandler.HandleError(w, r, mapServiceError(err, "", ""))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ExportFailed(string(format), err))
		return
	}

	name := fmt.Sprintf("agri_indicators_%s%s", time.Now().UTC().Format("20060102T150405"), format.Extension())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Row-Count", strconv.Itoa(rows))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted",
			slog.String("error", err.Error()))
	}
}

// GetReports handles GET /api/data/reports
func (h *DataHandler) GetReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.GetReports(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get reports",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   reports,
		"count":  len(reports),
	})
}

// DownloadReport handles GET /api/data/reports/{path}, where path may
// contain slashes for reports in subdirectories.
func (h *DataHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "*")
	name, err := url.PathUnescape(raw)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("path", "invalid path encoding"))
		return
	}

	path, err := h.service.ReportPath(name)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err, "", ""))
		return
	}

	format, _ := exporter.ParseFormat(filepath.Ext(path)[1:])
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}
