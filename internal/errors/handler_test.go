package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(includeStack bool) *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewJSONHandler(io.Discard, nil)), includeStack)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
	}{
		{
			name:       "validation error",
			err:        ErrValidation("year_start", "must not be after year_end"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantCode:   CodeValidationFailed,
		},
		{
			name:       "unknown page",
			err:        PageNotFound("forestry"),
			wantStatus: http.StatusNotFound,
			wantType:   TypePageNotFound,
			wantCode:   CodePageNotFound,
		},
		{
			name:       "unknown item",
			err:        ItemNotFound("kpi", "overview", "bogus"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeItemNotFound,
			wantCode:   CodeItemNotFound,
		},
		{
			name:       "wrapped api error",
			err:        fmt.Errorf("export: %w", ExportFailed("xlsx", assert.AnError)),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeExportFailed,
			wantCode:   CodeExportFailed,
		},
		{
			name:       "deadline exceeded",
			err:        fmt.Errorf("computing page: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "plain error",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	h := newTestHandler(false)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard/overview", nil)
			rec := httptest.NewRecorder()

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/dashboard/overview", body["instance"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			assert.NotContains(t, body, "stack")
		})
	}
}

func TestHandleErrorValidationDetails(t *testing.T) {
	h := newTestHandler(false)
	req := httptest.NewRequest(http.MethodGet, "/api/data/observations", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, NewValidationErrors([]ValidationError{
		{Field: "limit", Message: "must be at most 10000"},
		{Field: "year_start", Message: "must be a year"},
	}))

	body := decodeProblem(t, rec)
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	assert.Len(t, errs, 2)
}

func TestHandleErrorNil(t *testing.T) {
	h := newTestHandler(false)
	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestHandlePanic(t *testing.T) {
	h := newTestHandler(true)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/water", nil)
	rec := httptest.NewRecorder()

	h.HandlePanic(rec, req, "boom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, "boom", body["panic"])
	assert.Contains(t, body, "stack")
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestHandler(false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decodeProblem(t, rec)["detail"], "DELETE")
}

func TestProblemDetailsMarshal(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "", "/x").
		WithExtension("error_code", CodeValidationFailed).
		WithExtension("status", "ignored")

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, float64(http.StatusBadRequest), body["status"], "standard members win over extensions")
	assert.NotContains(t, body, "detail")
	assert.Equal(t, CodeValidationFailed, body["error_code"])
}

func TestAPIErrorError(t *testing.T) {
	err := ErrPanic("x")
	assert.Equal(t, "Internal server error", err.Error())
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
}
