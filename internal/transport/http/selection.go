package http

import (
	"errors"
	"net/http"

	apierrors "agridash/internal/errors"
	"agridash/internal/services"
	api "agridash/pkg/contracts/api/v1"
	"agridash/pkg/contracts/domain"
)

// parseSelection reads the selection from the query string and validates it.
func parseSelection(r *http.Request, v StructValidator) (domain.Selection, error) {
	sel, err := api.SelectionFromQuery(r.URL.Query())
	if err != nil {
		var pe *api.ParamError
		if errors.As(err, &pe) {
			return domain.Selection{}, apierrors.ErrValidation(pe.Param, pe.Message)
		}
		return domain.Selection{}, err
	}
	if err := v.ValidateStruct(sel); err != nil {
		return domain.Selection{}, err
	}
	return sel, nil
}

// mapServiceError translates service sentinels into API errors. Errors it
// does not know pass through for the ErrorHandler to classify.
func mapServiceError(err error, page, item string) error {
	switch {
	case errors.Is(err, services.ErrUnknownPage):
		return apierrors.PageNotFound(page)
	case errors.Is(err, services.ErrUnknownKPI):
		return apierrors.ItemNotFound("kpi", page, item)
	case errors.Is(err, services.ErrUnknownChart):
		return apierrors.ItemNotFound("chart", page, item)
	case errors.Is(err, services.ErrExportTooLarge):
		return apierrors.NewWithDetails(http.StatusBadRequest, apierrors.CodeInvalidRequest,
			"Export exceeds the row limit, narrow the selection",
			map[string]int{"max_rows": services.MaxExportRows})
	case errors.Is(err, services.ErrReportNotFound):
		return apierrors.New(http.StatusNotFound, apierrors.CodeNotFound, "Report not found")
	case errors.Is(err, services.ErrInvalidReportPath):
		return apierrors.ErrValidation("path", "must name a csv or xlsx file inside the reports directory")
	}
	return err
}
