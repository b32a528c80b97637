package services

import "errors"

// Dashboard service errors
var (
	ErrUnknownPage  = errors.New("unknown dashboard page")
	ErrUnknownKPI   = errors.New("unknown KPI")
	ErrUnknownChart = errors.New("unknown chart")

	// ErrNonFiniteValue marks a chart that computed an Inf or NaN.
	ErrNonFiniteValue = errors.New("chart holds a non-finite value")

	// Export errors
	ErrExportTooLarge = errors.New("export exceeds row limit")

	// Report errors
	ErrReportNotFound    = errors.New("report not found")
	ErrInvalidReportPath = errors.New("invalid report path")
)
