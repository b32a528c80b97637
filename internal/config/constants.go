package config

import "agridash/pkg/contracts"

// Application info
const (
	AppName    = "Agri-Environmental Indicators Dashboard"
	AppVersion = contracts.Version
)

// Dataset labels the dashboard pages depend on
const (
	// AllSentinel in a selection list means "do not restrict this dimension".
	AllSentinel = "All"

	// LandAreaCategory marks the rows that carry each country's agricultural
	// land area in thousand hectares.
	LandAreaCategory = "Total agricultural land area"

	BalanceCategory = "Balance (inputs minus outputs)"
	InputsCategory  = "Nutrient inputs"
	OutputsCategory = "Nutrient outputs"

	NormalStatus = "Normal value"

	// NoDataAnnotation is attached to charts with nothing to plot.
	NoDataAnnotation = "No data available for selected filters"

	// TitleWidth is the column at which chart titles are wrapped.
	TitleWidth = 85
)

// Selection limits
const (
	MaxSelectionValues = 500
	MaxPageSize        = 10000
	DefaultPageSize    = 500
)
