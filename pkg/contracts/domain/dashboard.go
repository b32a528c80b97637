package domain

// PageID identifies a dashboard page.
type PageID string

const (
	PageOverview  PageID = "overview"
	PageNutrients PageID = "nutrients"
	PageManure    PageID = "manure"
	PageErosion   PageID = "erosion"
	PageWater     PageID = "water"
)

// Pages lists every page in navigation order.
var Pages = []PageID{PageOverview, PageNutrients, PageManure, PageErosion, PageWater}

// Dimension is a selection control offered by a page.
type Dimension string

const (
	DimCountries          Dimension = "countries"
	DimYearRange          Dimension = "year_range"
	DimCategories         Dimension = "categories"
	DimNutrients          Dimension = "nutrients"
	DimUnits              Dimension = "units"
	DimWaterTypes         Dimension = "water_types"
	DimErosionLevels      Dimension = "erosion_levels"
	DimStatuses           Dimension = "statuses"
	DimContaminationTypes Dimension = "contamination_types"
)

// PageInfo describes a page and the selection controls it honours.
type PageInfo struct {
	ID         PageID      `json:"id"`
	Title      string      `json:"title"`
	Dimensions []Dimension `json:"dimensions"`
	KPIs       []string    `json:"kpis"`
	Charts     []string    `json:"charts"`
}

// KPI is a single formatted scalar shown on a card.
type KPI struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Value string `json:"value"`
	// Detail is the optional hover text of the card.
	Detail string `json:"detail,omitempty"`
	// Placeholder is set when Value is the neutral "no data" rendering.
	Placeholder bool `json:"placeholder"`
}

// ChartType tells the rendering layer which trace kind to draw.
type ChartType string

const (
	ChartLine       ChartType = "line"
	ChartBar        ChartType = "bar"
	ChartHBar       ChartType = "hbar"
	ChartGroupedBar ChartType = "grouped_bar"
	ChartStackedBar ChartType = "stacked_bar"
	ChartScatter    ChartType = "scatter"
	ChartHeatmap    ChartType = "heatmap"
	ChartChoropleth ChartType = "choropleth"
	ChartECDF       ChartType = "ecdf"
	ChartPie        ChartType = "pie"
	ChartFunnel     ChartType = "funnel"
	ChartCombo      ChartType = "combo"
)

// Point is one datum of a series. X is a year, a category name or a number
// depending on the chart.
type Point struct {
	X     interface{} `json:"x"`
	Y     float64     `json:"y"`
	Label string      `json:"label,omitempty"`
}

// Series is one named trace.
type Series struct {
	Name string  `json:"name"`
	Kind string  `json:"kind,omitempty"`
	Axis string  `json:"axis,omitempty"`
	Data []Point `json:"data"`
}

// Heatmap is a dense matrix. Missing cells are nil.
type Heatmap struct {
	Rows    []string     `json:"rows"`
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

// Chart is a rendering-agnostic chart specification.
type Chart struct {
	ID         string    `json:"id"`
	Type       ChartType `json:"type"`
	Title      string    `json:"title"`
	XLabel     string    `json:"x_label,omitempty"`
	YLabel     string    `json:"y_label,omitempty"`
	Series     []Series  `json:"series,omitempty"`
	Heatmap    *Heatmap  `json:"heatmap,omitempty"`
	Annotation string    `json:"annotation,omitempty"`
	// Empty is set when the chart has nothing to plot; Annotation then
	// explains why.
	Empty bool `json:"empty"`
}

// PageResult is a fully computed page.
type PageResult struct {
	Page      PageID    `json:"page"`
	Selection Selection `json:"selection"`
	RowCount  int       `json:"row_count"`
	KPIs      []KPI     `json:"kpis"`
	Charts    []Chart   `json:"charts"`
}
