package services

import (
	"math"
	"sort"
	"strconv"

	"agridash/internal/analytics"
	"agridash/pkg/contracts/domain"
)

// criticalRiskLevels are matched as substrings of the erosion risk level.
var criticalRiskLevels = []string{"High", "Very high", "Severe", "Critical", "Extreme"}

func erosionPage() *pageDef {
	return &pageDef{
		info: domain.PageInfo{
			ID:    domain.PageErosion,
			Title: "Erosion",
			Dimensions: []domain.Dimension{
				domain.DimCountries, domain.DimYearRange, domain.DimErosionLevels, domain.DimStatuses,
			},
		},
		base: erosionBase,
		kpis: []kpiDef{
			{id: "total_observations", title: "Total Observations", fallback: "0", compute: erosionObservations},
			{id: "critical_risk_areas", title: "Critical Risk Areas", fallback: "0", compute: criticalRiskAreas},
			{id: "avg_erosion_intensity", title: "Average Erosion Intensity", fallback: "0.0", compute: averageErosion},
			{id: "countries_affected", title: "Countries Affected", fallback: "0", compute: countriesAffected},
		},
		charts: []chartDef{
			{id: "temporal_evolution", kind: domain.ChartCombo, compute: erosionTemporal},
			{id: "geographic_heatmap", kind: domain.ChartHeatmap, compute: erosionGeographic},
			{id: "risk_comparison", kind: domain.ChartGroupedBar, compute: erosionRiskComparison},
		},
	}
}

// erosionBase keeps the erosion measures before applying the selection.
func erosionBase(source []domain.Observation, sel domain.Selection) []domain.Observation {
	return analytics.Apply(analytics.Where(source, analytics.Contains(domain.FieldCategory, "erosion")), sel)
}

func erosionObservations(pc *pageContext) domain.KPI {
	k := valueKPI(formatCount(float64(len(pc.rows))))
	k.Placeholder = len(pc.rows) == 0
	return k
}

func criticalRiskAreas(pc *pageContext) domain.KPI {
	if len(pc.rows) == 0 {
		return placeholderKPI("0")
	}
	critical := analytics.Where(pc.rows, analytics.Contains(domain.FieldErosionLevel, criticalRiskLevels...))
	return valueKPI(formatCount(float64(len(critical))))
}

func averageErosion(pc *pageContext) domain.KPI {
	mean, ok := analytics.Mean(pc.rows)
	if !ok {
		return placeholderKPI(formatFixed(0, 1))
	}
	return valueKPI(formatFixed(mean, 1))
}

func countriesAffected(pc *pageContext) domain.KPI {
	n := analytics.NUnique(pc.rows, analytics.By(domain.FieldCountry))
	k := valueKPI(formatCount(float64(n)))
	k.Placeholder = n == 0
	return k
}

// yearly collects values per year and returns them in year order.
type yearly map[int][]float64

func (y yearly) add(year string, v float64) {
	n, _ := strconv.Atoi(year)
	y[n] = append(y[n], v)
}

func (y yearly) points(agg func([]float64) float64) []domain.Point {
	years := make([]int, 0, len(y))
	for year := range y {
		years = append(years, year)
	}
	sort.Ints(years)
	out := make([]domain.Point, len(years))
	for i, year := range years {
		out[i] = domain.Point{X: year, Y: agg(y[year])}
	}
	return out
}

func meanOf(values []float64) float64 { return analytics.Group{Values: values}.Mean() }
func sumOf(values []float64) float64  { return analytics.Group{Values: values}.Sum() }

// erosionTemporal summarises intensity per erosion type over time, with the
// yearly observation count and volatility on a secondary axis. Statistics
// are first taken per year, erosion type and continent.
func erosionTemporal(pc *pageContext) domain.Chart {
	groups := analytics.GroupBy(pc.rows,
		analytics.By(domain.FieldYear), analytics.By(domain.FieldCategory), analytics.ByContinent())

	byType := make(map[string]yearly)
	var types []string
	counts, volatility := yearly{}, yearly{}

	for _, g := range groups {
		year, category := g.Key(0), g.Key(1)
		if _, ok := byType[category]; !ok {
			byType[category] = yearly{}
			types = append(types, category)
		}
		byType[category].add(year, g.Mean())
		counts.add(year, g.Count())
		volatility.add(year, g.Std())
	}
	sort.Strings(types)

	var series []domain.Series
	for _, t := range types {
		series = append(series, domain.Series{Name: t, Kind: kindLine, Data: byType[t].points(meanOf)})
	}
	if len(series) > 0 {
		series = append(series,
			domain.Series{Name: "Observations", Kind: kindBar, Axis: axisSecondary, Data: counts.points(sumOf)},
			domain.Series{Name: "Risk Volatility", Kind: kindLine, Axis: axisSecondary, Data: volatility.points(meanOf)},
		)
	}

	return domain.Chart{
		Title:  "Erosion Risk Evolution: Temporal Trends and Patterns",
		XLabel: "Year",
		YLabel: "Average Intensity",
		Series: series,
	}
}

// erosionGeographic is the country by erosion type intensity matrix, with
// the average intensity per continent alongside.
func erosionGeographic(pc *pageContext) domain.Chart {
	country, category := analytics.By(domain.FieldCountry), analytics.By(domain.FieldCategory)
	h := fillHeatmap(analytics.Pivot(pc.rows, country, category, analytics.AggMean), 0)

	perContinent := make(map[string][]float64)
	for _, g := range analytics.GroupBy(pc.rows, country, category) {
		c := analytics.Continent(g.Key(0))
		perContinent[c] = append(perContinent[c], g.Mean())
	}
	continents := make([]analytics.Ranked, 0, len(perContinent))
	for c, means := range perContinent {
		continents = append(continents, analytics.Ranked{Key: c, Value: meanOf(means)})
	}
	sort.Slice(continents, func(i, j int) bool { return continents[i].Key < continents[j].Key })

	chart := domain.Chart{
		Title:   "Geographic Erosion Risk Distribution: Comprehensive Analysis",
		XLabel:  "Erosion Type",
		YLabel:  "Country",
		Heatmap: &h,
	}
	if len(continents) > 0 {
		chart.Series = []domain.Series{rankedSeries("Average Intensity by Continent", kindBar, analytics.SortDesc(continents))}
	}
	return chart
}

// erosionRiskComparison counts observations per erosion type and risk
// level, and adds the yearly mean risk with its 95% confidence band.
func erosionRiskComparison(pc *pageContext) domain.Chart {
	rated := analytics.Where(pc.rows, analytics.Not(analytics.Eq(domain.FieldErosionLevel, "")))
	category, level := analytics.By(domain.FieldCategory), analytics.By(domain.FieldErosionLevel)
	h := fillHeatmap(analytics.Pivot(rated, category, level, analytics.AggCount), 0)

	var series []domain.Series
	for j, lvl := range h.Columns {
		s := domain.Series{Name: lvl, Kind: kindBar}
		for i, cat := range h.Rows {
			s.Data = append(s.Data, domain.Point{X: cat, Y: *h.Values[i][j]})
		}
		series = append(series, s)
	}

	years := analytics.GroupBy(pc.rows, analytics.By(domain.FieldYear))
	if len(years) > 0 {
		meanLine := domain.Series{Name: "Mean Risk", Kind: kindLine, Axis: axisSecondary}
		upper := domain.Series{Name: "95% CI Upper", Kind: kindLine, Axis: axisSecondary}
		lower := domain.Series{Name: "95% CI Lower", Kind: kindLine, Axis: axisSecondary}
		for _, g := range years {
			x := axisValue(g.Key(0))
			m := g.Mean()
			margin := 1.96 * g.Std() / math.Sqrt(g.Count())
			meanLine.Data = append(meanLine.Data, domain.Point{X: x, Y: m})
			upper.Data = append(upper.Data, domain.Point{X: x, Y: m + margin})
			lower.Data = append(lower.Data, domain.Point{X: x, Y: m - margin})
		}
		series = append(series, meanLine, upper, lower)
	}

	return domain.Chart{
		Title:  "Erosion Risk Analysis: Distribution Patterns and Comparisons",
		XLabel: "Erosion Type",
		YLabel: "Count",
		Series: series,
	}
}
