package services

import (
	"agridash/internal/analytics"
	"agridash/internal/config"
	"agridash/pkg/contracts/domain"
)

func nutrientsPage() *pageDef {
	return &pageDef{
		info: domain.PageInfo{
			ID:    domain.PageNutrients,
			Title: "Nutrients",
			Dimensions: []domain.Dimension{
				domain.DimCountries, domain.DimYearRange, domain.DimNutrients,
				domain.DimCategories, domain.DimStatuses,
			},
		},
		base: applyBase,
		kpis: []kpiDef{
			{id: "avg_nitrogen_balance", title: "Avg Nitrogen Balance (Normalized)", fallback: "N/A", compute: normalizedBalance("Nitrogen")},
			{id: "avg_phosphorus_balance", title: "Avg Phosphorus Balance (Normalized)", fallback: "N/A", compute: normalizedBalance("Phosphorus")},
		},
		charts: []chartDef{
			{id: "inputs_outputs", kind: domain.ChartLine, compute: inputsOutputs},
			{id: "nitrogen_scatter", kind: domain.ChartScatter, compute: nitrogenScatter},
			{id: "avg_balance_by_country", kind: domain.ChartGroupedBar, compute: balanceByCountry},
		},
	}
}

// normalizedBalance averages the land-area normalized balance of one
// nutrient.
func normalizedBalance(nutrient string) func(*pageContext) domain.KPI {
	return func(pc *pageContext) domain.KPI {
		rows := analytics.Where(pc.rows,
			analytics.Eq(domain.FieldNutrients, nutrient),
			analytics.Eq(domain.FieldCategory, config.BalanceCategory))
		mean, ok := analytics.Mean(analytics.NormalizedValues(rows, pc.source))
		if !ok {
			return placeholderKPI("N/A")
		}
		return valueKPI(formatDecimal(mean, 2))
	}
}

func inputOutputRows(rows []domain.Observation) []domain.Observation {
	return analytics.Where(rows, analytics.In(domain.FieldCategory, config.InputsCategory, config.OutputsCategory))
}

func inputsOutputs(pc *pageContext) domain.Chart {
	rows := inputOutputRows(pc.rows)
	label := func(o domain.Observation) string {
		return o.Nutrients + " - " + o.MeasureCategory
	}
	return domain.Chart{
		Title:  "Inputs/Outputs Over Time " + pc.yearSpan(),
		XLabel: "Year",
		YLabel: "Observation Value",
		Series: splitSeries(rows, analytics.By(domain.FieldYear), label, analytics.AggSum, kindLine),
	}
}

func nitrogenScatter(pc *pageContext) domain.Chart {
	chart := domain.Chart{
		Title:  "Nitrogen Input vs Output by Country",
		XLabel: "Nitrogen Input",
		YLabel: "Nitrogen Output",
	}

	rows := analytics.Where(inputOutputRows(pc.rows), analytics.Eq(domain.FieldNutrients, "Nitrogen"))
	h := analytics.CompleteRows(analytics.Pivot(analytics.NormalizedValues(rows, pc.source),
		analytics.By(domain.FieldCountry), analytics.By(domain.FieldCategory), analytics.AggSum))

	in, out := -1, -1
	for i, c := range h.Columns {
		switch c {
		case config.InputsCategory:
			in = i
		case config.OutputsCategory:
			out = i
		}
	}
	if in < 0 || out < 0 {
		return chart
	}

	points := make([]domain.Point, len(h.Rows))
	for i, country := range h.Rows {
		points[i] = domain.Point{X: *h.Values[i][in], Y: *h.Values[i][out], Label: country}
	}
	chart.Series = []domain.Series{{Name: "Countries", Kind: kindPoint, Data: points}}
	return chart
}

func balanceByCountry(pc *pageContext) domain.Chart {
	rows := analytics.NormalizedValues(balanceRows(pc.rows), pc.source)
	return domain.Chart{
		Title:  "Average Balance per Nutrient by Country",
		XLabel: "Country",
		YLabel: "Average Balance (normalized)",
		Series: splitSeries(rows, analytics.By(domain.FieldCountry), analytics.By(domain.FieldNutrients), analytics.AggMean, kindBar),
	}
}
