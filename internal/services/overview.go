package services

import (
	"agridash/internal/analytics"
	"agridash/internal/config"
	"agridash/pkg/contracts/domain"
)

func overviewPage() *pageDef {
	return &pageDef{
		info: domain.PageInfo{
			ID:         domain.PageOverview,
			Title:      "Overview",
			Dimensions: []domain.Dimension{domain.DimCategories, domain.DimYearRange, domain.DimCountries},
		},
		base: applyBase,
		kpis: []kpiDef{
			{id: "total_indicators", title: "Total Indicators", fallback: "0", compute: totalIndicators},
			{id: "total_countries", title: "Total Countries", fallback: "0", compute: totalCountries},
			{id: "avg_balance", title: "Average Nutrient Balance", fallback: "N/A", compute: averageBalance},
			{id: "percent_normal", title: "Normal Observations", fallback: "0.00%", compute: percentNormal},
		},
		charts: []chartDef{
			{id: "balance_trend", kind: domain.ChartLine, compute: balanceTrend},
			{id: "top_countries", kind: domain.ChartHBar, compute: topCountries},
			{id: "balance_heatmap", kind: domain.ChartHeatmap, compute: balanceHeatmap},
		},
	}
}

func totalIndicators(pc *pageContext) domain.KPI {
	k := valueKPI(formatCount(analytics.Sum(pc.rows)))
	k.Placeholder = len(pc.rows) == 0
	return k
}

func totalCountries(pc *pageContext) domain.KPI {
	n := analytics.NUnique(pc.rows, analytics.By(domain.FieldCountry))
	k := valueKPI(formatCount(float64(n)))
	k.Placeholder = n == 0
	return k
}

func balanceRows(rows []domain.Observation) []domain.Observation {
	return analytics.Where(rows, analytics.Eq(domain.FieldCategory, config.BalanceCategory))
}

func averageBalance(pc *pageContext) domain.KPI {
	mean, ok := analytics.Mean(balanceRows(pc.rows))
	if !ok {
		return placeholderKPI("N/A")
	}
	return valueKPI(formatDecimal(mean, 2))
}

func percentNormal(pc *pageContext) domain.KPI {
	if len(pc.rows) == 0 {
		return placeholderKPI("0.00%")
	}
	normal := analytics.Where(pc.rows, analytics.Eq(domain.FieldStatus, config.NormalStatus))
	return valueKPI(formatPercent(float64(len(normal))/float64(len(pc.rows))*100, 2))
}

func balanceTrend(pc *pageContext) domain.Chart {
	return domain.Chart{
		Title:  "Average Balance Over Time by Nutrient " + pc.yearSpan(),
		XLabel: "Year",
		YLabel: "Average Balance",
		Series: splitSeries(balanceRows(pc.rows),
			analytics.By(domain.FieldYear), analytics.By(domain.FieldNutrients), analytics.AggMean, kindLine),
	}
}

func topCountries(pc *pageContext) domain.Chart {
	totals := analytics.Aggregate(pc.rows, analytics.By(domain.FieldCountry), analytics.AggSum)
	series := rankedSeries("Total", kindBar, analytics.TopN(totals, 10))
	for i := range series.Data {
		series.Data[i].Label = formatCount(series.Data[i].Y)
	}
	return domain.Chart{
		Title:  "Top 10 Countries by Total Observations " + pc.yearSpan(),
		XLabel: "Total Observations (Sum of obs_value)",
		YLabel: "Country",
		Series: []domain.Series{series},
	}
}

func balanceHeatmap(pc *pageContext) domain.Chart {
	h := analytics.Pivot(balanceRows(pc.rows),
		analytics.By(domain.FieldCountry), analytics.By(domain.FieldYear), analytics.AggSum)
	return domain.Chart{
		Title:   "Heatmap: Balance by Country & Year " + pc.yearSpan(),
		XLabel:  "Year",
		YLabel:  "Country",
		Heatmap: &h,
	}
}
