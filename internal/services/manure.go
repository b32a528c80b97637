package services

import (
	"math"

	"agridash/internal/analytics"
	"agridash/pkg/contracts/domain"
)

const (
	livestockManureCategory = "Livestock manure production"
	netManureCategory       = "Net input of manure"
	manureWithdrawals       = "Manure withdrawals"
)

var manureCategories = []string{
	"Manure management",
	"Manure imports",
	manureWithdrawals,
	netManureCategory,
	livestockManureCategory,
	"Organic fertilisers (excluding livestock manure)",
}

func manurePage() *pageDef {
	return &pageDef{
		info: domain.PageInfo{
			ID:         domain.PageManure,
			Title:      "Manure",
			Dimensions: []domain.Dimension{domain.DimCountries, domain.DimYearRange, domain.DimNutrients},
		},
		base: applyBase,
		kpis: []kpiDef{
			{id: "total_manure", title: "Total Livestock Manure Production", fallback: "0", compute: totalManure},
			{id: "avg_net_input", title: "Average Net Input of Manure", fallback: "N/A", compute: averageNetInput},
			{id: "manure_share", title: "Manure Share of All Indicators", fallback: "0.0%", compute: manureShare},
			{id: "top_country", title: "Top Country by Net Input", fallback: "N/A", compute: topNetInputCountry},
		},
		charts: []chartDef{
			{id: "manure_map", kind: domain.ChartChoropleth, compute: manureMap},
			{id: "manure_ecdf", kind: domain.ChartECDF, compute: manureECDF},
			{id: "manure_by_continent", kind: domain.ChartPie, compute: manureByContinent},
			{id: "manure_funnel", kind: domain.ChartFunnel, compute: manureFunnel},
		},
	}
}

func categoryRows(rows []domain.Observation, category string) []domain.Observation {
	return analytics.Where(rows, analytics.Eq(domain.FieldCategory, category))
}

func totalManure(pc *pageContext) domain.KPI {
	rows := categoryRows(pc.rows, livestockManureCategory)
	k := valueKPI(formatCount(analytics.Sum(rows)))
	k.Placeholder = len(rows) == 0
	return k
}

func averageNetInput(pc *pageContext) domain.KPI {
	mean, ok := analytics.Mean(categoryRows(pc.rows, netManureCategory))
	if !ok {
		return placeholderKPI("N/A")
	}
	return valueKPI(formatDecimal(mean, 2))
}

func manureShare(pc *pageContext) domain.KPI {
	total := analytics.Sum(pc.rows)
	if total == 0 {
		return placeholderKPI(formatPercent(0, 1))
	}
	manure := analytics.Sum(analytics.Where(pc.rows, analytics.Contains(domain.FieldCategory, "manure", "livestock")))
	return valueKPI(formatPercent(manure/total*100, 1))
}

func topNetInputCountry(pc *pageContext) domain.KPI {
	totals := analytics.Aggregate(categoryRows(pc.rows, netManureCategory), analytics.By(domain.FieldCountry), analytics.AggSum)
	best, ok := analytics.ArgMax(totals)
	if !ok {
		return placeholderKPI("N/A")
	}
	return valueKPI(best.Key + ": " + formatCount(best.Value))
}

func manureRows(rows []domain.Observation) []domain.Observation {
	return analytics.Where(rows, analytics.In(domain.FieldCategory, manureCategories...))
}

func manureMap(pc *pageContext) domain.Chart {
	rows := analytics.RemoveAggregates(manureRows(pc.rows), true)
	totals := analytics.Aggregate(rows, analytics.By(domain.FieldCountry), analytics.AggSum)
	for i := range totals {
		totals[i].Value = math.Round(totals[i].Value)
	}
	return domain.Chart{
		Title:  "Manure-related Categories by Country",
		YLabel: "# of Indicators",
		Series: []domain.Series{rankedSeries("Manure-related indicators", "", totals)},
	}
}

func manureECDF(pc *pageContext) domain.Chart {
	var series []domain.Series
	for _, g := range analytics.GroupBy(manureRows(pc.rows), analytics.By(domain.FieldCategory)) {
		series = append(series, domain.Series{Name: g.Key(0), Kind: kindLine, Data: analytics.ECDF(g.Values)})
	}
	return domain.Chart{
		Title:  "Cumulative Distribution of Manure-Related Indicators",
		XLabel: "Value",
		YLabel: "Proportion",
		Series: series,
	}
}

func manureByContinent(pc *pageContext) domain.Chart {
	totals := analytics.Aggregate(manureRows(pc.rows), analytics.ByContinent(), analytics.AggSum)
	return domain.Chart{
		Title:  "Manure-Related Indicators by Continent",
		Series: []domain.Series{rankedSeries("Continents", kindPie, totals)},
	}
}

func manureFunnel(pc *pageContext) domain.Chart {
	rows := analytics.Where(manureRows(pc.rows), analytics.Not(analytics.Eq(domain.FieldCategory, manureWithdrawals)))
	totals := analytics.SortDesc(analytics.Aggregate(rows, analytics.By(domain.FieldCategory), analytics.AggSum))
	return domain.Chart{
		Title:  "Manure Category Volume Funnel",
		XLabel: "Production Volume",
		YLabel: "Category",
		Series: []domain.Series{rankedSeries("Volume", "", totals)},
	}
}
