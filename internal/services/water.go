package services

import (
	"fmt"
	"math"
	"strings"

	"agridash/internal/analytics"
	"agridash/pkg/contracts/domain"
)

const (
	measureNitrate           = "Share of monitoring sites in agricultural areas that exceed recommended drinking water limits for nitrate"
	measurePhosphorus        = "Share of monitoring sites in agricultural areas that exceed recommended drinking water limits for phosphorus"
	measurePesticides        = "Share of monitoring sites in agricultural areas that exceed recommended drinking water limits for pesticides"
	measurePesticidePresence = "Share of monitoring sites in agricultural areas where one or more pesticides are present"
	measureAgriAbstraction   = "Agriculture freshwater abstraction"
	measureTotalAbstraction  = "Total freshwater abstraction"

	exceedsLimits    = "exceed recommended drinking water limits"
	pesticidePresent = "pesticides are present"

	// highContamination is the share of failing monitoring sites above which
	// a country counts as high risk.
	highContamination = 30.0

	notApplicable = "Not applicable"
)

var waterMeasures = []string{
	measureNitrate, measurePhosphorus, measurePesticides,
	measurePesticidePresence, measureAgriAbstraction, measureTotalAbstraction,
}

// contaminationMeasures maps a contamination type selection onto its measure.
var contaminationMeasures = map[string]string{
	"Nitrate":            measureNitrate,
	"Phosphorus":         measurePhosphorus,
	"Pesticides":         measurePesticides,
	"Pesticide_Presence": measurePesticidePresence,
}

func waterPage() *pageDef {
	return &pageDef{
		info: domain.PageInfo{
			ID:    domain.PageWater,
			Title: "Water",
			Dimensions: []domain.Dimension{
				domain.DimCountries, domain.DimYearRange, domain.DimWaterTypes, domain.DimContaminationTypes,
			},
		},
		base: waterBase,
		kpis: []kpiDef{
			{id: "high_contamination_countries", title: "High Contamination Countries", fallback: "0", compute: highContaminationCountries},
			{id: "avg_contamination_rate", title: "Average Contamination Rate", fallback: "0%", compute: averageContamination},
			{id: "total_water_abstraction", title: "Agricultural Water Abstraction", fallback: "0", compute: totalAbstraction},
			{id: "worst_contamination_type", title: "Worst Contamination Type", fallback: "N/A", compute: worstContamination},
		},
		charts: []chartDef{
			{id: "contamination_geographic", kind: domain.ChartHBar, compute: contaminationGeographic},
			{id: "quality_trends", kind: domain.ChartCombo, compute: qualityTrends},
			{id: "quality_vs_usage", kind: domain.ChartGroupedBar, compute: qualityVsUsage},
		},
	}
}

// waterBase keeps the water measures matching the selection. A contamination
// type selection narrows the contamination measures but always keeps the
// abstraction measures.
func waterBase(source []domain.Observation, sel domain.Selection) []domain.Observation {
	contamination := sel.ContaminationTypes
	sel.ContaminationTypes = nil

	rows := analytics.Apply(analytics.Where(source, analytics.In(domain.FieldCategory, waterMeasures...)), sel)
	if !domain.Restricts(contamination) {
		return rows
	}

	var measures []string
	for _, t := range contamination {
		if m, ok := contaminationMeasures[t]; ok {
			measures = append(measures, m)
		}
	}
	if len(measures) == 0 {
		return rows
	}

	out := analytics.Where(rows, analytics.In(domain.FieldCategory, measures...))
	return append(out, analytics.Where(rows, analytics.Contains(domain.FieldCategory, "abstraction"))...)
}

func exceedRows(rows []domain.Observation) []domain.Observation {
	return analytics.Where(rows, analytics.Contains(domain.FieldCategory, exceedsLimits))
}

func contaminationRows(rows []domain.Observation) []domain.Observation {
	return analytics.Where(rows, analytics.Contains(domain.FieldCategory, exceedsLimits, pesticidePresent))
}

// simplifyMeasure names the pollutant of a contamination measure.
func simplifyMeasure(measure string) string {
	m := strings.ToLower(measure)
	switch {
	case strings.Contains(m, "nitrate"):
		return "Nitrate"
	case strings.Contains(m, "phosphorus"):
		return "Phosphorus"
	case strings.Contains(m, "pesticide"):
		return "Pesticides"
	default:
		return "Unknown"
	}
}

// measureSuffix shortens a measure to what follows its last "for ".
func measureSuffix(measure string) string {
	if i := strings.LastIndex(measure, "for "); i >= 0 {
		measure = measure[i+len("for "):]
	}
	return strings.NewReplacer("nitrate", "Nitrate", "phosphorus", "Phosphorus", "pesticides", "Pesticides").Replace(measure)
}

func yearPeriod(rows []domain.Observation) string {
	years := analytics.Distinct(rows, analytics.By(domain.FieldYear))
	if len(years) == 1 {
		return years[0]
	}
	return years[0] + "-" + years[len(years)-1]
}

func highContaminationCountries(pc *pageContext) domain.KPI {
	rows := exceedRows(pc.rows)
	if len(rows) == 0 {
		k := placeholderKPI("0")
		k.Detail = "No contamination data available for selected filters"
		return k
	}

	byCountry := analytics.SortDesc(analytics.Aggregate(rows, analytics.By(domain.FieldCountry), analytics.AggMean))
	var high []analytics.Ranked
	for _, r := range byCountry {
		if r.Value > highContamination {
			high = append(high, r)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "High-Risk Countries (>30%% contamination): %d out of %d\n", len(high), len(byCountry))
	b.WriteString("Countries with Highest Risk:\n")
	for _, r := range analytics.TopN(high, 8) {
		fmt.Fprintf(&b, "• %s: %.1f%% contamination\n", r.Key, r.Value)
	}
	b.WriteString("Monitoring Coverage by Type:\n")
	for _, g := range analytics.GroupBy(rows, analytics.By(domain.FieldCategory)) {
		countries := analytics.NUnique(categoryRows(rows, g.Key(0)), analytics.By(domain.FieldCountry))
		fmt.Fprintf(&b, "• %s: %d countries monitored\n", measureSuffix(g.Key(0)), countries)
	}
	fmt.Fprintf(&b, "Data Period: %s\n", yearPeriod(rows))
	b.WriteString("Threshold: >30% of monitoring sites exceed drinking water limits")

	k := valueKPI(fmt.Sprintf("%d", len(high)))
	k.Detail = b.String()
	return k
}

func averageContamination(pc *pageContext) domain.KPI {
	rows := exceedRows(pc.rows)
	avg, ok := analytics.Mean(rows)
	if !ok {
		k := placeholderKPI("0%")
		k.Detail = "No contamination data available"
		return k
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Average Contamination Rate: %.1f%%\n", avg)
	b.WriteString("By Contamination Type:\n")
	for _, g := range analytics.GroupBy(rows, analytics.By(domain.FieldCategory)) {
		fmt.Fprintf(&b, "• %s: %.1f%% (%d sites)\n", measureSuffix(g.Key(0)), g.Mean(), len(g.Values))
	}
	b.WriteString("By Water Source:\n")
	for _, g := range analytics.GroupBy(analytics.Where(rows, analytics.Not(analytics.Eq(domain.FieldWaterType, ""))), analytics.By(domain.FieldWaterType)) {
		if g.Key(0) == notApplicable {
			continue
		}
		fmt.Fprintf(&b, "• %s: %.1f%% (%d sites)\n", g.Key(0), g.Mean(), len(g.Values))
	}
	fmt.Fprintf(&b, "Total Monitoring Sites: %d\n", len(rows))
	fmt.Fprintf(&b, "Countries Monitored: %d", analytics.NUnique(rows, analytics.By(domain.FieldCountry)))

	k := valueKPI(formatPercent(avg, 1))
	k.Detail = b.String()
	return k
}

func totalAbstraction(pc *pageContext) domain.KPI {
	rows := categoryRows(pc.rows, measureAgriAbstraction)
	if len(rows) == 0 {
		k := placeholderKPI("0")
		k.Detail = "No water abstraction data available"
		return k
	}

	latest := rows[0].Year
	for _, r := range rows {
		if r.Year > latest {
			latest = r.Year
		}
	}
	latestRows := analytics.Where(rows, analytics.Eq(domain.FieldYear, fmt.Sprint(latest)))
	sum := analytics.Sum(latestRows)

	trend := "Trend: Single year data"
	if yearly := analytics.Aggregate(rows, analytics.By(domain.FieldYear), analytics.AggSum); len(yearly) >= 2 {
		prev, last := yearly[len(yearly)-2].Value, yearly[len(yearly)-1].Value
		if prev != 0 {
			trend = fmt.Sprintf("Trend: %+.1f%% from previous year", (last-prev)/prev*100)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total Agricultural Water Abstraction (%d): %s cubic metres\n", latest, formatCount(sum))
	b.WriteString("By Water Source:\n")
	byType := analytics.Aggregate(analytics.Where(latestRows, analytics.Not(analytics.Eq(domain.FieldWaterType, ""))),
		analytics.By(domain.FieldWaterType), analytics.AggSum)
	for _, r := range analytics.SortDesc(byType) {
		if r.Key == notApplicable {
			continue
		}
		fmt.Fprintf(&b, "• %s: %s cubic metres\n", r.Key, formatCount(r.Value))
	}
	b.WriteString("Top 5 Countries:\n")
	for _, r := range analytics.TopN(analytics.Aggregate(latestRows, analytics.By(domain.FieldCountry), analytics.AggSum), 5) {
		fmt.Fprintf(&b, "• %s: %s cubic metres\n", r.Key, formatCount(r.Value))
	}
	b.WriteString(trend + "\n")
	fmt.Fprintf(&b, "Countries Reporting: %d", analytics.NUnique(latestRows, analytics.By(domain.FieldCountry)))

	k := valueKPI(formatCompact(sum))
	k.Detail = b.String()
	return k
}

func worstContamination(pc *pageContext) domain.KPI {
	rows := exceedRows(pc.rows)
	byType := analytics.Aggregate(rows, analytics.By(domain.FieldCategory), analytics.AggMean)
	worst, ok := analytics.ArgMax(byType)
	if !ok {
		k := placeholderKPI("N/A")
		k.Detail = "No contamination data available"
		return k
	}
	name := simplifyMeasure(worst.Key)
	worstRows := categoryRows(rows, worst.Key)

	var b strings.Builder
	fmt.Fprintf(&b, "Worst Pollutant: %s (%.1f%% average contamination)\n", name, worst.Value)
	b.WriteString("Contamination Ranking:\n")
	for i, r := range analytics.SortDesc(byType) {
		sites := len(categoryRows(rows, r.Key))
		fmt.Fprintf(&b, "%d. %s: %.1f%% avg (%d sites)\n", i+1, simplifyMeasure(r.Key), r.Value, sites)
	}
	fmt.Fprintf(&b, "Most Affected Countries (%s):\n", name)
	for _, r := range analytics.TopN(analytics.Aggregate(worstRows, analytics.By(domain.FieldCountry), analytics.AggMean), 3) {
		fmt.Fprintf(&b, "• %s: %.1f%%\n", r.Key, r.Value)
	}
	fmt.Fprintf(&b, "Max Rate Recorded: %.1f%%\n", analytics.Group{Values: analytics.Values(worstRows)}.Max())
	fmt.Fprintf(&b, "Countries Monitored: %d", analytics.NUnique(worstRows, analytics.By(domain.FieldCountry)))

	k := valueKPI(name)
	k.Detail = b.String()
	return k
}

func contaminationGeographic(pc *pageContext) domain.Chart {
	byCountry := analytics.Aggregate(contaminationRows(pc.rows), analytics.By(domain.FieldCountry), analytics.AggMean)
	return domain.Chart{
		Title:  "Geographic Water Contamination Analysis",
		XLabel: "Average Contamination Rate (%)",
		YLabel: "Countries",
		Series: []domain.Series{rankedSeries("Contamination Rate (%)", kindBar, analytics.TopN(byCountry, 20))},
	}
}

func qualityTrends(pc *pageContext) domain.Chart {
	var series []domain.Series
	for _, m := range []string{measureNitrate, measurePhosphorus, measurePesticides} {
		yearly := analytics.Aggregate(categoryRows(pc.rows, m), analytics.By(domain.FieldYear), analytics.AggMean)
		if len(yearly) > 0 {
			series = append(series, rankedSeries(simplifyMeasure(m), kindLine, yearly))
		}
	}
	abstraction := analytics.Aggregate(categoryRows(pc.rows, measureAgriAbstraction), analytics.By(domain.FieldYear), analytics.AggSum)
	if len(abstraction) > 0 {
		s := rankedSeries("Water Abstraction", kindBar, abstraction)
		s.Axis = axisSecondary
		series = append(series, s)
	}

	return domain.Chart{
		Title:  "Water Quality Degradation Trends vs Agricultural Water Consumption",
		XLabel: "Year",
		YLabel: "Contamination Rate (%)",
		Series: series,
	}
}

// qualityVsUsage compares the ten most contaminated countries' rate with
// their water usage scaled to 0-100, next to the surface/ground water split.
func qualityVsUsage(pc *pageContext) domain.Chart {
	chart := domain.Chart{
		Title:  "Water Quality vs Usage Efficiency Analysis",
		XLabel: "Countries",
		YLabel: "Rate / Normalized Usage",
	}
	if len(pc.rows) == 0 {
		return chart
	}

	country := analytics.By(domain.FieldCountry)
	abstractionRows := categoryRows(pc.rows, measureAgriAbstraction)
	contamination := analytics.Aggregate(contaminationRows(pc.rows), country, analytics.AggMean)
	usage := make(map[string]float64)
	for _, r := range analytics.Aggregate(abstractionRows, country, analytics.AggMean) {
		usage[r.Key] = r.Value
	}

	var joined []analytics.Ranked
	for _, r := range contamination {
		if _, ok := usage[r.Key]; ok {
			joined = append(joined, r)
		}
	}
	top := analytics.TopN(joined, 10)

	if len(top) > 0 {
		maxUsage := 0.0
		for _, r := range top {
			maxUsage = math.Max(maxUsage, usage[r.Key])
		}
		rate := domain.Series{Name: "Contamination Rate (%)", Kind: kindBar}
		scaled := domain.Series{Name: "Water Usage (Normalized)", Kind: kindBar}
		for _, r := range top {
			u := usage[r.Key]
			var norm float64
			if maxUsage != 0 {
				norm = u / maxUsage * 100
			}
			rate.Data = append(rate.Data, domain.Point{X: r.Key, Y: r.Value})
			scaled.Data = append(scaled.Data, domain.Point{X: r.Key, Y: norm, Label: formatCount(u) + " cubic metres"})
		}
		chart.Series = append(chart.Series, rate, scaled)
	} else {
		chart.Annotation = "Insufficient data for analysis"
	}

	sources := analytics.Aggregate(
		analytics.Where(abstractionRows, analytics.In(domain.FieldWaterType, "Surface water", "Ground water")),
		analytics.By(domain.FieldWaterType), analytics.AggSum)
	if len(sources) > 0 {
		chart.Series = append(chart.Series, rankedSeries("Water Source Distribution", kindPie, sources))
	}
	return chart
}
