package services

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agridash/internal/config"
	"agridash/pkg/contracts/domain"
)

func TestPages(t *testing.T) {
	svc := newTestDashboard(nil)

	pages := svc.Pages()
	require.Len(t, pages, 5)
	for i, id := range domain.Pages {
		assert.Equal(t, id, pages[i].ID)
		assert.NotEmpty(t, pages[i].KPIs)
		assert.NotEmpty(t, pages[i].Charts)
	}

	info, err := svc.Page(domain.PageOverview)
	require.NoError(t, err)
	assert.Equal(t, []string{"total_indicators", "total_countries", "avg_balance", "percent_normal"}, info.KPIs)

	_, err = svc.Page("forestry")
	assert.ErrorIs(t, err, ErrUnknownPage)
}

func TestUnknownItems(t *testing.T) {
	svc := newTestDashboard(nil)
	ctx := context.Background()

	_, err := svc.Compute(ctx, "forestry", domain.Selection{})
	assert.ErrorIs(t, err, ErrUnknownPage)

	_, err = svc.KPI(ctx, domain.PageOverview, "bogus", domain.Selection{})
	assert.ErrorIs(t, err, ErrUnknownKPI)

	_, err = svc.Chart(ctx, domain.PageWater, "bogus", domain.Selection{})
	assert.ErrorIs(t, err, ErrUnknownChart)
}

func TestEmptySelectionYieldsPlaceholders(t *testing.T) {
	svc := newTestDashboard([]domain.Observation{
		obs("France", 2000, config.BalanceCategory, 10),
		obs("Germany", 2001, "Water erosion", 20),
	})
	nowhere := domain.Selection{Countries: []string{"Atlantis"}}

	want := map[domain.PageID]map[string]string{
		domain.PageOverview: {
			"total_indicators": "0", "total_countries": "0", "avg_balance": "N/A", "percent_normal": "0.00%",
		},
		domain.PageNutrients: {
			"avg_nitrogen_balance": "N/A", "avg_phosphorus_balance": "N/A",
		},
		domain.PageManure: {
			"total_manure": "0", "avg_net_input": "N/A", "manure_share": "0.0%", "top_country": "N/A",
		},
		domain.PageErosion: {
			"total_observations": "0", "critical_risk_areas": "0", "avg_erosion_intensity": "0.0", "countries_affected": "0",
		},
		domain.PageWater: {
			"high_contamination_countries": "0", "avg_contamination_rate": "0%",
			"total_water_abstraction": "0", "worst_contamination_type": "N/A",
		},
	}

	for page, kpis := range want {
		t.Run(string(page), func(t *testing.T) {
			res, err := svc.Compute(context.Background(), page, nowhere)
			require.NoError(t, err)
			assert.Zero(t, res.RowCount)
			assert.Equal(t, kpis, kpiValues(res))

			for _, k := range res.KPIs {
				assert.True(t, k.Placeholder, k.ID)
			}
			for _, c := range res.Charts {
				assert.True(t, c.Empty, c.ID)
				assert.NotEmpty(t, c.ID)
				assert.Equal(t, config.NoDataAnnotation, c.Annotation)
			}
		})
	}
}

func TestFailingItemIsIsolated(t *testing.T) {
	svc := newTestDashboard([]domain.Observation{
		obs("France", 2000, config.BalanceCategory, 10),
	})
	p := svc.pages[domain.PageOverview]
	p.kpis = append(p.kpis, kpiDef{
		id: "broken", title: "Broken", fallback: "N/A",
		compute: func(*pageContext) domain.KPI { panic("boom") },
	})
	p.charts = append(p.charts, chartDef{
		id: "broken_chart", kind: domain.ChartBar,
		compute: func(pc *pageContext) domain.Chart {
			var m map[string]int
			m["x"] = pc.yearStart
			return domain.Chart{}
		},
	})

	res, err := svc.Compute(context.Background(), domain.PageOverview, domain.Selection{})
	require.NoError(t, err)

	values := kpiValues(res)
	assert.Equal(t, "10", values["total_indicators"])
	assert.Equal(t, "1", values["total_countries"])
	assert.Equal(t, "N/A", values["broken"])

	last := res.Charts[len(res.Charts)-1]
	assert.Equal(t, "broken_chart", last.ID)
	assert.True(t, last.Empty)
	assert.False(t, res.Charts[0].Empty)
}

func TestComputeCanceled(t *testing.T) {
	svc := newTestDashboard([]domain.Observation{obs("France", 2000, config.BalanceCategory, 10)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Compute(ctx, domain.PageOverview, domain.Selection{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOverviewPage(t *testing.T) {
	normal := obs("France", 2000, config.BalanceCategory, 30)
	normal.Nutrients = "Nitrogen"
	later := obs("France", 2001, config.BalanceCategory, 60)
	later.Nutrients = "Nitrogen"
	estimated := obs("Germany", 2000, config.BalanceCategory, 10)
	estimated.Nutrients = "Phosphorus"
	estimated.ObservationStatus = "Estimated value"

	svc := newTestDashboard([]domain.Observation{
		normal, later, estimated,
		obs("France", 2000, config.LandAreaCategory, 999),
	})

	res, err := svc.Compute(context.Background(), domain.PageOverview, domain.Selection{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"total_indicators": "1,099",
		"total_countries":  "2",
		"avg_balance":      "33.33",
		"percent_normal":   "75.00%",
	}, kpiValues(res))

	trend := res.Charts[0]
	assert.Equal(t, "Average Balance Over Time by Nutrient (2000–2001)", trend.Title)
	require.Len(t, trend.Series, 2)
	assert.Equal(t, "Nitrogen", trend.Series[0].Name)
	assert.Equal(t, []domain.Point{{X: 2000, Y: 30}, {X: 2001, Y: 60}}, trend.Series[0].Data)

	// The selection's year range drives the title span.
	res, err = svc.Compute(context.Background(), domain.PageOverview, domain.Selection{
		YearRange: &domain.YearRange{Start: 2001, End: 2001},
	})
	require.NoError(t, err)
	assert.Equal(t, "60", kpiValues(res)["total_indicators"])
	assert.True(t, strings.HasSuffix(res.Charts[1].Title, "(2001–2001)"))

	// Open bounds show the dataset's years, not the placeholders.
	tests := []struct {
		name string
		r    domain.YearRange
		want string
	}{
		{name: "open end", r: domain.YearRange{Start: 2001, End: 9999}, want: "(2001–2001)"},
		{name: "open start", r: domain.YearRange{Start: 0, End: 2000}, want: "(2000–2000)"},
		{name: "both open", r: domain.YearRange{Start: 0, End: 9999}, want: "(2000–2001)"},
		{name: "outside the data", r: domain.YearRange{Start: 2010, End: 9999}, want: "(2010–9999)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.r
			res, err := svc.Compute(context.Background(), domain.PageOverview, domain.Selection{YearRange: &r})
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(res.Charts[0].Title, tt.want), res.Charts[0].Title)
		})
	}
}

func TestNutrientsPageNormalizes(t *testing.T) {
	n1 := obs("France", 2000, config.BalanceCategory, 30)
	n1.Nutrients = "Nitrogen"
	n2 := obs("France", 2001, config.BalanceCategory, 60)
	n2.Nutrients = "Nitrogen"
	p := obs("Germany", 2000, config.BalanceCategory, 10)
	p.Nutrients = "Phosphorus"

	svc := newTestDashboard([]domain.Observation{
		n1, n2, p,
		obs("France", 1990, config.LandAreaCategory, 999),
	})

	res, err := svc.Compute(context.Background(), domain.PageNutrients, domain.Selection{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"avg_nitrogen_balance":   "15.00",
		"avg_phosphorus_balance": "10.00",
	}, kpiValues(res))

	// The land area row is outside the selected years but still scales.
	res, err = svc.Compute(context.Background(), domain.PageNutrients, domain.Selection{
		YearRange: &domain.YearRange{Start: 2001, End: 2001},
	})
	require.NoError(t, err)
	assert.Equal(t, "20.00", kpiValues(res)["avg_nitrogen_balance"])
}

func TestNutrientsPageZeroLandArea(t *testing.T) {
	france := obs("France", 2000, config.BalanceCategory, 30)
	france.Nutrients = "Nitrogen"
	malta := obs("Malta", 2000, config.BalanceCategory, 30)
	malta.Nutrients = "Nitrogen"
	maltaIn := obs("Malta", 2000, config.InputsCategory, 0)
	maltaIn.Nutrients = "Nitrogen"

	svc := newTestDashboard([]domain.Observation{
		france, malta, maltaIn,
		obs("France", 2000, config.LandAreaCategory, 999),
		obs("Malta", 2000, config.LandAreaCategory, 0),
	})

	res, err := svc.Compute(context.Background(), domain.PageNutrients, domain.Selection{})
	require.NoError(t, err)
	assert.Equal(t, "10.00", kpiValues(res)["avg_nitrogen_balance"], "a zero land area cannot be normalized")

	for _, c := range res.Charts {
		for _, series := range c.Series {
			for _, p := range series.Data {
				assert.NotEqual(t, "Malta", p.X, c.ID)
				assert.NotEqual(t, "Malta", p.Label, c.ID)
			}
		}
	}

	_, err = json.Marshal(res)
	assert.NoError(t, err)
}

func TestNonFiniteChartDegrades(t *testing.T) {
	svc := newTestDashboard([]domain.Observation{
		obs("France", 2000, config.BalanceCategory, 10),
	})
	p := svc.pages[domain.PageOverview]
	p.charts = append(p.charts, chartDef{
		id: "infinite", kind: domain.ChartBar,
		compute: func(*pageContext) domain.Chart {
			return domain.Chart{
				Title:  "Infinite",
				Series: []domain.Series{{Name: "x", Data: []domain.Point{{X: "France", Y: math.Inf(1)}}}},
			}
		},
	})

	res, err := svc.Compute(context.Background(), domain.PageOverview, domain.Selection{})
	require.NoError(t, err)

	last := res.Charts[len(res.Charts)-1]
	assert.Equal(t, "infinite", last.ID)
	assert.True(t, last.Empty)
	assert.Equal(t, config.NoDataAnnotation, last.Annotation)
	assert.False(t, res.Charts[0].Empty)

	_, err = json.Marshal(res)
	assert.NoError(t, err)
}

func TestManurePage(t *testing.T) {
	svc := newTestDashboard([]domain.Observation{
		obs("France", 2000, livestockManureCategory, 1500),
		obs("Germany", 2000, netManureCategory, 1234.25),
		obs("France", 2000, netManureCategory, 101.75),
		obs("France", 2000, "Nutrient inputs", 1000),
	})

	res, err := svc.Compute(context.Background(), domain.PageManure, domain.Selection{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"total_manure":  "1,500",
		"avg_net_input": "668.00",
		"manure_share":  "73.9%",
		"top_country":   "Germany: 1,234",
	}, kpiValues(res))

	pie := res.Charts[2]
	require.Len(t, pie.Series, 1)
	assert.Equal(t, []domain.Point{{X: "Europe", Y: 2836}}, pie.Series[0].Data)

	funnel := res.Charts[3]
	assert.Equal(t, "Livestock manure production", funnel.Series[0].Data[0].X)
}

func TestErosionPage(t *testing.T) {
	high := obs("Germany", 2006, "Water erosion", 40)
	high.ErosionRiskLevel = "High"
	low := obs("France", 2006, "Wind erosion", 20)
	low.ErosionRiskLevel = "Low"

	svc := newTestDashboard([]domain.Observation{
		high, low,
		obs("France", 2006, config.BalanceCategory, 1000),
	})

	res, err := svc.Compute(context.Background(), domain.PageErosion, domain.Selection{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowCount)
	assert.Equal(t, map[string]string{
		"total_observations":    "2",
		"critical_risk_areas":   "1",
		"avg_erosion_intensity": "30.0",
		"countries_affected":    "2",
	}, kpiValues(res))

	for _, c := range res.Charts {
		assert.False(t, c.Empty, c.ID)
	}
}

func waterFixture() []domain.Observation {
	nitrateFR := obs("France", 2010, measureNitrate, 70)
	nitrateFR.WaterType = "Groundwater"
	surface1 := obs("France", 2010, measureAgriAbstraction, 2_500_000)
	surface1.WaterType = "Surface water"
	surface2 := obs("France", 2011, measureAgriAbstraction, 3_000_000)
	surface2.WaterType = "Surface water"

	return []domain.Observation{
		nitrateFR,
		obs("Germany", 2010, measureNitrate, 20),
		obs("France", 2010, measurePesticides, 10),
		surface1,
		surface2,
		obs("France", 2010, config.BalanceCategory, 5),
	}
}

func TestWaterPage(t *testing.T) {
	svc := newTestDashboard(waterFixture())

	res, err := svc.Compute(context.Background(), domain.PageWater, domain.Selection{})
	require.NoError(t, err)
	assert.Equal(t, 5, res.RowCount)
	assert.Equal(t, map[string]string{
		"high_contamination_countries": "1",
		"avg_contamination_rate":       "33.3%",
		"total_water_abstraction":      "3.0M",
		"worst_contamination_type":     "Nitrate",
	}, kpiValues(res))

	assert.Contains(t, res.KPIs[0].Detail, "• France: 40.0% contamination")
	assert.Contains(t, res.KPIs[2].Detail, "Trend: +20.0% from previous year")

	usage := res.Charts[2]
	require.GreaterOrEqual(t, len(usage.Series), 2)
	assert.Equal(t, []domain.Point{{X: "France", Y: 40}}, usage.Series[0].Data)
	assert.Equal(t, 100.0, usage.Series[1].Data[0].Y)
}

func TestWaterContaminationTypeKeepsAbstraction(t *testing.T) {
	svc := newTestDashboard(waterFixture())

	res, err := svc.Compute(context.Background(), domain.PageWater, domain.Selection{
		ContaminationTypes: []string{"Pesticides"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.RowCount)

	values := kpiValues(res)
	assert.Equal(t, "10.0%", values["avg_contamination_rate"])
	assert.Equal(t, "Pesticides", values["worst_contamination_type"])
	assert.Equal(t, "3.0M", values["total_water_abstraction"])
}

func TestRestrictToDropsForeignDimensions(t *testing.T) {
	sel := domain.Selection{
		Countries:     []string{"France"},
		Nutrients:     []string{"Nitrogen"},
		ErosionLevels: []string{"High"},
	}

	got := restrictTo(sel, []domain.Dimension{domain.DimCountries, domain.DimErosionLevels})
	assert.Equal(t, domain.Selection{Countries: []string{"France"}, ErosionLevels: []string{"High"}}, got)
}
