package analytics

import (
	"math"

	"agridash/pkg/contracts/domain"
)

// LandAreaCategory marks the rows carrying a country's agricultural land
// area, in thousand hectares.
const LandAreaCategory = "Total agricultural land area"

// LandAreaTable maps a country to its land area from the latest year it
// reported one.
type LandAreaTable map[string]float64

// BuildLandAreaTable derives the land-area reference from the full dataset.
// When a country reports several rows for its latest year, the last one in
// dataset order wins.
func BuildLandAreaTable(source []domain.Observation) LandAreaTable {
	latest := make(map[string]int)
	table := make(LandAreaTable)

	for _, o := range source {
		if o.MeasureCategory != LandAreaCategory {
			continue
		}
		year, seen := latest[o.Country]
		if seen && o.Year < year {
			continue
		}
		latest[o.Country] = o.Year
		table[o.Country] = o.ObsValue
	}

	return table
}

// Scale divides value by log10(A+1) for a country with known land area A.
// Countries without a land area get value back unchanged, which is how
// callers detect that no normalization applied. Negative areas are not
// expected in this dataset and are not guarded.
func (t LandAreaTable) Scale(country string, value float64) float64 {
	area, ok := t[country]
	if !ok {
		return value
	}
	return value / math.Log10(area+1)
}

// Finite reports whether v is neither infinite nor NaN. A land area of 0
// scales by log10(1) = 0, so normalized values must be checked before use.
func Finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Normalize adds the land-area normalized value to every row. The land-area
// table is rebuilt from source on each call. Rows whose normalized value is
// not finite keep a nil Normalized.
func Normalize(rows, source []domain.Observation) []domain.NormalizedObservation {
	table := BuildLandAreaTable(source)

	out := make([]domain.NormalizedObservation, len(rows))
	for i, o := range rows {
		out[i] = domain.NormalizedObservation{Observation: o}
		if v := table.Scale(o.Country, o.ObsValue); Finite(v) {
			out[i].Normalized = &v
		}
	}
	return out
}

// NormalizedValues returns copies of rows whose ObsValue is replaced by the
// normalized value, so they can feed the ordinary aggregation helpers. Rows
// that do not normalize to a finite value are dropped.
func NormalizedValues(rows, source []domain.Observation) []domain.Observation {
	table := BuildLandAreaTable(source)

	out := make([]domain.Observation, 0, len(rows))
	for _, o := range rows {
		o.ObsValue = table.Scale(o.Country, o.ObsValue)
		if Finite(o.ObsValue) {
			out = append(out, o)
		}
	}
	return out
}

// NormalizeRanked normalizes per-country aggregates, keyed by country,
// dropping those that do not normalize to a finite value.
func NormalizeRanked(values []Ranked, source []domain.Observation) []Ranked {
	table := BuildLandAreaTable(source)

	out := make([]Ranked, 0, len(values))
	for _, r := range values {
		if v := table.Scale(r.Key, r.Value); Finite(v) {
			out = append(out, Ranked{Key: r.Key, Value: v})
		}
	}
	return out
}
