package domain

import "strconv"

// Observation is one row of the agri-environmental indicator table.
// Optional text columns that are null in the source are empty strings;
// an empty value never matches a list restriction.
type Observation struct {
	Country           string  `json:"country" db:"country"`
	Year              int     `json:"year" db:"year"`
	MeasureCategory   string  `json:"measure_category" db:"measure_category"`
	Nutrients         string  `json:"nutrients" db:"nutrients"`
	MeasureUnit       string  `json:"measure_unit" db:"measure_unit"`
	UnitMultiplier    string  `json:"unit_multiplier,omitempty" db:"unit_multiplier"`
	WaterType         string  `json:"water_type,omitempty" db:"water_type"`
	ErosionRiskLevel  string  `json:"erosion_risk_level,omitempty" db:"erosion_risk_level"`
	ObservationStatus string  `json:"observation_status" db:"observation_status"`
	ObsValue          float64 `json:"obs_value" db:"obs_value"`
}

// NormalizedObservation carries the land-area normalized value next to the
// untouched original row.
type NormalizedObservation struct {
	Observation
	Normalized *float64 `json:"normalized_value"`
}

// Field names a column of the observation table.
type Field string

const (
	FieldCountry        Field = "country"
	FieldYear           Field = "year"
	FieldCategory       Field = "measure_category"
	FieldNutrients      Field = "nutrients"
	FieldUnit           Field = "measure_unit"
	FieldUnitMultiplier Field = "unit_multiplier"
	FieldWaterType      Field = "water_type"
	FieldErosionLevel   Field = "erosion_risk_level"
	FieldStatus         Field = "observation_status"
	FieldValue          Field = "obs_value"
)

// Fields lists the columns in their canonical export order.
var Fields = []Field{
	FieldCountry, FieldYear, FieldCategory, FieldNutrients, FieldUnit,
	FieldUnitMultiplier, FieldWaterType, FieldErosionLevel, FieldStatus, FieldValue,
}

// Attr returns the textual value of a column. The year and the value are
// rendered in their canonical decimal form.
func (o Observation) Attr(f Field) string {
	switch f {
	case FieldCountry:
		return o.Country
	case FieldYear:
		return strconv.Itoa(o.Year)
	case FieldCategory:
		return o.MeasureCategory
	case FieldNutrients:
		return o.Nutrients
	case FieldUnit:
		return o.MeasureUnit
	case FieldUnitMultiplier:
		return o.UnitMultiplier
	case FieldWaterType:
		return o.WaterType
	case FieldErosionLevel:
		return o.ErosionRiskLevel
	case FieldStatus:
		return o.ObservationStatus
	case FieldValue:
		return strconv.FormatFloat(o.ObsValue, 'f', -1, 64)
	default:
		return ""
	}
}

// Record renders the row in Fields order, for CSV and spreadsheet export.
func (o Observation) Record() []string {
	out := make([]string, len(Fields))
	for i, f := range Fields {
		out[i] = o.Attr(f)
	}
	return out
}
