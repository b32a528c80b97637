package domain

// AllSentinel in a selection list disables that dimension's restriction.
const AllSentinel = "All"

// ContaminationTypes are the water-quality groups a selection may name.
var ContaminationTypes = []string{"Nitrate", "Phosphorus", "Pesticides", "Pesticide_Presence"}

// YearRange is an inclusive [Start, End] year interval.
type YearRange struct {
	Start int `json:"start" validate:"min=0"`
	End   int `json:"end" validate:"gtefield=Start"`
}

// Contains reports whether year lies inside the inclusive range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Start && year <= r.End
}

// Selection is a set of optional restrictions over the observation table.
// A nil or empty list, or one containing AllSentinel, does not restrict.
type Selection struct {
	Countries     []string   `json:"countries,omitempty" validate:"max=500,dive,max=200"`
	YearRange     *YearRange `json:"year_range,omitempty"`
	Years         []int      `json:"years,omitempty" validate:"max=500,dive,min=0,max=9999"`
	Categories    []string   `json:"categories,omitempty" validate:"max=500,dive,max=200"`
	Nutrients     []string   `json:"nutrients,omitempty" validate:"max=500,dive,max=200"`
	Units         []string   `json:"units,omitempty" validate:"max=500,dive,max=200"`
	WaterTypes    []string   `json:"water_types,omitempty" validate:"max=500,dive,max=200"`
	ErosionLevels []string   `json:"erosion_levels,omitempty" validate:"max=500,dive,max=200"`
	Statuses      []string   `json:"statuses,omitempty" validate:"max=500,dive,max=200"`

	// ContaminationTypes only affects the water page.
	ContaminationTypes []string `json:"contamination_types,omitempty" validate:"max=5,dive,contamination"`
}

// Restricts reports whether a selection list actually narrows its dimension.
func Restricts(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if v == AllSentinel {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the selection leaves every dimension unrestricted.
func (s Selection) IsEmpty() bool {
	return s.YearRange == nil &&
		len(s.Years) == 0 &&
		!Restricts(s.Countries) &&
		!Restricts(s.Categories) &&
		!Restricts(s.Nutrients) &&
		!Restricts(s.Units) &&
		!Restricts(s.WaterTypes) &&
		!Restricts(s.ErosionLevels) &&
		!Restricts(s.Statuses) &&
		!Restricts(s.ContaminationTypes)
}
