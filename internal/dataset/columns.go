package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"agridash/pkg/contracts/domain"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrMissingColumn     = errors.New("required column missing")
	ErrNoHeader          = errors.New("no header row found")
)

var aliases = map[string]domain.Field{
	"country":            domain.FieldCountry,
	"ref_area":           domain.FieldCountry,
	"year":               domain.FieldYear,
	"time_period":        domain.FieldYear,
	"measure_category":   domain.FieldCategory,
	"measure":            domain.FieldCategory,
	"nutrients":          domain.FieldNutrients,
	"nutrient":           domain.FieldNutrients,
	"measure_unit":       domain.FieldUnit,
	"unit_measure":       domain.FieldUnit,
	"unit_multiplier":    domain.FieldUnitMultiplier,
	"unit_mult":          domain.FieldUnitMultiplier,
	"water_type":         domain.FieldWaterType,
	"erosion_risk_level": domain.FieldErosionLevel,
	"observation_status": domain.FieldStatus,
	"obs_status":         domain.FieldStatus,
	"obs_value":          domain.FieldValue,
	"value":              domain.FieldValue,
}

var required = []domain.Field{domain.FieldCountry, domain.FieldYear, domain.FieldValue}

func canonicalHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

// columnMap maps each known field to its index in a header row.
type columnMap map[domain.Field]int

func mapHeader(header []string) (columnMap, error) {
	cols := make(columnMap)
	for i, h := range header {
		if f, ok := aliases[canonicalHeader(h)]; ok {
			if _, dup := cols[f]; !dup {
				cols[f] = i
			}
		}
	}
	for _, f := range required {
		if _, ok := cols[f]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, f)
		}
	}
	return cols, nil
}

func (c columnMap) get(record []string, f domain.Field) string {
	i, ok := c[f]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parse turns a raw record into an observation. Rows whose year or value do
// not parse are rejected.
func (c columnMap) parse(record []string) (domain.Observation, error) {
	year, err := strconv.Atoi(c.get(record, domain.FieldYear))
	if err != nil {
		return domain.Observation{}, fmt.Errorf("year: %w", err)
	}
	value, err := strconv.ParseFloat(c.get(record, domain.FieldValue), 64)
	if err != nil {
		return domain.Observation{}, fmt.Errorf("obs_value: %w", err)
	}
	return domain.Observation{
		Country:           c.get(record, domain.FieldCountry),
		Year:              year,
		MeasureCategory:   c.get(record, domain.FieldCategory),
		Nutrients:         c.get(record, domain.FieldNutrients),
		MeasureUnit:       c.get(record, domain.FieldUnit),
		UnitMultiplier:    c.get(record, domain.FieldUnitMultiplier),
		WaterType:         c.get(record, domain.FieldWaterType),
		ErosionRiskLevel:  c.get(record, domain.FieldErosionLevel),
		ObservationStatus: c.get(record, domain.FieldStatus),
		ObsValue:          value,
	}, nil
}

// rowsFromRecords converts a header plus records, returning the number of
// rejected records alongside the observations.
func rowsFromRecords(header []string, records [][]string) ([]domain.Observation, int, error) {
	cols, err := mapHeader(header)
	if err != nil {
		return nil, 0, err
	}
	rows := make([]domain.Observation, 0, len(records))
	skipped := 0
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		o, err := cols.parse(rec)
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, o)
	}
	return rows, skipped, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
