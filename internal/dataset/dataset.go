package dataset

import (
	"time"

	"agridash/internal/analytics"
	"agridash/pkg/contracts/domain"
)

// Dataset is the loaded observation table. It is never mutated after
// construction and is safe for concurrent readers.
type Dataset struct {
	rows []domain.Observation
	info domain.DatasetInfo
}

// New wraps rows as a dataset. The caller must not modify rows afterwards.
func New(rows []domain.Observation, source, format string) *Dataset {
	info := domain.DatasetInfo{
		Source:   source,
		Format:   format,
		Rows:     len(rows),
		LoadedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for i, r := range rows {
		if i == 0 || r.Year < info.MinYear {
			info.MinYear = r.Year
		}
		if i == 0 || r.Year > info.MaxYear {
			info.MaxYear = r.Year
		}
	}
	return &Dataset{rows: rows, info: info}
}

// Observations returns the shared row slice. It must be treated as read-only.
func (d *Dataset) Observations() []domain.Observation {
	return d.rows
}

// Len is the number of rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Info describes where the rows came from.
func (d *Dataset) Info() domain.DatasetInfo {
	return d.info
}

// Options lists the distinct values of every selectable dimension, for
// populating filter controls.
func (d *Dataset) Options() domain.FilterOptions {
	by := analytics.By
	return domain.FilterOptions{
		Countries:          analytics.Distinct(d.rows, by(domain.FieldCountry)),
		Categories:         analytics.Distinct(d.rows, by(domain.FieldCategory)),
		Nutrients:          analytics.Distinct(d.rows, by(domain.FieldNutrients)),
		Units:              analytics.Distinct(d.rows, by(domain.FieldUnit)),
		WaterTypes:         analytics.Distinct(d.rows, by(domain.FieldWaterType)),
		ErosionLevels:      analytics.Distinct(d.rows, by(domain.FieldErosionLevel)),
		Statuses:           analytics.Distinct(d.rows, by(domain.FieldStatus)),
		ContaminationTypes: append([]string(nil), domain.ContaminationTypes...),
		MinYear:            d.info.MinYear,
		MaxYear:            d.info.MaxYear,
	}
}
