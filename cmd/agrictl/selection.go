package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apierrors "agridash/internal/errors"
	"agridash/internal/middleware"
	api "agridash/pkg/contracts/api/v1"
	"agridash/pkg/contracts/domain"
)

// selectionFlags mirror the dashboard's query parameters. Lists are
// repeatable flags rather than comma separated because country names
// contain commas.
type selectionFlags struct {
	countries     []string
	yearStart     int
	yearEnd       int
	categories    []string
	nutrients     []string
	units         []string
	waterTypes    []string
	erosionLevels []string
	statuses      []string
	contamination []string
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVar(&s.countries, "country", nil, "restrict to a country (repeatable)")
	f.IntVar(&s.yearStart, "year-start", -1, "first year, inclusive")
	f.IntVar(&s.yearEnd, "year-end", -1, "last year, inclusive")
	f.StringArrayVar(&s.categories, "category", nil, "restrict to a measure category (repeatable)")
	f.StringArrayVar(&s.nutrients, "nutrient", nil, "restrict to a nutrient (repeatable)")
	f.StringArrayVar(&s.units, "unit", nil, "restrict to a measure unit (repeatable)")
	f.StringArrayVar(&s.waterTypes, "water-type", nil, "restrict to a water type (repeatable)")
	f.StringArrayVar(&s.erosionLevels, "erosion-level", nil, "restrict to an erosion risk level (repeatable)")
	f.StringArrayVar(&s.statuses, "status", nil, "restrict to an observation status (repeatable)")
	f.StringArrayVar(&s.contamination, "contamination-type", nil, "water page contamination type (repeatable)")
}

// selection builds and validates the domain selection. A single open year
// bound is filled the same way the HTTP API fills it.
func (s *selectionFlags) selection() (domain.Selection, error) {
	sel := domain.Selection{
		Countries:          s.countries,
		Categories:         s.categories,
		Nutrients:          s.nutrients,
		Units:              s.units,
		WaterTypes:         s.waterTypes,
		ErosionLevels:      s.erosionLevels,
		Statuses:           s.statuses,
		ContaminationTypes: s.contamination,
	}

	if s.yearStart >= 0 || s.yearEnd >= 0 {
		r := &domain.YearRange{Start: api.MinYear, End: api.MaxYear}
		if s.yearStart >= 0 {
			r.Start = s.yearStart
		}
		if s.yearEnd >= 0 {
			r.End = s.yearEnd
		}
		sel.YearRange = r
	}

	if err := middleware.NewValidator().ValidateStruct(sel); err != nil {
		return domain.Selection{}, fmt.Errorf("invalid selection: %s", describe(err))
	}
	return sel, nil
}

// describe flattens validation details into one line.
func describe(err error) string {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	fields, ok := apiErr.Details.([]apierrors.ValidationError)
	if !ok || len(fields) == 0 {
		return apiErr.Message
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return strings.Join(parts, "; ")
}
