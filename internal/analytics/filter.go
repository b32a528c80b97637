package analytics

import (
	"strings"

	"agridash/pkg/contracts/domain"
)

// Predicate reports whether a row passes a restriction.
type Predicate func(domain.Observation) bool

// Apply returns the rows that satisfy every restriction in sel. Dimensions
// are combined with AND, the values of one dimension with OR. The result is
// always a fresh slice, even when nothing restricts.
func Apply(rows []domain.Observation, sel domain.Selection) []domain.Observation {
	return Where(rows, Predicates(sel)...)
}

// Predicates turns a selection into one predicate per restricting dimension.
func Predicates(sel domain.Selection) []Predicate {
	var preds []Predicate

	if sel.YearRange != nil {
		r := *sel.YearRange
		preds = append(preds, func(o domain.Observation) bool { return r.Contains(o.Year) })
	}

	if len(sel.Years) > 0 {
		years := make(map[int]struct{}, len(sel.Years))
		for _, y := range sel.Years {
			years[y] = struct{}{}
		}
		preds = append(preds, func(o domain.Observation) bool {
			_, ok := years[o.Year]
			return ok
		})
	}

	dims := []struct {
		field  domain.Field
		values []string
	}{
		{domain.FieldCountry, sel.Countries},
		{domain.FieldNutrients, sel.Nutrients},
		{domain.FieldUnit, sel.Units},
		{domain.FieldCategory, sel.Categories},
		{domain.FieldWaterType, sel.WaterTypes},
		{domain.FieldErosionLevel, sel.ErosionLevels},
		{domain.FieldStatus, sel.Statuses},
	}
	for _, d := range dims {
		if p := In(d.field, d.values...); p != nil {
			preds = append(preds, p)
		}
	}

	return preds
}

// In matches rows whose field is one of values. It returns nil when values
// does not restrict (empty, or containing the "All" sentinel).
func In(field domain.Field, values ...string) Predicate {
	if !domain.Restricts(values) {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(o domain.Observation) bool {
		v := o.Attr(field)
		if v == "" {
			return false
		}
		_, ok := set[v]
		return ok
	}
}

// Eq matches rows whose field equals value exactly.
func Eq(field domain.Field, value string) Predicate {
	return func(o domain.Observation) bool { return o.Attr(field) == value }
}

// Contains matches rows whose field contains any of the substrings,
// case-insensitively. Empty fields never match.
func Contains(field domain.Field, substrings ...string) Predicate {
	lowered := make([]string, len(substrings))
	for i, s := range substrings {
		lowered[i] = strings.ToLower(s)
	}
	return func(o domain.Observation) bool {
		v := strings.ToLower(o.Attr(field))
		if v == "" {
			return false
		}
		for _, s := range lowered {
			if strings.Contains(v, s) {
				return true
			}
		}
		return false
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(o domain.Observation) bool { return !p(o) }
}

// Or matches rows accepted by any of preds.
func Or(preds ...Predicate) Predicate {
	return func(o domain.Observation) bool {
		for _, p := range preds {
			if p(o) {
				return true
			}
		}
		return false
	}
}

// Where returns the rows accepted by every non-nil predicate.
func Where(rows []domain.Observation, preds ...Predicate) []domain.Observation {
	active := preds[:0:0]
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}

	out := make([]domain.Observation, 0, len(rows)/4+1)
	for _, row := range rows {
		if matchAll(row, active) {
			out = append(out, row)
		}
	}
	return out
}

func matchAll(row domain.Observation, preds []Predicate) bool {
	for _, p := range preds {
		if !p(row) {
			return false
		}
	}
	return true
}
