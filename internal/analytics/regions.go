package analytics

import "agridash/pkg/contracts/domain"

// AggregateRegions are pseudo-countries that sum other rows of the dataset.
var AggregateRegions = []string{"World", "OECD", "OECD Asia Oceania", "OECD America", "OECD Europe"}

// MapAggregateRegions additionally excludes the EU, which a map cannot place.
var MapAggregateRegions = append(append([]string(nil), AggregateRegions...), "EU")

// RemoveAggregates drops regional aggregate rows so country rankings and
// totals do not double count.
func RemoveAggregates(rows []domain.Observation, mapView bool) []domain.Observation {
	regions := AggregateRegions
	if mapView {
		regions = MapAggregateRegions
	}
	return Where(rows, Not(In(domain.FieldCountry, regions...)))
}

// IsAggregate reports whether country is a regional aggregate.
func IsAggregate(country string) bool {
	for _, r := range MapAggregateRegions {
		if r == country {
			return true
		}
	}
	return false
}
