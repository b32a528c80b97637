package analytics

import "strings"

// OtherContinent is reported for names that are not a known country.
const OtherContinent = "Other"

var continents = map[string]string{
	// Africa
	"algeria": "Africa", "egypt": "Africa", "ethiopia": "Africa", "kenya": "Africa",
	"morocco": "Africa", "nigeria": "Africa", "south africa": "Africa", "tunisia": "Africa",

	// Asia
	"china": "Asia", "china (people's republic of)": "Asia", "india": "Asia",
	"indonesia": "Asia", "israel": "Asia", "japan": "Asia", "kazakhstan": "Asia",
	"korea": "Asia", "south korea": "Asia", "republic of korea": "Asia",
	"malaysia": "Asia", "philippines": "Asia", "saudi arabia": "Asia",
	"thailand": "Asia", "turkey": "Asia", "türkiye": "Asia", "viet nam": "Asia", "vietnam": "Asia",

	// Europe
	"austria": "Europe", "belgium": "Europe", "bulgaria": "Europe", "croatia": "Europe",
	"cyprus": "Europe", "czech republic": "Europe", "czechia": "Europe", "denmark": "Europe",
	"estonia": "Europe", "finland": "Europe", "france": "Europe", "germany": "Europe",
	"greece": "Europe", "hungary": "Europe", "iceland": "Europe", "ireland": "Europe",
	"italy": "Europe", "latvia": "Europe", "lithuania": "Europe", "luxembourg": "Europe",
	"malta": "Europe", "netherlands": "Europe", "norway": "Europe", "poland": "Europe",
	"portugal": "Europe", "romania": "Europe", "russia": "Europe", "russian federation": "Europe",
	"slovak republic": "Europe", "slovakia": "Europe", "slovenia": "Europe", "spain": "Europe",
	"sweden": "Europe", "switzerland": "Europe", "ukraine": "Europe", "united kingdom": "Europe",

	// North America
	"canada": "North America", "costa rica": "North America", "mexico": "North America",
	"united states": "North America", "united states of america": "North America",

	// Oceania
	"australia": "Oceania", "new zealand": "Oceania",

	// South America
	"argentina": "South America", "brazil": "South America", "chile": "South America",
	"colombia": "South America", "peru": "South America", "uruguay": "South America",
}

// Continent maps a country name to its continent, or OtherContinent when
// the name is unknown (regional aggregates included).
func Continent(country string) string {
	if c, ok := continents[strings.ToLower(strings.TrimSpace(country))]; ok {
		return c
	}
	return OtherContinent
}
