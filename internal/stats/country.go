package stats

import (
	"sync"

	"github.com/pariz/gountries"

	"github.com/penshort/linkstats/internal/model"
)

// Loading the country table parses embedded data, so it is done once.
var countryQuery = sync.OnceValue(gountries.New)

// CountryName returns the common English name for an ISO 3166-1 alpha-2 code,
// or "" when the code is not recognized.
func CountryName(code string) string {
	country, err := countryQuery().FindCountryByAlpha(code)
	if err != nil {
		return ""
	}
	return country.Name.Common
}

func withCountryNames(entries []model.BreakdownEntry) []model.BreakdownEntry {
	for i := range entries {
		entries[i].DisplayName = CountryName(entries[i].Name)
	}
	return entries
}
