package models

// Countries is the panel in canonical order. Growth accounting iterates in
// this order so two runs over the same inputs produce the same panel.
var Countries = []string{
	"AUS", "AUT", "BEL", "CAN", "DNK", "FIN", "FRA", "DEU", "GRC",
	"ISL", "IRL", "ITA", "JPN", "NLD", "NZL", "NOR", "PRT", "ESP",
	"SWE", "CHE", "GBR", "USA",
}

// CountryNames maps ISO3 codes to display names. The rendering layer takes
// a name mapping as an argument, this is just the default set.
var CountryNames = map[string]string{
	"AUS": "Australia", "AUT": "Austria", "BEL": "Belgium", "CAN": "Canada",
	"DNK": "Denmark", "FIN": "Finland", "FRA": "France", "DEU": "Germany",
	"GRC": "Greece", "ISL": "Iceland", "IRL": "Ireland", "ITA": "Italy",
	"JPN": "Japan", "NLD": "Netherlands", "NZL": "New Zealand", "NOR": "Norway",
	"PRT": "Portugal", "ESP": "Spain", "SWE": "Sweden", "CHE": "Switzerland",
	"GBR": "United Kingdom", "USA": "United States",
}

// MajorEconomies is the subset shown in the grouped decomposition chart.
var MajorEconomies = []string{"USA", "DEU", "JPN", "GBR", "FRA"}

// CountryName resolves a code against a name mapping, falling back to the
// code itself for unknown entries.
func CountryName(names map[string]string, code string) string {
	if name, ok := names[code]; ok {
		return name
	}
	return code
}
