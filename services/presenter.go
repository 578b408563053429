package services

import (
	"sort"
	"strings"

	"github.com/verasluna/pnct-painel/models"
)

// PreviewSize is how many rows the dashboard's preview table shows.
const PreviewSize = 10

// Marker is one map point: a row that has both coordinates, with the popup
// text the map shows ("BR-101 | SP").
type Marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Popup string  `json:"popup"`
}

// Preview returns the first n rows without copying the backing data.
func Preview(rows []models.TrafficRow, n int) []models.TrafficRow {
	if len(rows) < n {
		n = len(rows)
	}
	return rows[:n]
}

// Regions returns the distinct UF labels present in the table, sorted.
// Rows with a blank UF contribute nothing.
func Regions(rows []models.TrafficRow) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		uf := strings.ToUpper(strings.TrimSpace(row.UF))
		if uf != "" {
			seen[uf] = true
		}
	}
	regions := make([]string, 0, len(seen))
	for uf := range seen {
		regions = append(regions, uf)
	}
	sort.Strings(regions)
	return regions
}

// FilterByRegions keeps rows whose UF is in the selection. An empty
// selection means no filter.
func FilterByRegions(rows []models.TrafficRow, selected []string) []models.TrafficRow {
	if len(selected) == 0 {
		return rows
	}
	wanted := make(map[string]bool, len(selected))
	for _, uf := range selected {
		wanted[strings.ToUpper(strings.TrimSpace(uf))] = true
	}
	out := make([]models.TrafficRow, 0, len(rows))
	for _, row := range rows {
		if wanted[strings.ToUpper(strings.TrimSpace(row.UF))] {
			out = append(out, row)
		}
	}
	return out
}

// Markers builds one map marker per row that has both coordinates. An empty
// result is the "no map" case; the caller renders a fallback notice instead.
func Markers(rows []models.TrafficRow) []Marker {
	markers := make([]Marker, 0, len(rows))
	for _, row := range rows {
		if !row.HasCoordinates() {
			continue
		}
		popup := "BR-" + strings.TrimSpace(row.BR)
		if uf := strings.ToUpper(strings.TrimSpace(row.UF)); uf != "" {
			popup += " | " + uf
		}
		markers = append(markers, Marker{Lat: *row.Lat, Lon: *row.Lon, Popup: popup})
	}
	return markers
}

// RegionHistogram counts rows per UF for the distribution chart.
func RegionHistogram(rows []models.TrafficRow) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		uf := strings.ToUpper(strings.TrimSpace(row.UF))
		if uf != "" {
			counts[uf]++
		}
	}
	return counts
}
