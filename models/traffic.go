package models

import "time"

// TrafficRow is one record of a PNCT count-station CSV. The csv tags match
// the headers DNIT publishes; columns missing from a given year's export are
// simply left empty. All source fields stay raw strings so the stored copy
// preserves exactly what was downloaded; Lat/Lon carry the coerced
// coordinates and are filled in by services.Process.
type TrafficRow struct {
	BR        string `csv:"br" json:"br"`
	UF        string `csv:"uf" json:"uf"`
	KM        string `csv:"km" json:"km"`
	Municipio string `csv:"municipio" json:"municipio"`
	Latitude  string `csv:"latitude" json:"latitude"`
	Longitude string `csv:"longitude" json:"longitude"`
	Sentido   string `csv:"sentido" json:"sentido"`
	Data      string `csv:"data" json:"data"`
	Hora      string `csv:"hora" json:"hora"`
	Volume    string `csv:"volume_total" json:"volume_total"`

	Lat *float64 `csv:"-" json:"lat,omitempty"`
	Lon *float64 `csv:"-" json:"lon,omitempty"`
}

// HasCoordinates reports whether both coerced coordinates are present, i.e.
// the row can be placed on the map.
func (r TrafficRow) HasCoordinates() bool {
	return r.Lat != nil && r.Lon != nil
}

// Dataset is the parsed result of one (year, BR) fetch. CoordinateColumns
// records whether the source header carried latitude/longitude columns at
// all; processing treats "columns present but values blank" and "columns
// absent" differently.
type Dataset struct {
	Year              int          `json:"year"`
	BR                int          `json:"br"`
	Rows              []TrafficRow `json:"rows"`
	FetchedAt         time.Time    `json:"fetched_at"`
	CoordinateColumns bool         `json:"-"`
}

// Key returns the query description used in the history log, e.g.
// "BR-101 (2023)".
func (d *Dataset) Key() string {
	return DatasetKey(d.Year, d.BR)
}
