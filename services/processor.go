package services

import (
	"strconv"
	"strings"

	"github.com/verasluna/pnct-painel/models"
)

// ProcessWarning signals that processing could not improve the table and the
// caller got the input back unchanged. Callers log it and continue with the
// returned rows; nothing is swallowed inside Process.
type ProcessWarning struct {
	Reason string
}

func (w *ProcessWarning) Error() string {
	return "processing skipped: " + w.Reason
}

// Process coerces the latitude/longitude columns to numbers and drops rows
// where both are missing afterwards; a row missing only one coordinate is
// kept. coordinateColumns says whether the source header carried those
// columns: when it did, the coerce-and-drop pass always runs, so a table
// whose coordinate cells are all blank comes back empty. Only a truly
// column-less table (or an empty one) is returned unmodified together with
// a ProcessWarning.
//
// Process is idempotent: rerunning it on its own output drops nothing and
// changes no values, since coercion only reads the raw string fields.
func Process(rows []models.TrafficRow, coordinateColumns bool) ([]models.TrafficRow, error) {
	if len(rows) == 0 {
		return rows, &ProcessWarning{Reason: "empty table"}
	}
	if !coordinateColumns {
		return rows, &ProcessWarning{Reason: "no coordinate columns in table"}
	}

	out := make([]models.TrafficRow, 0, len(rows))
	for _, row := range rows {
		row.Lat = coerceCoordinate(row.Latitude)
		row.Lon = coerceCoordinate(row.Longitude)
		if row.Lat == nil && row.Lon == nil {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// coerceCoordinate parses a coordinate cell, accepting both decimal comma
// (as DNIT exports them) and decimal point. Unparseable values come back nil
// rather than failing the row.
func coerceCoordinate(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
