package fetcher

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/jszwec/csvutil"
	"golang.org/x/text/encoding/charmap"

	"github.com/verasluna/pnct-painel/models"
)

// headerAliases maps header spellings seen across PNCT publication years to
// the canonical csv tags on models.TrafficRow.
var headerAliases = map[string]string{
	"município":    "municipio",
	"lat":          "latitude",
	"long":         "longitude",
	"lon":          "longitude",
	"volume total": "volume_total",
}

// ParseTrafficCSV decodes a PNCT CSV: Latin-1 text, ';' delimiter, first
// line is the header. Malformed rows are skipped with a warning rather than
// aborting the whole file; an empty table is returned as-is. The bool
// reports whether the header carried a latitude or longitude column, which
// downstream processing needs to tell "columns absent" from "columns
// present but blank". Catastrophic failures map to ErrEncoding (text
// decoding) or ErrParse (CSV structure).
func ParseTrafficCSV(r io.Reader) ([]models.TrafficRow, bool, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrParse, err)
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.Comma = ';'
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		log.Printf("WARN Fetcher: CSV has no content, returning empty table")
		return []models.TrafficRow{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: could not read header: %v", ErrParse, err)
	}
	normalizeHeader(header)
	hasCoords := headerHasCoordinates(header)

	decoder, err := csvutil.NewDecoder(reader, header...)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var rows []models.TrafficRow
	skipped := 0
	for {
		var row models.TrafficRow
		err := decoder.Decode(&row)
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				skipped++
				log.Printf("WARN Fetcher: skipping malformed CSV line %d: %v", parseErr.Line, err)
				continue
			}
			return nil, false, fmt.Errorf("%w: %v", ErrParse, err)
		}
		rows = append(rows, row)
	}
	if skipped > 0 {
		log.Printf("WARN Fetcher: skipped %d malformed CSV rows", skipped)
	}
	if rows == nil {
		rows = []models.TrafficRow{}
	}
	return rows, hasCoords, nil
}

// headerHasCoordinates reports whether the normalized header names a
// latitude or longitude column.
func headerHasCoordinates(header []string) bool {
	for _, col := range header {
		if col == "latitude" || col == "longitude" {
			return true
		}
	}
	return false
}

// normalizeHeader lowercases and trims header cells (the first cell may also
// carry a UTF-8 BOM left over from re-exported files) and resolves known
// aliases, so struct tags match regardless of the publication year's casing.
func normalizeHeader(header []string) {
	for i, col := range header {
		col = strings.TrimPrefix(col, "\ufeff")
		col = strings.ToLower(strings.TrimSpace(col))
		if canonical, ok := headerAliases[col]; ok {
			col = canonical
		}
		header[i] = col
	}
}
