package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/verasluna/pnct-painel/models"
)

// SaveDataset upserts the dataset under its (ano, br) key and appends one
// history entry, in a single transaction: both writes commit or neither
// does. Re-fetching a key overwrites the previous record, so the store holds
// at most one record per key.
func SaveDataset(ds *models.Dataset) error {
	if DB == nil {
		return fmt.Errorf("%w: database connection is not initialized", ErrStorage)
	}

	payload, err := json.Marshal(ds.Rows)
	if err != nil {
		return fmt.Errorf("%w: could not serialize rows: %v", ErrStorage, err)
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	// Delete-then-insert keeps the upsert portable across both drivers.
	if _, err := tx.Exec("DELETE FROM dados_dnit WHERE ano = ? AND br = ?", ds.Year, ds.BR); err != nil {
		return fmt.Errorf("%w: failed to clear previous record for %s: %v", ErrStorage, ds.Key(), err)
	}
	if _, err := tx.Exec("INSERT INTO dados_dnit (ano, br, dados) VALUES (?, ?, ?)", ds.Year, ds.BR, string(payload)); err != nil {
		return fmt.Errorf("%w: failed to insert record for %s: %v", ErrStorage, ds.Key(), err)
	}
	if _, err := tx.Exec("INSERT INTO historico (consulta) VALUES (?)", ds.Key()); err != nil {
		return fmt.Errorf("%w: failed to append history for %s: %v", ErrStorage, ds.Key(), err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit %s: %v", ErrStorage, ds.Key(), err)
	}

	log.Printf("Database: saved %s (%d rows)", ds.Key(), len(ds.Rows))
	return nil
}

// GetDataset loads the stored record for a key. Returns ErrNoDataset when
// nothing is stored under (year, br).
func GetDataset(year, br int) (*models.Dataset, error) {
	if DB == nil {
		return nil, fmt.Errorf("%w: database connection is not initialized", ErrStorage)
	}

	var payload string
	var ts sql.NullString
	err := DB.QueryRow(
		"SELECT dados, timestamp FROM dados_dnit WHERE ano = ? AND br = ?", year, br,
	).Scan(&payload, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNoDataset, models.DatasetKey(year, br))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query %s: %v", ErrStorage, models.DatasetKey(year, br), err)
	}

	var rows []models.TrafficRow
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		return nil, fmt.Errorf("%w: corrupt stored record for %s: %v", ErrStorage, models.DatasetKey(year, br), err)
	}

	return &models.Dataset{
		Year:              year,
		BR:                br,
		Rows:              rows,
		FetchedAt:         parseDBTime(ts.String),
		CoordinateColumns: rowsCarryCoordinates(rows),
	}, nil
}

// rowsCarryCoordinates reconstructs the coordinate-column flag for a stored
// table, where the source header is no longer available. Stored tables are
// already processed, so whenever the columns existed every surviving row
// carries at least one coordinate; a table where no row does came from a
// column-less source.
func rowsCarryCoordinates(rows []models.TrafficRow) bool {
	for _, row := range rows {
		if row.Lat != nil || row.Lon != nil {
			return true
		}
		if strings.TrimSpace(row.Latitude) != "" || strings.TrimSpace(row.Longitude) != "" {
			return true
		}
	}
	return false
}

// ListDatasets returns metadata for every stored record, newest first, for
// the dashboard's cached-dataset picker.
func ListDatasets() ([]models.DatasetRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("%w: database connection is not initialized", ErrStorage)
	}

	rows, err := DB.Query("SELECT id, ano, br, dados, timestamp FROM dados_dnit ORDER BY timestamp DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list datasets: %v", ErrStorage, err)
	}
	defer rows.Close()

	records := []models.DatasetRecord{}
	for rows.Next() {
		var rec models.DatasetRecord
		var payload string
		var ts sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Year, &rec.BR, &payload, &ts); err != nil {
			log.Printf("ERROR Database: failed to scan dataset record: %v", err)
			continue
		}
		var stored []json.RawMessage
		if err := json.Unmarshal([]byte(payload), &stored); err == nil {
			rec.RowCount = len(stored)
		}
		rec.Timestamp = parseDBTime(ts.String)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating dataset records: %v", ErrStorage, err)
	}
	return records, nil
}

// ClearAll deletes every stored dataset and every history entry in one
// transaction. Irreversible.
func ClearAll() error {
	if DB == nil {
		return fmt.Errorf("%w: database connection is not initialized", ErrStorage)
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM dados_dnit"); err != nil {
		return fmt.Errorf("%w: failed to clear datasets: %v", ErrStorage, err)
	}
	if _, err := tx.Exec("DELETE FROM historico"); err != nil {
		return fmt.Errorf("%w: failed to clear history: %v", ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit clear: %v", ErrStorage, err)
	}

	log.Println("Database: all datasets and history cleared.")
	return nil
}

// parseDBTime copes with the formats both drivers hand back when a
// timestamp column is scanned into a string (sqlite stores the literal
// "2006-01-02 15:04:05"; the mysql driver formats time.Time as RFC 3339).
func parseDBTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
