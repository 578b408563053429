package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/verasluna/pnct-painel/models"
)

// RecentHistory returns up to n history entries, newest first. An empty log
// yields an empty slice, not an error.
func RecentHistory(n int) ([]models.HistoryEntry, error) {
	if DB == nil {
		return nil, fmt.Errorf("%w: database connection is not initialized", ErrStorage)
	}

	rows, err := DB.Query(
		"SELECT id, consulta, timestamp FROM historico ORDER BY timestamp DESC, id DESC LIMIT ?", n,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query history: %v", ErrStorage, err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var entry models.HistoryEntry
		var ts sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Consulta, &ts); err != nil {
			log.Printf("ERROR Database: failed to scan history row: %v", err)
			continue
		}
		entry.Timestamp = parseDBTime(ts.String)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating history rows: %v", ErrStorage, err)
	}
	return entries, nil
}
