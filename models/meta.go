package models

import (
	"fmt"
	"time"
)

// DatasetKey formats the (year, BR) pair the way it appears in the history
// log and in user-facing messages.
func DatasetKey(year, br int) string {
	return fmt.Sprintf("BR-%d (%d)", br, year)
}

// DatasetRecord is the stored form of a dataset: one row of the dados_dnit
// table, unique on (ano, br). The serialized rows are kept as JSON so the
// raw column names survive round-trips unchanged.
type DatasetRecord struct {
	ID        int64     `db:"id" json:"id"`
	Year      int       `db:"ano" json:"year"`
	BR        int       `db:"br" json:"br"`
	RowCount  int       `db:"-" json:"row_count"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// HistoryEntry is one row of the append-only historico table.
type HistoryEntry struct {
	ID        int64     `db:"id" json:"id"`
	Consulta  string    `db:"consulta" json:"consulta"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// String renders the entry the way the dashboard's history panel shows it.
func (h HistoryEntry) String() string {
	return fmt.Sprintf("%s — %s", h.Timestamp.Format("2006-01-02 15:04:05"), h.Consulta)
}
