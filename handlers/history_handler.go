package handlers

import (
	"fmt"
	"net/http"

	"github.com/verasluna/pnct-painel/database"
)

// historyDisplayLimit caps how many entries the dashboard shows; the log
// itself is unbounded.
const historyDisplayLimit = 10

// HistoryHandler returns the most recent queries, newest first, rendered the
// way the history panel shows them. An empty log yields a placeholder
// message, not an error.
// GET /api/history
func HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	entries, err := database.RecentHistory(historyDisplayLimit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load history: %v", err))
		return
	}

	rendered := make([]string, 0, len(entries))
	for _, entry := range entries {
		rendered = append(rendered, entry.String())
	}

	payload := map[string]interface{}{"entries": rendered}
	if len(rendered) == 0 {
		payload["message"] = "Nenhuma consulta recente"
	}
	respondWithJSON(w, http.StatusOK, payload)
}
