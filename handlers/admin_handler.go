package handlers

import (
	"fmt"
	"net/http"

	"github.com/verasluna/pnct-painel/database"
)

// ClearHandler deletes every stored dataset and the whole query history.
// Expects POST /api/admin/clear.
func ClearHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	if err := database.ClearAll(); err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to clear store: %v", err))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Cache e histórico resetados."})
}
