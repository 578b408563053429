package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jszwec/csvutil"

	"github.com/verasluna/pnct-painel/database"
	"github.com/verasluna/pnct-painel/models"
	"github.com/verasluna/pnct-painel/services"
)

// ExportHandler streams the filtered subset of a stored dataset as UTF-8,
// comma-delimited CSV with a header row. The download filename encodes the
// query key.
// GET /api/export/{year}/{br}?uf=SP&uf=RJ
func ExportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	year, br, ok := datasetKeyFromPath(w, r.URL.Path)
	if !ok {
		return
	}

	ds, err := collector.LoadProcessed(year, br)
	if err != nil {
		if errors.Is(err, database.ErrNoDataset) {
			respondWithError(w, http.StatusNotFound,
				fmt.Sprintf("No stored dataset for %s. Run a collection first.", models.DatasetKey(year, br)))
			return
		}
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load dataset: %v", err))
		return
	}

	filtered := services.FilterByRegions(ds.Rows, r.URL.Query()["uf"])
	payload, err := csvutil.Marshal(filtered)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to encode CSV: %v", err))
		return
	}

	filename := fmt.Sprintf("dados_br%d_%d.csv", br, year)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
