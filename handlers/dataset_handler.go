package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/verasluna/pnct-painel/database"
	"github.com/verasluna/pnct-painel/models"
)

// DatasetsHandler lists the stored dataset records, newest first.
// GET /api/datasets
func DatasetsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}

	records, err := database.ListDatasets()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list datasets: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"datasets": records})
}

// DatasetDetailHandler re-displays a stored dataset without refetching,
// optionally filtered by region.
// GET /api/datasets/{year}/{br}?uf=SP&uf=RJ
func DatasetDetailHandler(w http.ResponseWriter, r *http.Request) {
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

	respondWithJSON(w, http.StatusOK, newDatasetView(ds, r.URL.Query()["uf"]))
}

// datasetKeyFromPath parses .../{year}/{br} off the end of the path,
// responding with a 400 itself when the segments are missing or not numbers.
func datasetKeyFromPath(w http.ResponseWriter, path string) (year, br int, ok bool) {
	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	if len(pathParts) < 2 {
		respondWithError(w, http.StatusBadRequest, "Invalid path. Expected .../{year}/{br}")
		return 0, 0, false
	}

	var err error
	year, err = strconv.Atoi(pathParts[len(pathParts)-2])
	if err == nil {
		br, err = strconv.Atoi(pathParts[len(pathParts)-1])
	}
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid path. Year and BR must be integers")
		return 0, 0, false
	}
	return year, br, true
}
