package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/verasluna/pnct-painel/config"
	"github.com/verasluna/pnct-painel/database"
	"github.com/verasluna/pnct-painel/fetcher"
	"github.com/verasluna/pnct-painel/models"
	"github.com/verasluna/pnct-painel/services"
)

type collectRequest struct {
	Year int `json:"year"`
	BR   int `json:"br"`
}

// datasetView is the display payload for one processed dataset, optionally
// filtered by region: preview rows, filter choices, map markers and the
// per-region histogram in one response.
type datasetView struct {
	Year         int                 `json:"year"`
	BR           int                 `json:"br"`
	Key          string              `json:"key"`
	FetchedAt    time.Time           `json:"fetched_at"`
	RowCount     int                 `json:"row_count"`
	Empty        bool                `json:"empty"`
	Message      string              `json:"message,omitempty"`
	Preview      []models.TrafficRow `json:"preview"`
	Regions      []string            `json:"regions"`
	RegionCounts map[string]int      `json:"region_counts"`
	Markers      []services.Marker   `json:"markers"`
}

func newDatasetView(ds *models.Dataset, selectedRegions []string) datasetView {
	filtered := services.FilterByRegions(ds.Rows, selectedRegions)
	view := datasetView{
		Year:         ds.Year,
		BR:           ds.BR,
		Key:          ds.Key(),
		FetchedAt:    ds.FetchedAt,
		RowCount:     len(filtered),
		Preview:      services.Preview(filtered, services.PreviewSize),
		Regions:      services.Regions(ds.Rows),
		RegionCounts: services.RegionHistogram(filtered),
		Markers:      services.Markers(filtered),
	}
	if len(ds.Rows) == 0 {
		view.Empty = true
		view.Message = "Nenhum registro disponível para esta consulta."
	}
	return view
}

// CollectHandler runs a full collection for the submitted (year, BR).
// Expects POST /api/collect with a JSON body {"year": 2023, "br": 101}.
func CollectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req collectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON body; expected {\"year\": 2023, \"br\": 101}")
		return
	}

	ds, err := collector.CollectAndStore(req.Year, req.BR)
	if err != nil {
		respondWithFetchError(w, err, req.Year, req.BR)
		return
	}

	respondWithJSON(w, http.StatusOK, newDatasetView(ds, nil))
}

// respondWithFetchError maps the pipeline's error taxonomy onto user-facing
// responses: input errors get a correction hint, not-found points at the
// official catalog, everything else gets a generic message plus the log file.
func respondWithFetchError(w http.ResponseWriter, err error, year, br int) {
	switch {
	case errors.Is(err, fetcher.ErrInvalidInput):
		respondWithJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
			"hint":  fmt.Sprintf("O ano deve estar entre 2000 e %d e a BR entre 1 e 999.", time.Now().Year()),
		})
	case errors.Is(err, fetcher.ErrNotFound):
		payload := map[string]interface{}{
			"error":   fmt.Sprintf("Dados para %s não encontrados no servidor.", models.DatasetKey(year, br)),
			"catalog": config.AppConfig.DNITURLs.CatalogPage,
		}
		if years := availableYearsHint(); len(years) > 0 {
			payload["available_years"] = years
		}
		respondWithJSON(w, http.StatusNotFound, payload)
	case errors.Is(err, fetcher.ErrTimeout),
		errors.Is(err, fetcher.ErrConnection),
		errors.Is(err, fetcher.ErrNetwork),
		errors.Is(err, fetcher.ErrInvalidFormat):
		respondWithJSON(w, http.StatusBadGateway, map[string]string{
			"error": "Falha ao acessar o servidor do DNIT.",
			"log":   config.AppConfig.Storage.LogFile,
		})
	case errors.Is(err, database.ErrStorage):
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Erro no banco de dados.",
			"log":   config.AppConfig.Storage.LogFile,
		})
	default:
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Erro inesperado. Consulte os logs técnicos.",
			"log":   config.AppConfig.Storage.LogFile,
		})
	}
}

// availableYearsHint asks the catalog page which years have published data.
// Best effort only; a scrape failure just means no hint.
func availableYearsHint() []int {
	years, err := fetcher.AvailableYears(
		config.AppConfig.DNITURLs.CatalogPage,
		config.AppConfig.DNITURLs.CatalogSelector,
	)
	if err != nil {
		log.Printf("WARN Handlers: catalog availability check failed: %v", err)
		return nil
	}
	return years
}
