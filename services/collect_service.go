package services

import (
	"errors"
	"log"
	"time"

	"github.com/verasluna/pnct-painel/database"
	"github.com/verasluna/pnct-painel/fetcher"
	"github.com/verasluna/pnct-painel/models"
	"github.com/verasluna/pnct-painel/observability"
)

// Collector orchestrates one user query end to end: download, process,
// persist, and hand the processed dataset back for display.
type Collector struct {
	Fetcher *fetcher.Fetcher
	Cache   *ProcessedCache
	Metrics *observability.Metrics
}

// CollectAndStore fetches the (year, BR) archive, processes it and stores
// the processed table plus a history entry. Fetcher errors propagate
// unmodified; processing warnings are logged and the raw table is kept
// (fail-open); store errors propagate (fail-closed).
func (c *Collector) CollectAndStore(year, br int) (*models.Dataset, error) {
	start := time.Now()

	ds, err := c.Fetcher.Fetch(year, br)
	if err != nil {
		c.countCollection(fetchOutcome(err))
		return nil, err
	}

	processed := c.process(ds)

	if err := database.SaveDataset(processed); err != nil {
		log.Printf("ERROR Service: could not store %s: %v", processed.Key(), err)
		c.countCollection("storage_error")
		return nil, err
	}

	c.countCollection("success")
	if c.Metrics != nil {
		c.Metrics.CollectionDuration.Observe(time.Since(start).Seconds())
	}
	return processed, nil
}

// LoadProcessed re-displays a stored dataset without refetching, running the
// stored rows through the processed-table cache.
func (c *Collector) LoadProcessed(year, br int) (*models.Dataset, error) {
	ds, err := database.GetDataset(year, br)
	if err != nil {
		return nil, err
	}
	return c.process(ds), nil
}

func (c *Collector) process(ds *models.Dataset) *models.Dataset {
	rows, warn, hit := c.Cache.Process(ds)
	if warn != nil {
		log.Printf("WARN Service: %s: %v (keeping table as-is)", ds.Key(), warn)
	}
	if c.Metrics != nil {
		result := "miss"
		if hit {
			result = "hit"
		}
		c.Metrics.ProcessedCache.WithLabelValues(result).Inc()
		if !hit && warn == nil {
			c.Metrics.RowsKept.Add(float64(len(rows)))
			c.Metrics.RowsDropped.Add(float64(len(ds.Rows) - len(rows)))
		}
	}
	return &models.Dataset{
		Year:              ds.Year,
		BR:                ds.BR,
		Rows:              rows,
		FetchedAt:         ds.FetchedAt,
		CoordinateColumns: ds.CoordinateColumns,
	}
}

func (c *Collector) countCollection(outcome string) {
	if c.Metrics != nil {
		c.Metrics.CollectionsTotal.WithLabelValues(outcome).Inc()
	}
}

func fetchOutcome(err error) string {
	switch {
	case errors.Is(err, fetcher.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, fetcher.ErrNotFound):
		return "not_found"
	default:
		return "download_error"
	}
}
