package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/verasluna/pnct-painel/models"
)

// ProcessedCache memoizes Process so repeated display refreshes of the same
// dataset do not recompute coordinate coercion. Entries are keyed by a
// content hash of the serialized rows and expire after the configured TTL,
// checked against an injectable clock so tests can advance time.
type ProcessedCache struct {
	ttl   time.Duration
	clock clockwork.Clock

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	rows      []models.TrafficRow
	warn      error
	expiresAt time.Time
}

// NewProcessedCache creates a cache with the given TTL. A nil clock means
// real time.
func NewProcessedCache(ttl time.Duration, clock clockwork.Clock) *ProcessedCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ProcessedCache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]cacheEntry),
	}
}

// Process returns the processed table for the dataset, computing it on the
// first call and serving the memoized result until the entry expires. The
// returned slice is a copy so a caller mutating a row cannot poison the
// memoized entry. The hit flag is for cache metrics.
func (c *ProcessedCache) Process(ds *models.Dataset) (rows []models.TrafficRow, warn error, hit bool) {
	key := fingerprint(ds)
	now := c.clock.Now()

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && now.Before(entry.expiresAt) {
		c.mu.Unlock()
		return copyRows(entry.rows), entry.warn, true
	}
	c.mu.Unlock()

	rows, warn = Process(ds.Rows, ds.CoordinateColumns)

	c.mu.Lock()
	c.prune(now)
	c.entries[key] = cacheEntry{rows: rows, warn: warn, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()

	return copyRows(rows), warn, false
}

func copyRows(rows []models.TrafficRow) []models.TrafficRow {
	out := make([]models.TrafficRow, len(rows))
	copy(out, rows)
	return out
}

// prune drops expired entries. Called with the lock held.
func (c *ProcessedCache) prune(now time.Time) {
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// fingerprint hashes the dataset's identity and content so a re-fetch that
// changes the rows gets its own cache entry.
func fingerprint(ds *models.Dataset) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d/%d/%t/", ds.Year, ds.BR, ds.CoordinateColumns)
	if payload, err := json.Marshal(ds.Rows); err == nil {
		h.Write(payload)
	} else {
		fmt.Fprintf(h, "len=%d@%d", len(ds.Rows), ds.FetchedAt.UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil))
}
