package fetcher

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verasluna/pnct-painel/models"
)

// DownloadTimeout bounds a single archive download.
const DownloadTimeout = 30 * time.Second

// Fetcher downloads and parses PNCT archives for one deployment's base URL
// and local data directory. The HTTP client and clock are fields so tests
// can point it at an httptest server and freeze the current year.
type Fetcher struct {
	BaseURL string
	DataDir string
	Client  *http.Client
	Now     func() time.Time
}

// New returns a Fetcher with the production timeout and real clock.
func New(baseURL, dataDir string) *Fetcher {
	return &Fetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		DataDir: dataDir,
		Client:  &http.Client{Timeout: DownloadTimeout},
		Now:     time.Now,
	}
}

// Validate checks the query key before any filesystem or network work.
func (f *Fetcher) Validate(year, br int) error {
	if year < 2000 || year > f.Now().Year() {
		return fmt.Errorf("%w: year %d must be between 2000 and %d", ErrInvalidInput, year, f.Now().Year())
	}
	if br < 1 || br > 999 {
		return fmt.Errorf("%w: BR %d must be between 1 and 999", ErrInvalidInput, br)
	}
	return nil
}

// ArchiveURL builds the download URL for a (year, BR) pair.
func (f *Fetcher) ArchiveURL(year, br int) string {
	return fmt.Sprintf("%s/pnct_%d_%d.zip", f.BaseURL, year, br)
}

// Fetch runs the whole ingestion pipeline for one (year, BR): validate,
// prepare the local directory layout, download the zip, persist it, extract
// the first CSV member and parse it. Every failure is logged with context
// before it propagates; callers discriminate with errors.Is against the
// sentinels in errors.go.
func (f *Fetcher) Fetch(year, br int) (*models.Dataset, error) {
	if err := f.Validate(year, br); err != nil {
		log.Printf("ERROR Fetcher: %v", err)
		return nil, err
	}

	roadDir := filepath.Join(f.DataDir, fmt.Sprintf("%d", year), fmt.Sprintf("BR-%d", br))
	zipDir := filepath.Join(roadDir, "arquivos_zip")
	csvDir := filepath.Join(roadDir, "arquivos_csv")
	for _, dir := range []string{zipDir, csvDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("CRITICAL Fetcher: could not create directory %s: %v", dir, err)
			return nil, fmt.Errorf("%w: could not create %s: %v", ErrFilesystem, dir, err)
		}
	}

	url := f.ArchiveURL(year, br)
	log.Printf("Fetcher: downloading %s", url)

	resp, err := f.Client.Get(url)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			log.Printf("ERROR Fetcher: timeout fetching %s: %v", url, err)
			return nil, fmt.Errorf("%w: %s took longer than %s", ErrTimeout, url, f.clientTimeout())
		}
		log.Printf("ERROR Fetcher: connection error fetching %s: %v", url, err)
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		log.Printf("ERROR Fetcher: archive not found: %s", url)
		return nil, fmt.Errorf("%w: no data for %s on the server", ErrNotFound, models.DatasetKey(year, br))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		log.Printf("ERROR Fetcher: HTTP %d fetching %s", resp.StatusCode, url)
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrNetwork, resp.StatusCode, url)
	}

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/zip") {
		log.Printf("ERROR Fetcher: unexpected content type %q from %s", ct, url)
		return nil, fmt.Errorf("%w: got content type %q", ErrInvalidFormat, ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			log.Printf("ERROR Fetcher: timeout reading body of %s: %v", url, err)
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		log.Printf("ERROR Fetcher: failed reading body of %s: %v", url, err)
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	// Persist the raw bytes before touching the archive so a corrupt
	// download stays on disk for inspection.
	zipPath := filepath.Join(zipDir, fmt.Sprintf("pnct_%d_%d.zip", year, br))
	if err := os.WriteFile(zipPath, data, 0644); err != nil {
		log.Printf("ERROR Fetcher: could not save zip to %s: %v", zipPath, err)
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	log.Printf("Fetcher: zip saved to %s (%d bytes)", zipPath, len(data))

	csvPath, err := ExtractFirstCSV(data, csvDir)
	if err != nil {
		log.Printf("ERROR Fetcher: extraction failed for %s: %v", zipPath, err)
		return nil, err
	}

	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("ERROR Fetcher: could not open extracted CSV %s: %v", csvPath, err)
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer file.Close()

	rows, hasCoords, err := ParseTrafficCSV(file)
	if err != nil {
		log.Printf("ERROR Fetcher: parse failed for %s: %v", csvPath, err)
		return nil, err
	}
	if len(rows) == 0 {
		log.Printf("WARN Fetcher: %s parsed to an empty table", csvPath)
	} else {
		log.Printf("Fetcher: parsed %d rows for %s", len(rows), models.DatasetKey(year, br))
	}

	return &models.Dataset{
		Year:              year,
		BR:                br,
		Rows:              rows,
		FetchedAt:         f.Now(),
		CoordinateColumns: hasCoords,
	}, nil
}

func (f *Fetcher) clientTimeout() time.Duration {
	if f.Client != nil && f.Client.Timeout > 0 {
		return f.Client.Timeout
	}
	return DownloadTimeout
}
