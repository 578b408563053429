package fetcher

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)

// AvailableYears scrapes the DNIT catalog page and returns the years that
// have published archives, ascending. It backs the "check the catalog" hint
// shown after a 404, so callers treat failures as the hint being unavailable
// rather than as a fetch error.
func AvailableYears(pageURL, containerSelector string) ([]int, error) {
	if containerSelector == "" {
		containerSelector = "body"
	}

	client := http.Client{Timeout: 20 * time.Second}
	res, err := client.Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog page %s: %w", pageURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get catalog page %s: status code %d", pageURL, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog page %s: %w", pageURL, err)
	}

	seen := make(map[int]bool)
	doc.Find(containerSelector).Each(func(_ int, sel *goquery.Selection) {
		for _, match := range yearPattern.FindAllString(sel.Text(), -1) {
			var year int
			fmt.Sscanf(match, "%d", &year)
			seen[year] = true
		}
	})

	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Ints(years)
	return years, nil
}
