package fetcher

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogHTML = `<html><body>
<div class="mainArea">
  <ul>
    <li><a href="#">Dados 2021</a></li>
    <li><a href="#">Dados 2022</a></li>
    <li><a href="#">Dados 2023</a></li>
    <li><a href="#">Dados 2021 (revisado)</a></li>
  </ul>
</div>
<div class="footer">© 1998 DNIT — atualizado em 2024</div>
</body></html>`

func TestAvailableYears(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(catalogHTML))
	}))
	defer server.Close()

	years, err := AvailableYears(server.URL, "div.mainArea")
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2022, 2023}, years, "deduplicated, sorted, footer excluded")
}

func TestAvailableYearsDefaultSelector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(catalogHTML))
	}))
	defer server.Close()

	years, err := AvailableYears(server.URL, "")
	require.NoError(t, err)
	// body-wide scan picks up the footer year too
	assert.Contains(t, years, 2024)
}

func TestAvailableYearsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := AvailableYears(server.URL, "div.mainArea")
	assert.Error(t, err)
}
