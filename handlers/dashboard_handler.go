package handlers

import (
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/verasluna/pnct-painel/config"
	"github.com/verasluna/pnct-painel/web"
)

var (
	dashboardTemplateOnce sync.Once
	dashboardTemplate     *template.Template
)

// DashboardHandler renders the dashboard page. All dynamic data is loaded by
// the page itself through the /api endpoints.
// GET /
func DashboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	dashboardTemplateOnce.Do(func() {
		dashboardTemplate = template.Must(template.ParseFS(web.Templates, "templates/index.html"))
	})

	data := struct {
		MinYear    int
		MaxYear    int
		CatalogURL string
	}{
		MinYear:    2000,
		MaxYear:    time.Now().Year(),
		CatalogURL: config.AppConfig.DNITURLs.CatalogPage,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, data); err != nil {
		log.Printf("ERROR Handlers: failed to render dashboard: %v", err)
	}
}
