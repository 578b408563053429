package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/verasluna/pnct-painel/config"
	"github.com/verasluna/pnct-painel/database"
	"github.com/verasluna/pnct-painel/fetcher"
	"github.com/verasluna/pnct-painel/handlers"
	"github.com/verasluna/pnct-painel/models"
	"github.com/verasluna/pnct-painel/observability"
	"github.com/verasluna/pnct-painel/services"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	yearFlag := flag.Int("year", 0, "run a single collection for this year and exit (requires -br)")
	brFlag := flag.Int("br", 0, "BR number for -year")
	flag.Parse()

	log.Println("Starting Painel PNCT backend...")

	config.LoadDotEnv()

	path := *configPath
	if path == "" {
		for _, candidate := range []string{"config/config.yaml", "config.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			log.Fatal("Config file not found at default paths; pass -config")
		}
	}
	if err := config.LoadConfig(path); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	setupLogging(config.AppConfig.Storage.LogFile)

	if err := database.InitDB(config.AppConfig.Database); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	metrics := observability.NewMetrics()
	collector := &services.Collector{
		Fetcher: fetcher.New(config.AppConfig.DNITURLs.ArchiveBase, config.AppConfig.Storage.RawDataDir),
		Cache:   services.NewProcessedCache(config.AppConfig.Cache.ProcessedTTL, nil),
		Metrics: metrics,
	}
	handlers.Setup(collector)

	if *yearFlag != 0 || *brFlag != 0 {
		code := runOnce(collector, *yearFlag, *brFlag)
		database.CloseDB()
		os.Exit(code)
	}
	defer database.CloseDB()

	http.HandleFunc("/", handlers.DashboardHandler)
	http.HandleFunc("/api/collect", handlers.CollectHandler)
	http.HandleFunc("/api/datasets", handlers.DatasetsHandler)
	http.HandleFunc("/api/datasets/", handlers.DatasetDetailHandler)
	http.HandleFunc("/api/history", handlers.HistoryHandler)
	http.HandleFunc("/api/admin/clear", handlers.ClearHandler)
	http.HandleFunc("/api/export/", handlers.ExportHandler)
	http.Handle("/metrics", promhttp.Handler())

	http.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.DB.Ping(); err != nil {
			http.Error(w, `{"status": "error", "message": "database connection error"}`, http.StatusInternalServerError)
			log.Printf("Health check failed: DB ping error: %v", err)
			return
		}
		fmt.Fprintln(w, `{"status": "ok", "message": "painel pnct backend is healthy"}`)
	})

	serverAddr := ":" + config.AppConfig.Server.Port
	log.Printf("Server starting on http://localhost%s", serverAddr)
	if err := http.ListenAndServe(serverAddr, nil); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}

// setupLogging mirrors log output into the configured log file so runtime
// errors shown to the user as "consult the log" are actually findable.
func setupLogging(logFile string) {
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("WARN: could not open log file %s: %v (logging to stderr only)", logFile, err)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
}

// runOnce is the command-line mode: one collection, a console summary, and
// always a closing status line.
func runOnce(collector *services.Collector, year, br int) int {
	fmt.Println("=== Coletor de Dados PNCT ===")
	defer fmt.Println("\nOperação finalizada.")

	ds, err := collector.CollectAndStore(year, br)
	if err != nil {
		switch {
		case errors.Is(err, fetcher.ErrInvalidInput):
			fmt.Printf("\n❌ Erro de entrada: %v\n", err)
		case errors.Is(err, fetcher.ErrNotFound):
			fmt.Printf("\n❌ Dados para %s não encontrados. Verifique no site: %s\n",
				models.DatasetKey(year, br), config.AppConfig.DNITURLs.CatalogPage)
		default:
			fmt.Printf("\n⚠️ Erro durante a execução: %v\nConsulte o arquivo de logs: %s\n",
				err, config.AppConfig.Storage.LogFile)
		}
		return 1
	}

	fmt.Println("\n✅ Download concluído!")
	fmt.Printf("📁 Dados salvos em: %s/%d/BR-%d\n", config.AppConfig.Storage.RawDataDir, year, br)
	fmt.Printf("📊 %d registros carregados para %s\n", len(ds.Rows), ds.Key())
	for i, row := range services.Preview(ds.Rows, 5) {
		fmt.Printf("  %d. BR-%s %s km %s (%s)\n", i+1, row.BR, row.UF, row.KM, row.Municipio)
	}
	return 0
}
