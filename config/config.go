package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver"` // "sqlite" (default) or "mysql"
	SQLitePath string `yaml:"sqlite_path"`
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	DBName     string `yaml:"dbname"`
}

type DNITURLsConfig struct {
	// ArchiveBase is the prefix of the published zip archives. The final URL
	// is <ArchiveBase>/pnct_<year>_<br>.zip.
	ArchiveBase string `yaml:"archive_base"`
	// CatalogPage lists which years/roads have published data. Shown to the
	// user when a fetch 404s, and scraped for the availability hint.
	CatalogPage     string `yaml:"catalog_page"`
	CatalogSelector string `yaml:"catalog_selector"`
}

type StorageConfig struct {
	RawDataDir string `yaml:"raw_data_dir"`
	LogFile    string `yaml:"log_file"`
}

type CacheConfig struct {
	ProcessedTTLStr string `yaml:"processed_ttl"`
	ProcessedTTL    time.Duration
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	DNITURLs DNITURLsConfig `yaml:"dnit_urls"`
	Storage  StorageConfig  `yaml:"storage"`
	Cache    CacheConfig    `yaml:"cache"`
}

var AppConfig Config

// LoadConfig reads the YAML config file, applies environment overrides and
// fills in defaults. Environment variables win over the file so deployments
// can keep credentials out of the repo (.env is loaded by main before this).
func LoadConfig(configPath string) error {
	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(file, &AppConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides()
	applyDefaults()

	if AppConfig.Cache.ProcessedTTLStr != "" {
		var err error
		AppConfig.Cache.ProcessedTTL, err = time.ParseDuration(AppConfig.Cache.ProcessedTTLStr)
		if err != nil {
			return fmt.Errorf("failed to parse cache.processed_ttl: %w", err)
		}
	} else {
		AppConfig.Cache.ProcessedTTL = time.Hour
	}

	// Raw data and log directories must exist before the first fetch; failing
	// here is better than failing mid-request.
	if err := os.MkdirAll(AppConfig.Storage.RawDataDir, 0755); err != nil {
		return fmt.Errorf("failed to create raw data directory %s: %w", AppConfig.Storage.RawDataDir, err)
	}
	if err := os.MkdirAll(filepath.Dir(AppConfig.Storage.LogFile), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if AppConfig.Database.Driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(AppConfig.Database.SQLitePath), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	return nil
}

// LoadDotEnv loads a .env file if one exists in the working directory. A
// missing file is not an error; variables may come from the shell instead.
func LoadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "WARN Config: could not load .env: %v\n", err)
		}
	}
}

func applyEnvOverrides() {
	overrides := map[string]*string{
		"PNCT_SERVER_PORT": &AppConfig.Server.Port,
		"PNCT_DB_DRIVER":   &AppConfig.Database.Driver,
		"PNCT_DB_PATH":     &AppConfig.Database.SQLitePath,
		"PNCT_DB_HOST":     &AppConfig.Database.Host,
		"PNCT_DB_PORT":     &AppConfig.Database.Port,
		"PNCT_DB_USER":     &AppConfig.Database.User,
		"PNCT_DB_PASSWORD": &AppConfig.Database.Password,
		"PNCT_DB_NAME":     &AppConfig.Database.DBName,
	}
	for key, target := range overrides {
		if v := os.Getenv(key); v != "" {
			*target = v
		}
	}
}

func applyDefaults() {
	if AppConfig.Server.Port == "" {
		AppConfig.Server.Port = "8080"
	}
	if AppConfig.Database.Driver == "" {
		AppConfig.Database.Driver = "sqlite"
	}
	if AppConfig.Database.SQLitePath == "" {
		AppConfig.Database.SQLitePath = "database/rodovias.db"
	}
	if AppConfig.DNITURLs.ArchiveBase == "" {
		AppConfig.DNITURLs.ArchiveBase = "https://servicos.dnit.gov.br/dadospnct/arquivos"
	}
	if AppConfig.DNITURLs.CatalogPage == "" {
		AppConfig.DNITURLs.CatalogPage = "https://servicos.dnit.gov.br/dadospnct/mapa"
	}
	if AppConfig.Storage.RawDataDir == "" {
		AppConfig.Storage.RawDataDir = "data/raw"
	}
	if AppConfig.Storage.LogFile == "" {
		AppConfig.Storage.LogFile = "logs/pnct-painel.log"
	}
}
