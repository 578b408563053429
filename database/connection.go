package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/verasluna/pnct-painel/config"
)

var (
	DB     *sql.DB
	driver string
)

// InitDB opens the configured database and makes sure the schema exists.
// Safe to call on every startup. The default driver is a local SQLite file;
// "mysql" is for deployments where several sessions share one store.
func InitDB(cfg config.DatabaseConfig) error {
	var err error
	driver = strings.ToLower(strings.TrimSpace(cfg.Driver))

	switch driver {
	case "", "sqlite":
		driver = "sqlite"
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.SQLitePath)
		DB, err = sql.Open("sqlite", dsn)
		if err != nil {
			return fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// modernc sqlite serializes writes; a single connection avoids
		// SQLITE_BUSY between concurrent transactions.
		DB.SetMaxOpenConns(1)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
		)
		DB, err = sql.Open("mysql", dsn)
		if err != nil {
			return fmt.Errorf("failed to open database connection: %w", err)
		}
		DB.SetMaxOpenConns(25)
		DB.SetMaxIdleConns(25)
		DB.SetConnMaxLifetime(5 * time.Minute)
	default:
		return fmt.Errorf("unknown database driver %q (use sqlite or mysql)", cfg.Driver)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err = createSchema(); err != nil {
		DB.Close()
		return err
	}

	log.Printf("Database: connected (%s)", driver)
	return nil
}

// CloseDB closes the connection pool. Called on application shutdown.
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Println("Database: connection closed.")
	}
}

// createSchema creates the dataset and history tables if they are missing.
// Column names mirror the DNIT domain: ano/br identify the snapshot, dados
// holds the JSON-serialized rows, historico is the append-only query log.
func createSchema() error {
	var statements []string
	if driver == "mysql" {
		statements = []string{
			`CREATE TABLE IF NOT EXISTS dados_dnit (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				ano INT NOT NULL,
				br INT NOT NULL,
				dados LONGTEXT NOT NULL,
				timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				UNIQUE KEY uq_ano_br (ano, br)
			)`,
			`CREATE TABLE IF NOT EXISTS historico (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				consulta VARCHAR(255) NOT NULL,
				timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
		}
	} else {
		statements = []string{
			`CREATE TABLE IF NOT EXISTS dados_dnit (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				ano INTEGER NOT NULL,
				br INTEGER NOT NULL,
				dados TEXT NOT NULL,
				timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(ano, br)
			)`,
			`CREATE TABLE IF NOT EXISTS historico (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				consulta TEXT NOT NULL,
				timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
		}
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("%w: failed to create schema: %v", ErrStorage, err)
		}
	}
	return nil
}
