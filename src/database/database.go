package database

import (
	"database/sql"
	stdlog "log"

	"github.com/berkes/beancount-degiro/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Ensuring database schema", "databasePath", databasePath)
	} else {
		stdlog.Println("Ensuring database schema for:", databasePath)
	}

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS ticker_cache (
		isin TEXT PRIMARY KEY,
		ticker TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS imports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		language TEXT NOT NULL,
		transaction_count INTEGER NOT NULL,
		balance_count INTEGER NOT NULL,
		diagnostic_count INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := DB.Exec(createTableStatement); err != nil {
		stdlog.Fatalf("failed to create tables: %v", err)
	}
}
