// Package database opens the local sqlite database and maintains its schema
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the name of the database file inside the data directory
const FileName = "bite-terminal.db"

// DBPath returns the path to the database inside dataDir
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Open opens (creating if needed) the database at dbPath and ensures the schema exists
func Open(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// sqlite allows one writer; a single connection keeps writes ordered
	db.SetMaxOpenConns(1)

	// Set pragmas for durability without fsync on every statement
	_, _ = db.Exec("PRAGMA journal_mode=WAL")
	_, _ = db.Exec("PRAGMA synchronous=NORMAL")

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the catch log table if it does not exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS catches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			city TEXT NOT NULL,
			species TEXT NOT NULL,
			time TEXT NOT NULL,
			temp REAL NOT NULL,
			pressure REAL NOT NULL,
			wind TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_catches_species ON catches(species);
	`)
	if err != nil {
		return fmt.Errorf("creating catches table: %w", err)
	}

	return nil
}
