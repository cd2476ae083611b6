// Package storage persists simulation snapshots and the encounter journal in
// SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// InitSQLite opens (creating if needed) the database at dbPath and makes sure
// the schema exists.
func InitSQLite(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite database: %w", err)
	}
	// One writer; the simulation is single threaded anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping sqlite database: %w", err)
	}
	if err := createSchemas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: create schemas: %w", err)
	}
	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			tick INTEGER NOT NULL,
			sim_time REAL NOT NULL,
			created_at INTEGER NOT NULL,
			payload TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS journal (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			sim_time REAL NOT NULL,
			source INTEGER NOT NULL,
			kind TEXT NOT NULL,
			payload TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_run ON snapshots(run_id, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_run ON journal(run_id, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_kind ON journal(run_id, kind);`,
	}
	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}
