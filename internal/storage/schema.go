// Package storage persists extraction records in SQLite so repeated runs can
// skip unchanged files and the search and graph commands can work offline.
package storage

import (
	"database/sql"
	"fmt"
)

const createFilesTable = `
CREATE TABLE IF NOT EXISTS files (
	file_path      TEXT PRIMARY KEY,
	language       TEXT NOT NULL,
	file_hash      TEXT NOT NULL,
	quality        TEXT NOT NULL,
	strategy       TEXT NOT NULL DEFAULT '',
	backend        TEXT NOT NULL DEFAULT '',
	error          TEXT NOT NULL DEFAULT '',
	token_estimate INTEGER NOT NULL DEFAULT 0,
	unsupported    INTEGER NOT NULL DEFAULT 0,
	extracted_at   TEXT NOT NULL
)`

const createDeclarationsTable = `
CREATE TABLE IF NOT EXISTS declarations (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	file_path TEXT NOT NULL REFERENCES files(file_path) ON DELETE CASCADE,
	name      TEXT NOT NULL,
	kind      TEXT NOT NULL,
	start_line INTEGER NOT NULL,
	end_line   INTEGER NOT NULL,
	docstring TEXT NOT NULL DEFAULT '',
	signature TEXT NOT NULL DEFAULT '',
	modifiers TEXT NOT NULL DEFAULT '',
	parent    TEXT NOT NULL DEFAULT ''
)`

const createImportsTable = `
CREATE TABLE IF NOT EXISTS imports (
	file_path TEXT NOT NULL REFERENCES files(file_path) ON DELETE CASCADE,
	import    TEXT NOT NULL,
	PRIMARY KEY (file_path, import)
)`

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_declarations_file ON declarations(file_path)`,
	`CREATE INDEX IF NOT EXISTS idx_declarations_name ON declarations(name)`,
	`CREATE INDEX IF NOT EXISTS idx_imports_file ON imports(file_path)`,
}

// CreateSchema creates all tables and indexes. All schema creation succeeds
// or fails together. Must run with PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	for _, ddl := range []string{createFilesTable, createDeclarationsTable, createImportsTable} {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	for _, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}
