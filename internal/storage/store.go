package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/srcmeta/srcmeta/internal/extraction"
	"github.com/srcmeta/srcmeta/internal/pipeline"
)

// Store owns the SQLite connection for one extraction database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// FileHash returns the stored content hash for a path, if the file is known.
func (s *Store) FileHash(path string) (string, bool, error) {
	var hash string
	err := s.db.QueryRow(`SELECT file_hash FROM files WHERE file_path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

// WriteRecord replaces the stored record for one file atomically.
func (s *Store) WriteRecord(record *pipeline.FileRecord, hash string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result := record.Result
	unsupported := 0
	if record.Unsupported {
		unsupported = 1
	}

	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO files
		 (file_path, language, file_hash, quality, strategy, backend, error, token_estimate, unsupported, extracted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Path, string(record.Language), hash,
		string(result.Quality), string(result.Strategy), result.Backend,
		result.Error, record.TokenEstimate, unsupported,
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("failed to write file %s: %w", record.Path, err)
	}

	// INSERT OR REPLACE does not cascade on SQLite, so clear children by hand.
	if _, err := tx.Exec(`DELETE FROM declarations WHERE file_path = ?`, record.Path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM imports WHERE file_path = ?`, record.Path); err != nil {
		return err
	}

	if err := insertDeclarations(tx, record.Path, "", result.Declarations); err != nil {
		return err
	}
	for _, imp := range result.Imports {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO imports (file_path, import) VALUES (?, ?)`,
			record.Path, imp,
		); err != nil {
			return fmt.Errorf("failed to write import for %s: %w", record.Path, err)
		}
	}

	return tx.Commit()
}

func insertDeclarations(tx *sql.Tx, path, parent string, decls []extraction.Declaration) error {
	for _, d := range decls {
		if _, err := tx.Exec(
			`INSERT INTO declarations
			 (file_path, name, kind, start_line, end_line, docstring, signature, modifiers, parent)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			path, d.Name, string(d.Kind), d.StartLine, d.EndLine,
			d.Docstring, d.Signature, strings.Join(d.Modifiers, ","), parent,
		); err != nil {
			return fmt.Errorf("failed to write declaration %s in %s: %w", d.Name, path, err)
		}
		if err := insertDeclarations(tx, path, d.Name, d.Children); err != nil {
			return err
		}
	}
	return nil
}

// StoredDeclaration is one declaration row joined with its file.
type StoredDeclaration struct {
	FilePath  string
	Language  string
	Name      string
	Kind      string
	StartLine int
	EndLine   int
	Docstring string
	Signature string
	Parent    string
}

// ListDeclarations returns every stored declaration, ordered by file then
// source location.
func (s *Store) ListDeclarations() ([]StoredDeclaration, error) {
	rows, err := s.db.Query(
		`SELECT d.file_path, f.language, d.name, d.kind, d.start_line, d.end_line,
		        d.docstring, d.signature, d.parent
		 FROM declarations d JOIN files f ON f.file_path = d.file_path
		 ORDER BY d.file_path, d.start_line, d.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredDeclaration
	for rows.Next() {
		var d StoredDeclaration
		if err := rows.Scan(&d.FilePath, &d.Language, &d.Name, &d.Kind,
			&d.StartLine, &d.EndLine, &d.Docstring, &d.Signature, &d.Parent); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListImports returns file → imports for every stored file.
func (s *Store) ListImports() (map[string][]string, error) {
	rows, err := s.db.Query(`SELECT file_path, import FROM imports ORDER BY file_path, import`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var path, imp string
		if err := rows.Scan(&path, &imp); err != nil {
			return nil, err
		}
		out[path] = append(out[path], imp)
	}
	return out, rows.Err()
}

// FileSummary is one file row without its declarations.
type FileSummary struct {
	Path          string
	Language      string
	Quality       string
	Strategy      string
	Backend       string
	Error         string
	TokenEstimate int
	Unsupported   bool
}

// ListFiles returns summaries of every stored file.
func (s *Store) ListFiles() ([]FileSummary, error) {
	rows, err := s.db.Query(
		`SELECT file_path, language, quality, strategy, backend, error, token_estimate, unsupported
		 FROM files ORDER BY file_path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FileSummary
	for rows.Next() {
		var f FileSummary
		var unsupported int
		if err := rows.Scan(&f.Path, &f.Language, &f.Quality, &f.Strategy,
			&f.Backend, &f.Error, &f.TokenEstimate, &unsupported); err != nil {
			return nil, err
		}
		f.Unsupported = unsupported != 0
		out = append(out, f)
	}
	return out, rows.Err()
}
