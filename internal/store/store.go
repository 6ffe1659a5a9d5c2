// Package store records contamination runs in DuckDB or SQLite.
// Each run keeps its grid likelihoods and labelled variants so results can be
// queried after the fact.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	_ "modernc.org/sqlite"
)

// Driver names registered by the imported database drivers.
const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"
)

// Store manages a database connection holding contamination runs.
type Store struct {
	db     *sql.DB
	path   string
	driver string
}

// DriverFor returns the driver used for path: SQLite for .sqlite and
// .sqlite3 files, DuckDB for everything else including the empty
// (in-memory) path.
func DriverFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".sqlite3":
		return DriverSQLite
	default:
		return DriverDuckDB
	}
}

// Open opens or creates a run database at the given path.
// Use an empty string for an in-memory DuckDB database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	driver := DriverFor(path)
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	s := &Store{db: db, path: path, driver: driver}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the name of the database driver in use.
func (s *Store) Driver() string {
	return s.driver
}

// Path returns the database path, empty for in-memory databases.
func (s *Store) Path() string {
	return s.path
}

// schema is shared by both drivers, so it sticks to types DuckDB and SQLite
// both accept. Times are stored as unix nanoseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id VARCHAR PRIMARY KEY,
		input_path VARCHAR,
		input_size BIGINT,
		input_mtime BIGINT,
		best_level DOUBLE,
		max_log_likelihood DOUBLE,
		variant_count BIGINT,
		is_empty BOOLEAN,
		created_at BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS likelihoods (
		run_id VARCHAR,
		idx BIGINT,
		level DOUBLE,
		log_likelihood DOUBLE,
		PRIMARY KEY (run_id, idx)
	)`,
	`CREATE TABLE IF NOT EXISTS variants (
		run_id VARCHAR,
		idx BIGINT,
		contig VARCHAR,
		position BIGINT,
		total_read_depth BIGINT,
		alt_depth BIGINT,
		variant_type VARCHAR,
		zygosity VARCHAR,
		contamination_label VARCHAR,
		PRIMARY KEY (run_id, idx)
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
