// Package store persists the corpus table in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/hyperifyio/sentlen/internal/corpus"
	"github.com/hyperifyio/sentlen/internal/store/migrations"
	"github.com/hyperifyio/sentlen/internal/table"
)

// Store is a SQLite-backed metric table.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and applies pending migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) migrate(fsys fs.FS) error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}
	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var up []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			up = append(up, e.Name())
		}
	}
	sort.Strings(up)
	for _, name := range up {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// Save replaces the stored records with the contents of t in one transaction.
func (s *Store) Save(ctx context.Context, t *table.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM metric_records"); err != nil {
		return fmt.Errorf("clearing records: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO metric_records (id, author, title, year, tokens, sentences)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range t.Records() {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Author, r.Title, r.Year, r.Tokens, r.Sentences); err != nil {
			return fmt.Errorf("inserting %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load reads all stored records into a new table.
func (s *Store) Load(ctx context.Context) (*table.Table, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, author, title, year, tokens, sentences FROM metric_records ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	t := table.New()
	for rows.Next() {
		var (
			id, author, title       string
			year, tokens, sentences int
		)
		if err := rows.Scan(&id, &author, &title, &year, &tokens, &sentences); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r, err := corpus.NewMetricRecord(id, author, title, year, corpus.Counts{Tokens: tokens, Sentences: sentences})
		if err != nil {
			return nil, err
		}
		t.Insert(r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return t, nil
}

// InWindow returns the records whose year lies in w, ordered by identifier.
func (s *Store) InWindow(ctx context.Context, w corpus.TimeWindow) ([]corpus.MetricRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author, title, year, tokens, sentences FROM metric_records
		WHERE year BETWEEN ? AND ? ORDER BY id`, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("querying window %s: %w", w, err)
	}
	defer rows.Close()
	var out []corpus.MetricRecord
	for rows.Next() {
		var r corpus.MetricRecord
		if err := rows.Scan(&r.ID, &r.Author, &r.Title, &r.Year, &r.Tokens, &r.Sentences); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
