// Package history keeps a SQLite ledger of written cover artifacts.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("history store closed")

// DefaultFileName is the ledger file created under the output base directory.
const DefaultFileName = "history.db"

// MaxRecent caps Recent.
const MaxRecent = 1000

// Entry is one written artifact.
type Entry struct {
	ID        int64
	CreatedAt time.Time
	Backend   string
	Template  string
	Color     string
	Title     string
	Source    string // markup source path, empty for inline requests
	Path      string
	Format    string
	Bytes     int64
	Width     int
	Height    int
}

// Store provides ledger operations.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	// One writer; concurrent batch workers serialize here.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates the artifacts table if it doesn't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS artifacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			backend TEXT NOT NULL,
			template TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			path TEXT NOT NULL,
			format TEXT NOT NULL,
			bytes INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_artifacts_created_at ON artifacts(created_at);
	`)
	return err
}

// Record appends e and returns its id. A zero CreatedAt is set to now.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (created_at, backend, template, color, title, source, path, format, bytes, width, height)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CreatedAt.UTC().Format(time.RFC3339Nano), e.Backend, e.Template, e.Color, e.Title,
		e.Source, e.Path, e.Format, e.Bytes, e.Width, e.Height,
	)
	if err != nil {
		return 0, s.wrap("record artifact", err)
	}
	return res.LastInsertId()
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	if n > MaxRecent {
		n = MaxRecent
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, backend, template, color, title, source, path, format, bytes, width, height
		FROM artifacts
		ORDER BY id DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, s.wrap("query artifacts", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
		)
		if err := rows.Scan(&e.ID, &created, &e.Backend, &e.Template, &e.Color, &e.Title,
			&e.Source, &e.Path, &e.Format, &e.Bytes, &e.Width, &e.Height); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of recorded artifacts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM artifacts").Scan(&n); err != nil {
		return 0, s.wrap("count artifacts", err)
	}
	return n, nil
}

func (s *Store) wrap(op string, err error) error {
	if errors.Is(err, sql.ErrConnDone) || err.Error() == "sql: database is closed" {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	return fmt.Errorf("%s: %w", op, err)
}
