package elemcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists cache entries in a single-file SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite initializes or connects to the cache database at path and
// applies migrations. Parent directories are created as needed.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) applyMigrations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS element_entries (
            url    TEXT PRIMARY KEY,
            record TEXT NOT NULL
        )`)
	if err != nil {
		return fmt.Errorf("create element_entries table: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, url string) (Entry, bool, error) {
	var record string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM element_entries WHERE url = ?`, url).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("query entry for %s: %w", url, err)
	}

	var entry Entry
	if err := json.Unmarshal([]byte(record), &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode entry for %s: %w", url, err)
	}
	return entry, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, entry Entry) error {
	record, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry for %s: %w", entry.URL, err)
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO element_entries (url, record) VALUES (?, ?)
        ON CONFLICT(url) DO UPDATE SET record = excluded.record`,
		entry.URL, string(record))
	if err != nil {
		return fmt.Errorf("persist entry for %s: %w", entry.URL, err)
	}
	return nil
}
