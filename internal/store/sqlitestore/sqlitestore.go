// Package sqlitestore persists the shopping list as a single JSON blob in an
// SQLite key/value table. It is the alternative to the plain JSON file when
// the list should live next to other local application data.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/idilsaglam/shoplist/internal/store"
)

// Key is the row the list is stored under.
const Key = "shoppingItems"

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

type Store struct {
	db   *sql.DB
	path string
}

// Open creates the database file and schema if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; the list is tiny
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Load(ctx context.Context) (store.Snapshot, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, Key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	var snap store.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", store.ErrCorrupt, s.path, err)
	}
	if snap == nil {
		snap = store.Snapshot{}
	}
	return snap, nil
}

func (s *Store) Save(ctx context.Context, snap store.Snapshot) error {
	if snap == nil {
		snap = store.Snapshot{}
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		Key, string(b))
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

// Clear deletes every row, not only the list.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}
