// Package sqlite stores slots as rows of a SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	getSlotQuery = `SELECT value FROM slots WHERE key = ?`
	setSlotQuery = `INSERT INTO slots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Slot returns the slot stored under key.
func (r *Repository) Slot(key string) *Slot {
	return &Slot{repo: r, key: key}
}

// Slot is one row of the slots table.
type Slot struct {
	repo *Repository
	key  string
}

func (s *Slot) Get(ctx context.Context) ([]byte, bool, error) {
	var value string
	err := s.repo.db.QueryRowContext(ctx, getSlotQuery, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get slot %q: %w", s.key, err)
	}
	return []byte(value), true, nil
}

func (s *Slot) Set(ctx context.Context, value []byte) error {
	if _, err := s.repo.db.ExecContext(ctx, setSlotQuery, s.key, string(value)); err != nil {
		return fmt.Errorf("set slot %q: %w", s.key, err)
	}

	slog.DebugContext(ctx, "Slot saved to SQLite",
		"key", s.key,
		"bytes", len(value))

	return nil
}
