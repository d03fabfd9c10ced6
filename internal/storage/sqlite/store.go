// Package sqlite provides a single-file SQLite sheet store.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/dvh/internal/game/character"
	"github.com/cory-johannsen/dvh/internal/storage"
)

//go:embed schema.sql
var schema string

// Store persists sheets in SQLite as JSON documents.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens or creates the database at path and ensures the schema exists.
// The path ":memory:" opens a private in-memory database.
//
// Postcondition: Returns an open Store or a non-nil error.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps an in-memory database alive across calls.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping implements storage.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Save implements storage.SheetStore.
func (s *Store) Save(ctx context.Context, sh *character.Sheet) error {
	if sh.ID == "" {
		return storage.ErrMissingID
	}
	now := s.now().UTC()
	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = now
	}
	sh.UpdatedAt = now
	doc, err := json.Marshal(sh)
	if err != nil {
		return fmt.Errorf("encode sheet %s: %w", sh.ID, err)
	}

	var created int64
	err = s.sqlDB.QueryRowContext(ctx,
		`INSERT INTO sheets (id, name, level, document, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   level = excluded.level,
		   document = excluded.document,
		   updated_at = excluded.updated_at
		 RETURNING created_at`,
		sh.ID, sh.Name, sh.Level, string(doc), toMillis(sh.CreatedAt), toMillis(now),
	).Scan(&created)
	if err != nil {
		return fmt.Errorf("save sheet %s: %w", sh.ID, err)
	}
	sh.CreatedAt = fromMillis(created)
	sh.UpdatedAt = fromMillis(toMillis(now))
	return nil
}

// Load implements storage.SheetStore.
func (s *Store) Load(ctx context.Context, id string) (*character.Sheet, error) {
	var doc string
	var created, updated int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT document, created_at, updated_at FROM sheets WHERE id = ?`, id,
	).Scan(&doc, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", storage.ErrSheetNotFound, id)
		}
		return nil, fmt.Errorf("load sheet %s: %w", id, err)
	}
	var sh character.Sheet
	if err := json.Unmarshal([]byte(doc), &sh); err != nil {
		return nil, fmt.Errorf("decode sheet %s: %w", id, err)
	}
	sh.CreatedAt = fromMillis(created)
	sh.UpdatedAt = fromMillis(updated)
	sh.Normalize()
	return &sh, nil
}

// Delete implements storage.SheetStore.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sheets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sheet %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sheet %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrSheetNotFound, id)
	}
	return nil
}

// List implements storage.SheetStore.
func (s *Store) List(ctx context.Context) ([]storage.SheetSummary, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, level, updated_at FROM sheets ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	defer rows.Close()

	out := []storage.SheetSummary{}
	for rows.Next() {
		var sum storage.SheetSummary
		var updated int64
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Level, &updated); err != nil {
			return nil, fmt.Errorf("scan sheet summary: %w", err)
		}
		sum.UpdatedAt = fromMillis(updated)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sheets: %w", err)
	}
	return out, nil
}
