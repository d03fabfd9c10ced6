package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dvh/internal/game/character"
	"github.com/cory-johannsen/dvh/internal/storage"
)

// SheetRepository stores each sheet as a JSONB document alongside the columns
// needed for listing.
//
// Obtain one from Pool.Sheets.
type SheetRepository struct {
	db   *pgxpool.Pool
	pool *Pool
}

// Ping implements storage.Pinger.
func (r *SheetRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Save upserts s. The original created_at survives replacement.
//
// Precondition: s.ID must be non-empty.
// Postcondition: s.CreatedAt and s.UpdatedAt hold the stored timestamps.
func (r *SheetRepository) Save(ctx context.Context, s *character.Sheet) error {
	if s.ID == "" {
		return storage.ErrMissingID
	}
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding sheet %s: %w", s.ID, err)
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO sheets (id, name, level, document)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, level = EXCLUDED.level,
		    document = EXCLUDED.document, updated_at = NOW()
		RETURNING created_at, updated_at`,
		s.ID, s.Name, s.Level, doc,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving sheet %s: %w", s.ID, err)
	}
	return nil
}

// Load returns the sheet with id.
//
// Postcondition: Returns the sheet or storage.ErrSheetNotFound.
func (r *SheetRepository) Load(ctx context.Context, id string) (*character.Sheet, error) {
	var doc []byte
	var s character.Sheet
	err := r.db.QueryRow(ctx, `
		SELECT document, created_at, updated_at FROM sheets WHERE id = $1`, id,
	).Scan(&doc, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", storage.ErrSheetNotFound, id)
		}
		return nil, fmt.Errorf("loading sheet %s: %w", id, err)
	}
	created, updated := s.CreatedAt, s.UpdatedAt
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("decoding sheet %s: %w", id, err)
	}
	s.CreatedAt, s.UpdatedAt = created, updated
	s.Normalize()
	return &s, nil
}

// Delete removes the sheet with id.
func (r *SheetRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sheets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting sheet %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", storage.ErrSheetNotFound, id)
	}
	return nil
}

// List returns every sheet summary, most recently updated first.
func (r *SheetRepository) List(ctx context.Context) ([]storage.SheetSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, level, updated_at FROM sheets ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing sheets: %w", err)
	}
	defer rows.Close()

	out := []storage.SheetSummary{}
	for rows.Next() {
		var sum storage.SheetSummary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Level, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning sheet summary: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sheets: %w", err)
	}
	return out, nil
}
