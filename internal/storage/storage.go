// Package storage defines the sheet persistence and roll history contracts and
// their in-memory implementations.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cory-johannsen/dvh/internal/game/character"
)

var (
	// ErrSheetNotFound is returned when a sheet lookup yields no results.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrMissingID is returned when saving a sheet without an ID.
	ErrMissingID = errors.New("sheet id must not be empty")
)

// SheetSummary is the listing view of a stored sheet.
type SheetSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Level     int       `json:"level"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pinger is implemented by stores that can report whether their backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SheetStore persists whole sheets keyed by ID.
type SheetStore interface {
	// Save inserts or replaces s and sets its timestamps.
	//
	// Precondition: s.ID must be non-empty.
	Save(ctx context.Context, s *character.Sheet) error
	// Load returns the sheet with id or ErrSheetNotFound.
	Load(ctx context.Context, id string) (*character.Sheet, error)
	// Delete removes the sheet with id or returns ErrSheetNotFound.
	Delete(ctx context.Context, id string) error
	// List returns every stored sheet, most recently updated first.
	List(ctx context.Context) ([]SheetSummary, error)
}

// RollEntry records one dice action made for a sheet.
type RollEntry struct {
	Kind   string    `json:"kind"`
	Label  string    `json:"label"`
	Rolls  []int     `json:"rolls"`
	Result int       `json:"result"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// RollLog keeps a bounded, most-recent-first roll history per sheet.
type RollLog interface {
	Append(ctx context.Context, sheetID string, e RollEntry) error
	Recent(ctx context.Context, sheetID string, n int) ([]RollEntry, error)
	Clear(ctx context.Context, sheetID string) error
}
