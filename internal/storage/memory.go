package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cory-johannsen/dvh/internal/game/character"
)

// MemoryStore is a SheetStore held in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	sheets map[string]*character.Sheet
	now    func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sheets: make(map[string]*character.Sheet), now: time.Now}
}

// Save implements SheetStore.
func (m *MemoryStore) Save(_ context.Context, s *character.Sheet) error {
	if s.ID == "" {
		return ErrMissingID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	if prev, ok := m.sheets[s.ID]; ok {
		s.CreatedAt = prev.CreatedAt
	} else if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	m.sheets[s.ID] = s.Clone()
	return nil
}

// Load implements SheetStore.
func (m *MemoryStore) Load(_ context.Context, id string) (*character.Sheet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sheets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, id)
	}
	return s.Clone(), nil
}

// Delete implements SheetStore.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sheets[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, id)
	}
	delete(m.sheets, id)
	return nil
}

// List implements SheetStore.
func (m *MemoryStore) List(_ context.Context) ([]SheetSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SheetSummary, 0, len(m.sheets))
	for _, s := range m.sheets {
		out = append(out, SheetSummary{ID: s.ID, Name: s.Name, Level: s.Level, UpdatedAt: s.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// MemoryRollLog is a RollLog held in process memory.
type MemoryRollLog struct {
	mu      sync.Mutex
	limit   int
	entries map[string][]RollEntry
}

// NewMemoryRollLog returns a RollLog keeping at most limit entries per sheet.
//
// Precondition: limit > 0.
func NewMemoryRollLog(limit int) *MemoryRollLog {
	return &MemoryRollLog{limit: limit, entries: make(map[string][]RollEntry)}
}

// Append implements RollLog.
func (m *MemoryRollLog) Append(_ context.Context, sheetID string, e RollEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := append([]RollEntry{e}, m.entries[sheetID]...)
	if len(list) > m.limit {
		list = list[:m.limit]
	}
	m.entries[sheetID] = list
	return nil
}

// Recent implements RollLog.
func (m *MemoryRollLog) Recent(_ context.Context, sheetID string, n int) ([]RollEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.entries[sheetID]
	if n > 0 && n < len(list) {
		list = list[:n]
	}
	return append([]RollEntry(nil), list...), nil
}

// Clear implements RollLog.
func (m *MemoryRollLog) Clear(_ context.Context, sheetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sheetID)
	return nil
}
