package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dvh/internal/game/character"
	"github.com/cory-johannsen/dvh/internal/storage"
)

// Manager caches open sessions by sheet id. All methods are safe for
// concurrent use; each session carries its own lock.
type Manager struct {
	deps     Deps
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty Manager.
//
// Precondition: every field of deps must be non-nil.
func NewManager(deps Deps) *Manager {
	if deps.Catalog == nil || deps.Store == nil || deps.Rolls == nil || deps.Roller == nil || deps.Logger == nil {
		panic("session.NewManager: nil dependency")
	}
	return &Manager{deps: deps, sessions: make(map[string]*Session)}
}

// Create stores a new level 0 sheet named name and opens a session for it.
//
// Postcondition: the sheet has a fresh uuid and initialized pools.
func (m *Manager) Create(ctx context.Context, name string) (*Session, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", character.ErrInvalidChoice)
	}
	sheet := character.NewSheet(name)
	sheet.ID = uuid.NewString()
	sheet.Pools = sheet.Pools.Reconcile(sheet.Stats(m.deps.Catalog.Rules))
	if err := m.deps.Store.Save(ctx, sheet); err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	sess := newSession(sheet, m.deps)
	m.mu.Lock()
	m.sessions[sheet.ID] = sess
	m.mu.Unlock()
	m.deps.Logger.Info("sheet created", zap.String("sheet", sheet.ID), zap.String("name", name))
	return sess, nil
}

// Open returns the session for id, loading the sheet from the store on first use.
//
// Postcondition: returns storage.ErrSheetNotFound for unknown ids.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[id]; ok {
		return sess, nil
	}
	sheet, err := m.deps.Store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	sess := newSession(sheet, m.deps)
	m.sessions[id] = sess
	return sess, nil
}

// Close drops the cached session for id. The stored sheet is unaffected.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Ping reports whether the sheet store is reachable. Stores with nothing to
// probe are always healthy.
func (m *Manager) Ping(ctx context.Context) error {
	if p, ok := m.deps.Store.(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// List returns summaries of every stored sheet.
func (m *Manager) List(ctx context.Context) ([]storage.SheetSummary, error) {
	return m.deps.Store.List(ctx)
}

// Delete removes the sheet, its roll history and any open session. Callers
// still holding the session get storage.ErrSheetNotFound from it afterwards.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.sessions[id]
	if sess != nil {
		sess.mu.Lock()
		defer sess.mu.Unlock()
	}
	if err := m.deps.Store.Delete(ctx, id); err != nil {
		return err
	}
	if sess != nil {
		sess.closed = true
	}
	delete(m.sessions, id)
	if err := m.deps.Rolls.Clear(ctx, id); err != nil && !errors.Is(err, context.Canceled) {
		m.deps.Logger.Warn("clearing roll history", zap.String("sheet", id), zap.Error(err))
	}
	m.deps.Logger.Info("sheet deleted", zap.String("sheet", id))
	return nil
}
