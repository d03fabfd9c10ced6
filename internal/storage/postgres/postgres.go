// Package postgres persists sheets in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dvh/internal/config"
)

// ApplicationName tags every connection in pg_stat_activity.
const ApplicationName = "dvh-sheetserver"

// pingTimeout bounds a health probe so a stalled database cannot hang a request.
const pingTimeout = 2 * time.Second

// Pool owns the pgx connection pool shared by the repositories.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database described by cfg and verifies it answers.
//
// Precondition: cfg must pass config validation for the postgres backend.
// Postcondition: Returns a connected Pool or a non-nil error; no connections
// are left open on error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	p := &Pool{pool: pool}
	if err := p.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return p, nil
}

// Ping checks that the database answers within a short timeout.
func (p *Pool) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Sheets returns a SheetRepository that shares this pool.
func (p *Pool) Sheets() *SheetRepository {
	return &SheetRepository{db: p.pool, pool: p}
}

// Close releases every connection. The pool and its repositories are unusable afterwards.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB exposes the raw pool for migrations and test fixtures.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
