// Package store persists life spheres, checklists and tasks in PostgreSQL
// (pgx or lib/pq) or, for local runs and tests, in SQLite.
//
// A Store owns one process-wide connection pool. Each repository call borrows
// a connection for a single statement and returns it before the call ends.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/config"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/core"
)

//go:embed schema/postgres.sql
var postgresSchema string

//go:embed schema/sqlite.sql
var sqliteSchema string

// Store implements the sphere, checklist and task repositories.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var (
	_ core.SphereRepository    = (*Store)(nil)
	_ core.ChecklistRepository = (*Store)(nil)
	_ core.TaskRepository      = (*Store)(nil)
)

// Open creates the connection pool described by cfg and verifies it with a
// ping bounded by cfg.ConnectTimeout.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	drv, err := resolveDriver(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("resolving database driver: %w", err)
	}

	db, err := sql.Open(drv.name, drv.dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	s := New(db, drv.dialect)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("pinging database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return s, nil
}

// New wraps an existing pool.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Dialect reports the SQL flavor of the underlying database.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// DB returns the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks that a connection can be established.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Stats returns pool statistics.
func (s *Store) Stats() sql.DBStats {
	return s.db.Stats()
}

// ApplySchema creates the tables and indexes if they do not exist. It is a
// bootstrap for empty databases, not a migration mechanism.
func (s *Store) ApplySchema(ctx context.Context) error {
	ddl := postgresSchema
	if s.dialect == DialectSQLite {
		ddl = sqliteSchema
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("applying %s schema: %w", s.dialect, classify(err))
	}
	return nil
}

// SchemaDDL returns the bundled schema for a dialect.
func SchemaDDL(d Dialect) string {
	if d == DialectSQLite {
		return sqliteSchema
	}
	return postgresSchema
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
}
