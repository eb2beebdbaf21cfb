// Package mssqlvec is a vector store backed by SQL Server. A Store owns the
// connection; typed Collection values provide schema management, batched
// upserts, reads, deletes and nearest-neighbor search over one table each.
package mssqlvec

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rzpsarthak13/mssqlvec/internal/core"
	"github.com/rzpsarthak13/mssqlvec/internal/database"
	"github.com/rzpsarthak13/mssqlvec/internal/exec"
	"github.com/rzpsarthak13/mssqlvec/internal/sqlgen"
)

// Store is the top-level handle on a vector store database. It is safe for
// concurrent use.
type Store struct {
	db            core.Database
	defaultSchema string
	orchestrator  *exec.Orchestrator

	// managed is set when the store opened its own connection pool and is
	// therefore responsible for closing it.
	managed bool
}

// StoreOption customizes a Store built over an injected connection.
type StoreOption func(*Store)

// WithDefaultSchema sets the schema used for unqualified collection names.
func WithDefaultSchema(schemaName string) StoreOption {
	return func(s *Store) { s.defaultSchema = schemaName }
}

// WithParameterBudget sets the per-statement parameter budget for batch
// chunking.
func WithParameterBudget(budget int) StoreOption {
	return func(s *Store) { s.orchestrator = exec.NewOrchestrator(budget) }
}

// Open connects to the configured database and returns a store that owns
// the connection.
func Open(cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	db, err := database.NewMSSQLDatabase(cfg.DSN(),
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime,
		cfg.Database.ConnectionTimeout)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:            db,
		defaultSchema: cfg.Schema(),
		orchestrator:  exec.NewOrchestrator(cfg.ParameterBudget),
		managed:       true,
	}, nil
}

// OpenDB wraps an existing *sql.DB. The caller keeps ownership of the pool.
func OpenDB(db *sql.DB, opts ...StoreOption) *Store {
	return NewStore(database.WrapDB(db), opts...)
}

// NewStore builds a store over an injected database implementation. The
// caller keeps ownership of the connection.
func NewStore(db core.Database, opts ...StoreOption) *Store {
	s := &Store{
		db:            db,
		defaultSchema: "dbo",
		orchestrator:  exec.NewOrchestrator(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListCollections returns the qualified names of the base tables in the
// store's default schema.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	return s.ListCollectionsInSchema(ctx, s.defaultSchema)
}

// ListCollectionsInSchema returns the qualified names of the base tables in
// schemaName. An empty schemaName lists tables across all schemas.
func (s *Store) ListCollectionsInSchema(ctx context.Context, schemaName string) ([]string, error) {
	cmd := sqlgen.BuildListTables(schemaName)
	rows, err := s.db.Query(ctx, cmd.SQL(), cmd.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var tableSchema, tableName string
		if err := rows.Scan(&tableSchema, &tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, tableSchema+"."+tableName)
	}
	return names, rows.Err()
}

// Close releases the store's connection if the store opened it itself.
// Stores built over injected connections leave them untouched.
func (s *Store) Close() error {
	if !s.managed {
		return nil
	}
	return s.db.Close()
}
