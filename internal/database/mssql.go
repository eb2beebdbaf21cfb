package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/rzpsarthak13/mssqlvec/internal/core"
)

// MSSQLDatabase implements the core.Database interface using SQL Server.
type MSSQLDatabase struct {
	db     *sql.DB
	closed bool
}

// NewMSSQLDatabase opens a connection pool for dsn, applies the pool
// settings and verifies connectivity with a ping.
func NewMSSQLDatabase(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime, connectionTimeout time.Duration) (*MSSQLDatabase, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MSSQLDatabase{
		db:     db,
		closed: false,
	}, nil
}

// WrapDB adapts an existing *sql.DB. The caller keeps ownership of the
// connection pool; Close becomes a no-op on the underlying pool.
func WrapDB(db *sql.DB) *MSSQLDatabase {
	return &MSSQLDatabase{db: db}
}

// Query executes a SELECT query and returns rows.
func (m *MSSQLDatabase) Query(ctx context.Context, query string, args ...interface{}) (core.Rows, error) {
	if m.closed {
		return nil, fmt.Errorf("database is closed")
	}
	log.Printf("[MSSQL] Executing query (%d params): %s", len(args), query)
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("[MSSQL] ERROR: Query failed: %v", err)
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &mssqlRows{rows: rows}, nil
}

// Exec executes a non-query statement and returns a result.
func (m *MSSQLDatabase) Exec(ctx context.Context, query string, args ...interface{}) (core.Result, error) {
	if m.closed {
		return nil, fmt.Errorf("database is closed")
	}
	log.Printf("[MSSQL] Executing statement (%d params): %s", len(args), query)
	result, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Printf("[MSSQL] ERROR: Exec failed: %v", err)
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	log.Printf("[MSSQL] Statement executed successfully (rows affected: %d)", rowsAffected)
	return &mssqlResult{result: result}, nil
}

// BeginTx starts a new transaction.
func (m *MSSQLDatabase) BeginTx(ctx context.Context) (core.Transaction, error) {
	if m.closed {
		return nil, fmt.Errorf("database is closed")
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &mssqlTransaction{tx: tx}, nil
}

// Close closes the database connection.
func (m *MSSQLDatabase) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return m.db.Close()
}

// mssqlRows wraps sql.Rows to implement core.Rows.
type mssqlRows struct {
	rows *sql.Rows
}

func (r *mssqlRows) Next() bool {
	return r.rows.Next()
}

func (r *mssqlRows) Scan(dest ...interface{}) error {
	return r.rows.Scan(dest...)
}

func (r *mssqlRows) Columns() ([]string, error) {
	return r.rows.Columns()
}

func (r *mssqlRows) Close() error {
	return r.rows.Close()
}

func (r *mssqlRows) Err() error {
	return r.rows.Err()
}

// mssqlResult wraps sql.Result to implement core.Result.
type mssqlResult struct {
	result sql.Result
}

func (r *mssqlResult) RowsAffected() (int64, error) {
	return r.result.RowsAffected()
}

// mssqlTransaction wraps sql.Tx to implement core.Transaction.
type mssqlTransaction struct {
	tx *sql.Tx
}

func (t *mssqlTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *mssqlTransaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *mssqlTransaction) Query(ctx context.Context, query string, args ...interface{}) (core.Rows, error) {
	log.Printf("[MSSQL] Executing query in transaction (%d params): %s", len(args), query)
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &mssqlRows{rows: rows}, nil
}

func (t *mssqlTransaction) Exec(ctx context.Context, query string, args ...interface{}) (core.Result, error) {
	log.Printf("[MSSQL] Executing statement in transaction (%d params): %s", len(args), query)
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &mssqlResult{result: result}, nil
}
