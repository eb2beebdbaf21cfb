package core

import (
	"context"
)

// Database defines the minimal contract the connector needs from a SQL
// Server client. Implementations wrap a concrete driver (see
// internal/database) or, in tests, a fake. All methods observe the
// supplied context before issuing network calls.
type Database interface {
	// Query executes a SELECT (or any row-returning statement) and
	// returns a forward-only cursor over the results.
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)

	// Exec executes a non-query statement and returns its result.
	Exec(ctx context.Context, query string, args ...interface{}) (Result, error)

	// BeginTx starts a new transaction.
	BeginTx(ctx context.Context) (Transaction, error)

	// Close closes the underlying connection pool.
	Close() error
}

// Rows is a forward-only result cursor.
type Rows interface {
	// Next advances to the next row, returning false when exhausted.
	Next() bool

	// Scan copies the current row's column values into dest.
	Scan(dest ...interface{}) error

	// Columns returns the column names in result order.
	Columns() ([]string, error)

	// Close releases the cursor.
	Close() error

	// Err returns any error encountered during iteration.
	Err() error
}

// Result reports the outcome of a non-query statement.
type Result interface {
	// RowsAffected returns the number of rows changed by the statement.
	RowsAffected() (int64, error)
}

// Transaction is a unit of work that either commits fully or rolls back.
type Transaction interface {
	// Query executes a row-returning statement inside the transaction.
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)

	// Exec executes a non-query statement inside the transaction.
	Exec(ctx context.Context, query string, args ...interface{}) (Result, error)

	// Commit makes all statements in the transaction durable.
	Commit() error

	// Rollback discards all statements in the transaction.
	Rollback() error
}
