package mssqlvec

import (
	"errors"
	"fmt"

	"github.com/rzpsarthak13/mssqlvec/internal/exec"
)

// ErrNotFound is returned by Get when no record has the requested key.
var ErrNotFound = errors.New("record not found")

// OperationError wraps a failed store operation with the operation name and
// the collection it ran against. Use errors.Is / errors.As to inspect the
// underlying cause.
type OperationError struct {
	Op         string
	Collection string
	cause      error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s on collection %q failed: %v", e.Op, e.Collection, e.cause)
}

func (e *OperationError) Unwrap() error { return e.cause }

// TransactionError reports a batch write whose transaction did not commit.
// The batch is guaranteed not to have been partially applied unless
// RollbackErr is set, in which case the rollback itself failed and the
// database state needs inspection.
type TransactionError struct {
	Op         string
	Collection string
	cause      error
	// RollbackErr is the error from the rollback attempt, if that failed
	// too.
	RollbackErr error
}

func (e *TransactionError) Error() string {
	if e.RollbackErr != nil {
		return fmt.Sprintf("%s on collection %q failed: %v (rollback also failed: %v)",
			e.Op, e.Collection, e.cause, e.RollbackErr)
	}
	return fmt.Sprintf("%s on collection %q failed: %v", e.Op, e.Collection, e.cause)
}

func (e *TransactionError) Unwrap() error { return e.cause }

// translateError maps internal failures onto the public error types.
func translateError(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var txErr *exec.TxError
	if errors.As(err, &txErr) {
		return &TransactionError{
			Op:          op,
			Collection:  collection,
			cause:       txErr.Cause,
			RollbackErr: txErr.RollbackErr,
		}
	}
	return &OperationError{Op: op, Collection: collection, cause: err}
}
