// Package exec chunks batch operations to respect the database's
// per-statement parameter limit and runs write chunks inside a single
// transaction so a batch either lands completely or not at all.
package exec

import (
	"context"
	"fmt"

	"github.com/rzpsarthak13/mssqlvec/internal/core"
)

const (
	// HardParameterLimit is the database's per-statement ceiling.
	HardParameterLimit = 2100

	// DefaultParameterBudget is the chunking budget used when callers do
	// not configure one.
	DefaultParameterBudget = 2000
)

// TxError wraps a failure inside a transaction. When the rollback after the
// failure also failed, RollbackErr carries that second error.
type TxError struct {
	Cause       error
	RollbackErr error
}

func (e *TxError) Error() string {
	if e.RollbackErr != nil {
		return fmt.Sprintf("transaction failed: %v (rollback also failed: %v)", e.Cause, e.RollbackErr)
	}
	return fmt.Sprintf("transaction failed: %v", e.Cause)
}

func (e *TxError) Unwrap() error { return e.Cause }

// Orchestrator slices batches into chunks that stay within the parameter
// budget.
type Orchestrator struct {
	budget int
}

// NewOrchestrator returns an orchestrator with the given parameter budget.
// Non-positive budgets fall back to the default and anything at or above the
// hard limit is clamped below it.
func NewOrchestrator(budget int) *Orchestrator {
	if budget <= 0 {
		budget = DefaultParameterBudget
	}
	if budget >= HardParameterLimit {
		budget = HardParameterLimit - 1
	}
	return &Orchestrator{budget: budget}
}

// Budget returns the configured parameter budget.
func (o *Orchestrator) Budget() int { return o.budget }

// ChunkSize returns how many rows of paramsPerRow parameters fit in one
// statement. At least one row always fits so wide rows degrade to row-at-a-
// time execution instead of deadlocking.
func (o *Orchestrator) ChunkSize(paramsPerRow int) int {
	if paramsPerRow <= 0 {
		return o.budget
	}
	n := o.budget / paramsPerRow
	if n < 1 {
		return 1
	}
	return n
}

// ExecuteChunked runs a write over total rows in [start, end) chunks inside
// one transaction, committing only after every chunk succeeded. run receives
// the open transaction and the chunk bounds and returns how many rows it
// affected. An empty batch returns without opening a transaction.
func (o *Orchestrator) ExecuteChunked(ctx context.Context, db core.Database, total, paramsPerRow int,
	run func(tx core.Transaction, start, end int) (int, error)) (int, error) {

	if total == 0 {
		return 0, nil
	}
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	affected := 0
	chunk := o.ChunkSize(paramsPerRow)
	for start := 0; start < total; start += chunk {
		if err := ctx.Err(); err != nil {
			return 0, rollback(tx, err)
		}
		end := start + chunk
		if end > total {
			end = total
		}
		n, err := run(tx, start, end)
		if err != nil {
			return 0, rollback(tx, err)
		}
		affected += n
	}
	if err := tx.Commit(); err != nil {
		return 0, &TxError{Cause: fmt.Errorf("failed to commit transaction: %w", err)}
	}
	return affected, nil
}

// QueryChunked runs a read over total rows in [start, end) chunks, outside
// any transaction. An empty batch is a no-op.
func (o *Orchestrator) QueryChunked(ctx context.Context, total, paramsPerRow int,
	run func(start, end int) error) error {

	chunk := o.ChunkSize(paramsPerRow)
	for start := 0; start < total; start += chunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + chunk
		if end > total {
			end = total
		}
		if err := run(start, end); err != nil {
			return err
		}
	}
	return nil
}

func rollback(tx core.Transaction, cause error) error {
	if rbErr := tx.Rollback(); rbErr != nil {
		return &TxError{Cause: cause, RollbackErr: rbErr}
	}
	return &TxError{Cause: cause}
}
