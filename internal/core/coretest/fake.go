// Package coretest provides an in-memory core.Database fake that records
// every statement for assertion in tests.
package coretest

import (
	"context"
	"fmt"

	"github.com/rzpsarthak13/mssqlvec/internal/core"
)

// Call is one recorded statement execution.
type Call struct {
	Query string
	Args  []interface{}
	InTx  bool
}

// FakeDB implements core.Database. Result sets are served from the Results
// queue in FIFO order; statements beyond the queue get an empty result.
type FakeDB struct {
	Calls   []Call
	Results []*FakeRows

	QueryErr error
	ExecErr  error
	BeginErr error

	// ExecAffected is the RowsAffected value returned by Exec calls.
	ExecAffected int64

	Txs    []*FakeTx
	Closed bool
}

// NewFakeDB returns an empty fake.
func NewFakeDB() *FakeDB { return &FakeDB{} }

// QueueResult appends a result set with the given columns and rows.
func (f *FakeDB) QueueResult(columns []string, rows ...[]interface{}) {
	f.Results = append(f.Results, &FakeRows{Cols: columns, Rows: rows})
}

func (f *FakeDB) nextRows() *FakeRows {
	if len(f.Results) == 0 {
		return &FakeRows{}
	}
	rows := f.Results[0]
	f.Results = f.Results[1:]
	return rows
}

func (f *FakeDB) record(query string, args []interface{}, inTx bool) {
	f.Calls = append(f.Calls, Call{Query: query, Args: args, InTx: inTx})
}

func (f *FakeDB) Query(_ context.Context, query string, args ...interface{}) (core.Rows, error) {
	f.record(query, args, false)
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}
	return f.nextRows(), nil
}

func (f *FakeDB) Exec(_ context.Context, query string, args ...interface{}) (core.Result, error) {
	f.record(query, args, false)
	if f.ExecErr != nil {
		return nil, f.ExecErr
	}
	return FakeResult{Affected: f.ExecAffected}, nil
}

func (f *FakeDB) BeginTx(context.Context) (core.Transaction, error) {
	if f.BeginErr != nil {
		return nil, f.BeginErr
	}
	tx := &FakeTx{db: f}
	f.Txs = append(f.Txs, tx)
	return tx, nil
}

func (f *FakeDB) Close() error {
	f.Closed = true
	return nil
}

// FakeTx implements core.Transaction, delegating statements to the parent
// fake with the transaction flag set.
type FakeTx struct {
	db *FakeDB

	QueryErr error
	ExecErr  error

	Committed  bool
	RolledBack bool
}

func (t *FakeTx) Query(_ context.Context, query string, args ...interface{}) (core.Rows, error) {
	t.db.record(query, args, true)
	if t.QueryErr != nil {
		return nil, t.QueryErr
	}
	return t.db.nextRows(), nil
}

func (t *FakeTx) Exec(_ context.Context, query string, args ...interface{}) (core.Result, error) {
	t.db.record(query, args, true)
	if t.ExecErr != nil {
		return nil, t.ExecErr
	}
	return FakeResult{Affected: t.db.ExecAffected}, nil
}

func (t *FakeTx) Commit() error {
	t.Committed = true
	return nil
}

func (t *FakeTx) Rollback() error {
	t.RolledBack = true
	return nil
}

// FakeResult implements core.Result with a fixed affected-row count.
type FakeResult struct {
	Affected int64
}

func (r FakeResult) RowsAffected() (int64, error) { return r.Affected, nil }

// FakeRows implements core.Rows over in-memory values.
type FakeRows struct {
	Cols []string
	Rows [][]interface{}

	cursor int
	Closed bool
	ErrVal error
}

func (r *FakeRows) Next() bool {
	if r.cursor >= len(r.Rows) {
		return false
	}
	r.cursor++
	return true
}

func (r *FakeRows) Scan(dest ...interface{}) error {
	if r.cursor == 0 || r.cursor > len(r.Rows) {
		return fmt.Errorf("scan called without next")
	}
	row := r.Rows[r.cursor-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan expected %d destinations, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		switch target := d.(type) {
		case *interface{}:
			*target = row[i]
		case *string:
			s, ok := row[i].(string)
			if !ok {
				return fmt.Errorf("column %d is %T, not string", i, row[i])
			}
			*target = s
		case *int64:
			n, ok := row[i].(int64)
			if !ok {
				return fmt.Errorf("column %d is %T, not int64", i, row[i])
			}
			*target = n
		default:
			return fmt.Errorf("unsupported scan destination %T", d)
		}
	}
	return nil
}

func (r *FakeRows) Columns() ([]string, error) {
	return r.Cols, nil
}

func (r *FakeRows) Close() error {
	r.Closed = true
	return nil
}

func (r *FakeRows) Err() error { return r.ErrVal }
