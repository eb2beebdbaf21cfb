package exec

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/mssqlvec/internal/core"
	"github.com/rzpsarthak13/mssqlvec/internal/core/coretest"
)

func TestChunkSize(t *testing.T) {
	o := NewOrchestrator(2000)

	tests := []struct {
		paramsPerRow int
		want         int
	}{
		{4, 500},
		{1, 2000},
		{2000, 1},
		{3000, 1}, // wider than the budget still moves one row at a time
		{0, 2000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, o.ChunkSize(tt.paramsPerRow), "paramsPerRow=%d", tt.paramsPerRow)
	}
}

func TestNewOrchestratorClamps(t *testing.T) {
	assert.Equal(t, DefaultParameterBudget, NewOrchestrator(0).Budget())
	assert.Equal(t, DefaultParameterBudget, NewOrchestrator(-5).Budget())
	assert.Equal(t, HardParameterLimit-1, NewOrchestrator(5000).Budget())
	assert.Equal(t, 100, NewOrchestrator(100).Budget())
}

func TestExecuteChunked(t *testing.T) {
	db := coretest.NewFakeDB()
	o := NewOrchestrator(2000)

	// 5001 rows at 4 params each = 500 rows per chunk = 11 chunks
	var bounds [][2]int
	affected, err := o.ExecuteChunked(context.Background(), db, 5001, 4,
		func(tx core.Transaction, start, end int) (int, error) {
			bounds = append(bounds, [2]int{start, end})
			return end - start, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 5001, affected)
	require.Len(t, bounds, 11)
	assert.Equal(t, [2]int{0, 500}, bounds[0])
	assert.Equal(t, [2]int{5000, 5001}, bounds[10])

	require.Len(t, db.Txs, 1)
	assert.True(t, db.Txs[0].Committed)
	assert.False(t, db.Txs[0].RolledBack)
}

func TestExecuteChunkedEmptyBatch(t *testing.T) {
	db := coretest.NewFakeDB()
	o := NewOrchestrator(2000)

	affected, err := o.ExecuteChunked(context.Background(), db, 0, 4,
		func(core.Transaction, int, int) (int, error) {
			t.Fatal("run must not be called for an empty batch")
			return 0, nil
		})
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.Empty(t, db.Txs, "no transaction for an empty batch")
}

func TestExecuteChunkedRollsBackOnFailure(t *testing.T) {
	db := coretest.NewFakeDB()
	o := NewOrchestrator(10)

	calls := 0
	boom := errors.New("boom")
	_, err := o.ExecuteChunked(context.Background(), db, 30, 1,
		func(tx core.Transaction, start, end int) (int, error) {
			calls++
			if calls == 2 {
				return 0, boom
			}
			return end - start, nil
		})

	var txErr *TxError
	require.ErrorAs(t, err, &txErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls, "later chunks must not run after a failure")
	require.Len(t, db.Txs, 1)
	assert.True(t, db.Txs[0].RolledBack)
	assert.False(t, db.Txs[0].Committed)
}

func TestExecuteChunkedBeginFailure(t *testing.T) {
	db := coretest.NewFakeDB()
	db.BeginErr = fmt.Errorf("no connection")
	o := NewOrchestrator(10)

	_, err := o.ExecuteChunked(context.Background(), db, 1, 1,
		func(core.Transaction, int, int) (int, error) { return 1, nil })
	assert.Error(t, err)
}

func TestExecuteChunkedContextCancel(t *testing.T) {
	db := coretest.NewFakeDB()
	o := NewOrchestrator(10)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := o.ExecuteChunked(ctx, db, 30, 1,
		func(tx core.Transaction, start, end int) (int, error) {
			calls++
			cancel()
			return end - start, nil
		})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.True(t, db.Txs[0].RolledBack)
}

func TestQueryChunked(t *testing.T) {
	o := NewOrchestrator(4)

	var bounds [][2]int
	err := o.QueryChunked(context.Background(), 10, 2, func(start, end int) error {
		bounds = append(bounds, [2]int{start, end})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 2}, {2, 4}, {4, 6}, {6, 8}, {8, 10}}, bounds)

	require.NoError(t, o.QueryChunked(context.Background(), 0, 2, func(int, int) error {
		t.Fatal("run must not be called for an empty batch")
		return nil
	}))
}
