package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzpsarthak13/mssqlvec/internal/core/coretest"
)

func scanOne(t *testing.T, rows *coretest.FakeRows, vectorCols map[string]bool) *Row {
	t.Helper()
	require.True(t, rows.Next())
	row, err := Scan(rows, vectorCols)
	require.NoError(t, err)
	return row
}

func TestScan(t *testing.T) {
	rows := &coretest.FakeRows{
		Cols: []string{"ID", "Name", "Embedding"},
		Rows: [][]interface{}{{int64(1), "Grand", "[1,2]"}},
	}
	row := scanOne(t, rows, map[string]bool{"Embedding": true})

	assert.Equal(t, []string{"ID", "Name", "Embedding"}, row.Names())

	id, ok := row.Get("ID")
	require.True(t, ok)
	assert.Equal(t, int64(1), id)

	vec, ok := row.Get("Embedding")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, vec)

	// second access hits the decode cache
	vec2, _ := row.Get("Embedding")
	assert.Equal(t, vec, vec2)
}

func TestGetNullAndUnknown(t *testing.T) {
	rows := &coretest.FakeRows{
		Cols: []string{"ID", "Name"},
		Rows: [][]interface{}{{int64(1), nil}},
	}
	row := scanOne(t, rows, nil)

	_, ok := row.Get("Name")
	assert.False(t, ok)
	_, ok = row.Get("Nope")
	assert.False(t, ok)
}

func TestVectorDecodeFallback(t *testing.T) {
	rows := &coretest.FakeRows{
		Cols: []string{"Embedding"},
		Rows: [][]interface{}{{[]byte("not json")}},
	}
	row := scanOne(t, rows, map[string]bool{"Embedding": true})

	// undecodable vector text comes back unchanged, as a string
	v, ok := row.Get("Embedding")
	require.True(t, ok)
	assert.Equal(t, "not json", v)
}

func TestMaterialize(t *testing.T) {
	rows := &coretest.FakeRows{
		Cols: []string{"ID", "Name", "Embedding"},
		Rows: [][]interface{}{{int64(1), nil, "[0.5]"}},
	}
	row := scanOne(t, rows, map[string]bool{"Embedding": true})

	m := row.Materialize()
	assert.Equal(t, int64(1), m["ID"])
	assert.NotContains(t, m, "Name")
	assert.Equal(t, []float32{0.5}, m["Embedding"])

	assert.Equal(t, m, row.Materialize())
}
