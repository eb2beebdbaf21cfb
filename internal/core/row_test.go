package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageRow(t *testing.T) {
	row := NewStorageRow(3)
	row.Set("ID", int64(1))
	row.Set("Name", "Grand")
	row.Set("Embedding", nil)

	assert.Equal(t, []string{"ID", "Name", "Embedding"}, row.Names())
	assert.Equal(t, 3, row.Len())

	v, ok := row.Get("Name")
	require.True(t, ok)
	assert.Equal(t, "Grand", v)

	// present but NULL
	v, ok = row.Get("Embedding")
	require.True(t, ok)
	assert.Nil(t, v)

	_, ok = row.Get("Nope")
	assert.False(t, ok)
}

func TestStorageRowOverwriteKeepsPosition(t *testing.T) {
	row := NewStorageRow(2)
	row.Set("A", 1)
	row.Set("B", 2)
	row.Set("A", 3)

	assert.Equal(t, []string{"A", "B"}, row.Names())
	v, _ := row.Get("A")
	assert.Equal(t, 3, v)
}
