// Package reader scans driver result sets into name-addressable rows,
// decoding vector columns lazily on first access.
package reader

import (
	"fmt"

	"github.com/rzpsarthak13/mssqlvec/internal/core"
	"github.com/rzpsarthak13/mssqlvec/internal/record"
)

// Row is one scanned result row. Get addresses columns by name; vector
// columns come back as []float32, decoded on first access and cached.
type Row struct {
	names        []string
	index        map[string]int
	values       []interface{}
	vectorCols   map[string]bool
	decoded      map[string][]float32
	materialized map[string]interface{}
}

// Scan reads the current row of rows. rows.Next must already have returned
// true. vectorColumns names the columns holding serialized embeddings.
func Scan(rows core.Rows, vectorColumns map[string]bool) (*Row, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	values := make([]interface{}, len(names))
	targets := make([]interface{}, len(names))
	for i := range values {
		targets[i] = &values[i]
	}
	if err := rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	return &Row{
		names:      names,
		index:      index,
		values:     values,
		vectorCols: vectorColumns,
	}, nil
}

// Names returns the result column names in select order.
func (r *Row) Names() []string { return r.names }

// Get returns the named column's value. NULL columns and unknown names
// return false. Vector columns are decoded to []float32; a value that fails
// to decode is returned unchanged as text.
func (r *Row) Get(name string) (interface{}, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	value := r.values[i]
	if value == nil {
		return nil, false
	}
	if r.vectorCols[name] {
		return r.vector(name, value), true
	}
	return value, true
}

func (r *Row) vector(name string, value interface{}) interface{} {
	if cached, ok := r.decoded[name]; ok {
		return cached
	}
	vector, err := record.DecodeVector(value, 0)
	if err != nil {
		if b, ok := value.([]byte); ok {
			return string(b)
		}
		return value
	}
	if r.decoded == nil {
		r.decoded = make(map[string][]float32, len(r.vectorCols))
	}
	r.decoded[name] = vector
	return vector
}

// Materialize eagerly resolves every non-NULL column through Get and caches
// the result. Later calls return the same map.
func (r *Row) Materialize() map[string]interface{} {
	if r.materialized != nil {
		return r.materialized
	}
	m := make(map[string]interface{}, len(r.names))
	for _, name := range r.names {
		if value, ok := r.Get(name); ok {
			m[name] = value
		}
	}
	r.materialized = m
	return m
}
