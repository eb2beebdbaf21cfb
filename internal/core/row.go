package core

// StorageRow is an ordered mapping from storage column name to value. It is
// the interchange format between the record mapper (which produces it) and
// the SQL builders (which consume it). Iteration order is insertion order,
// which the builders rely on to align placeholders with values.
type StorageRow struct {
	names  []string
	values map[string]interface{}
}

// NewStorageRow creates an empty row with capacity for n columns.
func NewStorageRow(n int) *StorageRow {
	return &StorageRow{
		names:  make([]string, 0, n),
		values: make(map[string]interface{}, n),
	}
}

// Set stores a value under the given storage name. Setting an existing name
// overwrites the value but keeps its original position.
func (r *StorageRow) Set(name string, value interface{}) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Get returns the value stored under name. The second return reports
// whether the name is present at all; a present-but-nil value means SQL
// NULL.
func (r *StorageRow) Get(name string) (interface{}, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Names returns the storage names in insertion order. The returned slice
// must not be modified.
func (r *StorageRow) Names() []string {
	return r.names
}

// Len returns the number of columns in the row.
func (r *StorageRow) Len() int {
	return len(r.names)
}
