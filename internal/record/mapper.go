// Package record converts between user record structs and the flat storage
// rows the database layer reads and writes.
package record

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rzpsarthak13/mssqlvec/internal/core"
	"github.com/rzpsarthak13/mssqlvec/pkg/schema"
)

// Getter is the read side of a row source. A false second return means the
// column is absent or NULL.
type Getter interface {
	Get(name string) (interface{}, bool)
}

// Mapper converts records of one collection's model to and from storage
// rows. A Mapper is stateless and safe for concurrent use.
type Mapper struct {
	model *schema.Model
}

// NewMapper returns a mapper for model.
func NewMapper(model *schema.Model) *Mapper {
	return &Mapper{model: model}
}

// ToStorage flattens rec into a storage row keyed by storage names. Vector
// values from overrides, keyed by model or storage name, take precedence
// over the record's own embedding fields and are length-checked against the
// declared dimensions. A nil embedding becomes a NULL column.
func (m *Mapper) ToStorage(rec interface{}, overrides map[string][]float32) (*core.StorageRow, error) {
	row := core.NewStorageRow(m.model.PropertyCount())

	key := m.model.Key()
	keyValue, err := m.model.Get(rec, key.Name)
	if err != nil {
		return nil, schema.NewMappingError(key.Name, keyValue, "failed to read key value", err)
	}
	row.Set(key.StorageName, toStorageValue(key.Type, keyValue))

	for _, p := range m.model.Data() {
		value, err := m.model.Get(rec, p.Name)
		if err != nil {
			return nil, schema.NewMappingError(p.Name, value, "failed to read data value", err)
		}
		row.Set(p.StorageName, toStorageValue(p.Type, value))
	}

	for _, p := range m.model.Vectors() {
		vector, err := m.vectorValue(rec, p, overrides)
		if err != nil {
			return nil, err
		}
		if vector == nil {
			row.Set(p.StorageName, nil)
			continue
		}
		encoded, err := EncodeVector(vector)
		if err != nil {
			return nil, schema.NewMappingError(p.Name, vector, "failed to encode vector", err)
		}
		row.Set(p.StorageName, encoded)
	}
	return row, nil
}

func (m *Mapper) vectorValue(rec interface{}, p schema.VectorProperty, overrides map[string][]float32) ([]float32, error) {
	vector, overridden := overrides[p.Name]
	if !overridden {
		vector, overridden = overrides[p.StorageName]
	}
	if !overridden {
		value, err := m.model.Get(rec, p.Name)
		if err != nil {
			return nil, schema.NewMappingError(p.Name, nil, "failed to read vector value", err)
		}
		vector = value.([]float32)
	}
	if vector == nil {
		return nil, nil
	}
	if len(vector) != p.Dimensions {
		return nil, schema.NewMappingError(p.Name, vector,
			fmt.Sprintf("vector has %d dimensions, expected %d", len(vector), p.Dimensions), nil)
	}
	return vector, nil
}

// FromStorage builds a fresh record from a row source. Columns that are
// absent or NULL leave the corresponding field at its zero value. The
// returned value is a pointer to the model's record type.
func (m *Mapper) FromStorage(row Getter, includeVectors bool) (interface{}, error) {
	rec := m.model.NewRecord()

	key := m.model.Key()
	if raw, ok := row.Get(key.StorageName); ok && raw != nil {
		value, err := fromStorageValue(key.Name, key.Type, raw)
		if err != nil {
			return nil, err
		}
		if err := m.model.Set(rec, key.Name, value); err != nil {
			return nil, schema.NewMappingError(key.Name, raw, "failed to assign key value", err)
		}
	}

	for _, p := range m.model.Data() {
		raw, ok := row.Get(p.StorageName)
		if !ok || raw == nil {
			continue
		}
		value, err := fromStorageValue(p.Name, p.Type, raw)
		if err != nil {
			return nil, err
		}
		if err := m.model.Set(rec, p.Name, value); err != nil {
			return nil, schema.NewMappingError(p.Name, raw, "failed to assign data value", err)
		}
	}

	if includeVectors {
		for _, p := range m.model.Vectors() {
			raw, ok := row.Get(p.StorageName)
			if !ok || raw == nil {
				continue
			}
			vector, err := DecodeVector(raw, p.Dimensions)
			if err != nil {
				return nil, schema.NewMappingError(p.Name, raw, "failed to decode vector", err)
			}
			if err := m.model.Set(rec, p.Name, vector); err != nil {
				return nil, schema.NewMappingError(p.Name, raw, "failed to assign vector value", err)
			}
		}
	}
	return rec, nil
}

// Key reads rec's key value and converts it to its storage representation.
func (m *Mapper) Key(rec interface{}) (interface{}, error) {
	key := m.model.Key()
	value, err := m.model.Get(rec, key.Name)
	if err != nil {
		return nil, schema.NewMappingError(key.Name, nil, "failed to read key value", err)
	}
	return toStorageValue(key.Type, value), nil
}

// KeyToStorage converts a caller-supplied key to its storage representation.
func (m *Mapper) KeyToStorage(key interface{}) interface{} {
	return toStorageValue(m.model.Key().Type, key)
}

// KeyFromStorage converts a key column value back to the record's key type.
func (m *Mapper) KeyFromStorage(raw interface{}) (interface{}, error) {
	key := m.model.Key()
	return fromStorageValue(key.Name, key.Type, raw)
}

// toStorageValue converts a record field value to a type the driver binds
// natively. Types the driver handles directly pass through unchanged.
func toStorageValue(t schema.PropertyType, value interface{}) interface{} {
	switch t {
	case schema.TypeUUID:
		if u, ok := value.(uuid.UUID); ok {
			return u.String()
		}
	case schema.TypeDecimal:
		if d, ok := value.(decimal.Decimal); ok {
			return d.String()
		}
	}
	return value
}

// fromStorageValue lifts a driver value to the record field type of a
// property. Drivers widen most scalars, so narrowing conversions and text
// parses happen here.
func fromStorageValue(property string, t schema.PropertyType, raw interface{}) (interface{}, error) {
	switch t {
	case schema.TypeInt32:
		switch v := raw.(type) {
		case int32:
			return v, nil
		case int64:
			return int32(v), nil
		}
	case schema.TypeInt64:
		switch v := raw.(type) {
		case int64:
			return v, nil
		case int32:
			return int64(v), nil
		}
	case schema.TypeString:
		switch v := raw.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		}
	case schema.TypeUUID:
		switch v := raw.(type) {
		case uuid.UUID:
			return v, nil
		case string:
			u, err := uuid.Parse(v)
			if err != nil {
				return nil, schema.NewMappingError(property, raw, "failed to parse UUID", err)
			}
			return u, nil
		case []byte:
			u, err := uuid.Parse(string(v))
			if err != nil {
				return nil, schema.NewMappingError(property, raw, "failed to parse UUID", err)
			}
			return u, nil
		}
	case schema.TypeTime:
		switch v := raw.(type) {
		case time.Time:
			return v, nil
		case string:
			ts, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return nil, schema.NewMappingError(property, raw, "failed to parse timestamp", err)
			}
			return ts, nil
		}
	case schema.TypeBytes:
		if v, ok := raw.([]byte); ok {
			return v, nil
		}
	case schema.TypeBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		}
	case schema.TypeFloat32:
		switch v := raw.(type) {
		case float32:
			return v, nil
		case float64:
			return float32(v), nil
		}
	case schema.TypeFloat64:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		}
	case schema.TypeDecimal:
		switch v := raw.(type) {
		case decimal.Decimal:
			return v, nil
		case string:
			d, err := decimal.NewFromString(v)
			if err != nil {
				return nil, schema.NewMappingError(property, raw, "failed to parse decimal", err)
			}
			return d, nil
		case []byte:
			d, err := decimal.NewFromString(string(v))
			if err != nil {
				return nil, schema.NewMappingError(property, raw, "failed to parse decimal", err)
			}
			return d, nil
		case float64:
			return decimal.NewFromFloat(v), nil
		}
	}
	return nil, schema.NewMappingError(property, raw,
		fmt.Sprintf("cannot convert %T to %s", raw, t), nil)
}
