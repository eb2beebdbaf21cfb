package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// TagName is the struct tag key read by FromType.
const TagName = "mssqlvec"

// Model is the validated, immutable description of a collection's schema.
// It is built once when a collection is opened and shared read-only across
// concurrent operations; property accessors are resolved at build time so
// mapping calls never repeat type introspection.
type Model struct {
	recordType reflect.Type
	key        KeyProperty
	data       []DataProperty
	vectors    []VectorProperty

	// fields maps model property names to struct field indices,
	// resolved once during Build.
	fields map[string]int
}

// Build validates def against recordType and returns the resulting Model.
// recordType must be a struct type (or pointer to one) with an exported
// field for every declared property. All validation happens here; no SQL is
// ever generated from an invalid model.
func Build(recordType reflect.Type, def Definition) (*Model, error) {
	if recordType == nil {
		return nil, &ValidationError{Reason: "record type is nil"}
	}
	if recordType.Kind() == reflect.Ptr {
		recordType = recordType.Elem()
	}
	if recordType.Kind() != reflect.Struct {
		return nil, &ValidationError{Reason: fmt.Sprintf("record type %s is not a struct", recordType)}
	}

	if def.Key.Name == "" {
		return nil, &ValidationError{Reason: "no key property defined"}
	}
	if !def.Key.Type.ValidKey() {
		return nil, &ValidationError{
			Property: def.Key.Name,
			Reason:   fmt.Sprintf("type %s is not allowed for a key property", def.Key.Type),
		}
	}

	m := &Model{
		recordType: recordType,
		key:        def.Key,
		data:       make([]DataProperty, len(def.Data)),
		vectors:    make([]VectorProperty, len(def.Vectors)),
		fields:     make(map[string]int, 1+len(def.Data)+len(def.Vectors)),
	}
	copy(m.data, def.Data)
	copy(m.vectors, def.Vectors)
	m.key.StorageName = def.Key.storage()

	for i := range m.data {
		p := &m.data[i]
		if !p.Type.ValidData() {
			return nil, &ValidationError{
				Property: p.Name,
				Reason:   fmt.Sprintf("type %s is not allowed for a data property", p.Type),
			}
		}
		p.StorageName = p.storage()
	}
	for i := range m.vectors {
		p := &m.vectors[i]
		if p.Dimensions <= 0 {
			return nil, &ValidationError{
				Property: p.Name,
				Reason:   "vector property must declare a positive dimension count",
			}
		}
		if p.Distance == "" {
			p.Distance = DefaultDistance
		}
		if !p.Distance.Valid() {
			return nil, &ValidationError{
				Property: p.Name,
				Reason:   fmt.Sprintf("distance function %q is not supported", p.Distance),
			}
		}
		p.StorageName = p.storage()
	}

	seen := make(map[string]string, 1+len(m.data)+len(m.vectors))
	check := func(property, storage string) error {
		if prev, ok := seen[storage]; ok {
			return &ValidationError{
				Property: property,
				Reason:   fmt.Sprintf("storage name %q already used by property %q", storage, prev),
			}
		}
		seen[storage] = property
		return nil
	}
	if err := check(m.key.Name, m.key.StorageName); err != nil {
		return nil, err
	}
	for _, p := range m.data {
		if err := check(p.Name, p.StorageName); err != nil {
			return nil, err
		}
	}
	for _, p := range m.vectors {
		if err := check(p.Name, p.StorageName); err != nil {
			return nil, err
		}
	}

	if err := m.resolveField(m.key.Name, m.key.Type.GoType()); err != nil {
		return nil, err
	}
	for _, p := range m.data {
		if err := m.resolveField(p.Name, p.Type.GoType()); err != nil {
			return nil, err
		}
	}
	for _, p := range m.vectors {
		if err := m.resolveField(p.Name, vectorType); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Model) resolveField(property string, want reflect.Type) error {
	field, ok := m.recordType.FieldByName(property)
	if !ok || !field.IsExported() {
		return &ValidationError{
			Property: property,
			Reason:   fmt.Sprintf("record type %s has no exported field %q", m.recordType, property),
		}
	}
	if field.Type != want {
		return &ValidationError{
			Property: property,
			Reason:   fmt.Sprintf("field has type %s, expected %s", field.Type, want),
		}
	}
	m.fields[property] = field.Index[0]
	return nil
}

// FromType derives a Definition from recordType's struct tags and builds a
// Model from it. A field participates when it carries a `mssqlvec` tag:
//
//	ID      int64     `mssqlvec:"key"`
//	Name    string    `mssqlvec:"data,indexed"`
//	Body    string    `mssqlvec:"data,name=body_text"`
//	Vector  []float32 `mssqlvec:"vector,dim=768,distance=cosine"`
//
// Untagged fields and fields tagged "-" are ignored. The semantic type is
// inferred from the Go field type.
func FromType(recordType reflect.Type) (*Model, error) {
	if recordType == nil {
		return nil, &ValidationError{Reason: "record type is nil"}
	}
	if recordType.Kind() == reflect.Ptr {
		recordType = recordType.Elem()
	}
	if recordType.Kind() != reflect.Struct {
		return nil, &ValidationError{Reason: fmt.Sprintf("record type %s is not a struct", recordType)}
	}

	var def Definition
	keySeen := false
	for i := 0; i < recordType.NumField(); i++ {
		field := recordType.Field(i)
		tag, ok := field.Tag.Lookup(TagName)
		if !ok || tag == "-" {
			continue
		}
		if !field.IsExported() {
			return nil, &ValidationError{
				Property: field.Name,
				Reason:   "tagged field is not exported",
			}
		}
		opts, err := parseTag(field.Name, tag)
		if err != nil {
			return nil, err
		}
		switch opts.role {
		case "key":
			if keySeen {
				return nil, &ValidationError{
					Property: field.Name,
					Reason:   "more than one key property defined",
				}
			}
			keySeen = true
			def.Key = KeyProperty{
				Name:        field.Name,
				StorageName: opts.storage,
				Type:        propertyTypeOf(field.Type),
			}
		case "data":
			def.Data = append(def.Data, DataProperty{
				Name:        field.Name,
				StorageName: opts.storage,
				Type:        propertyTypeOf(field.Type),
				Indexed:     opts.indexed,
			})
		case "vector":
			def.Vectors = append(def.Vectors, VectorProperty{
				Name:        field.Name,
				StorageName: opts.storage,
				Dimensions:  opts.dimensions,
				Distance:    opts.distance,
			})
		default:
			return nil, &ValidationError{
				Property: field.Name,
				Reason:   fmt.Sprintf("unknown property role %q in tag", opts.role),
			}
		}
	}
	return Build(recordType, def)
}

type tagOptions struct {
	role       string
	storage    string
	indexed    bool
	dimensions int
	distance   DistanceFunction
}

func parseTag(property, tag string) (tagOptions, error) {
	parts := strings.Split(tag, ",")
	opts := tagOptions{role: strings.TrimSpace(parts[0])}
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		switch {
		case part == "indexed":
			opts.indexed = true
		case strings.HasPrefix(part, "name="):
			opts.storage = strings.TrimPrefix(part, "name=")
		case strings.HasPrefix(part, "dim="):
			n, err := strconv.Atoi(strings.TrimPrefix(part, "dim="))
			if err != nil {
				return opts, &ValidationError{
					Property: property,
					Reason:   fmt.Sprintf("invalid dimension count %q in tag", strings.TrimPrefix(part, "dim=")),
				}
			}
			opts.dimensions = n
		case strings.HasPrefix(part, "distance="):
			d, err := ParseDistanceFunction(strings.TrimPrefix(part, "distance="))
			if err != nil {
				return opts, &ValidationError{Property: property, Reason: err.Error()}
			}
			opts.distance = d
		default:
			return opts, &ValidationError{
				Property: property,
				Reason:   fmt.Sprintf("unknown tag option %q", part),
			}
		}
	}
	return opts, nil
}

// RecordType returns the struct type records of this collection must have.
func (m *Model) RecordType() reflect.Type { return m.recordType }

// Key returns the key property.
func (m *Model) Key() KeyProperty { return m.key }

// Data returns the data properties. The returned slice must not be modified.
func (m *Model) Data() []DataProperty { return m.data }

// Vectors returns the vector properties. The returned slice must not be
// modified.
func (m *Model) Vectors() []VectorProperty { return m.vectors }

// PropertyCount returns the total number of properties, vectors included.
func (m *Model) PropertyCount() int {
	return 1 + len(m.data) + len(m.vectors)
}

// StorageNames returns the storage names of the key and data properties, in
// declaration order, followed by the vector storage names when
// includeVectors is true.
func (m *Model) StorageNames(includeVectors bool) []string {
	names := make([]string, 0, m.PropertyCount())
	names = append(names, m.key.StorageName)
	for _, p := range m.data {
		names = append(names, p.StorageName)
	}
	if includeVectors {
		for _, p := range m.vectors {
			names = append(names, p.StorageName)
		}
	}
	return names
}

// VectorStorageNames returns the set of vector column storage names.
func (m *Model) VectorStorageNames() map[string]bool {
	names := make(map[string]bool, len(m.vectors))
	for _, p := range m.vectors {
		names[p.StorageName] = true
	}
	return names
}

// Vector resolves a vector property by model or storage name.
func (m *Model) Vector(name string) (VectorProperty, bool) {
	for _, p := range m.vectors {
		if p.Name == name || p.StorageName == name {
			return p, true
		}
	}
	return VectorProperty{}, false
}

// DataProperty resolves a data property by model or storage name.
func (m *Model) DataProperty(name string) (DataProperty, bool) {
	for _, p := range m.data {
		if p.Name == name || p.StorageName == name {
			return p, true
		}
	}
	return DataProperty{}, false
}

// StorageName resolves a property's model or storage name to its storage
// name, searching key, data and vector properties.
func (m *Model) StorageName(name string) (string, bool) {
	if m.key.Name == name || m.key.StorageName == name {
		return m.key.StorageName, true
	}
	if p, ok := m.DataProperty(name); ok {
		return p.StorageName, true
	}
	if p, ok := m.Vector(name); ok {
		return p.StorageName, true
	}
	return "", false
}

// Get reads the named property's value from rec, which must be a value or
// pointer of the model's record type.
func (m *Model) Get(rec interface{}, property string) (interface{}, error) {
	idx, ok := m.fields[property]
	if !ok {
		return nil, fmt.Errorf("unknown property %q", property)
	}
	v := reflect.ValueOf(rec)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Type() != m.recordType {
		return nil, fmt.Errorf("record has type %s, expected %s", v.Type(), m.recordType)
	}
	return v.Field(idx).Interface(), nil
}

// NewRecord returns a pointer to a fresh zero record.
func (m *Model) NewRecord() interface{} {
	return reflect.New(m.recordType).Interface()
}

// Set writes value into the named property of recPtr, which must be a
// pointer to the model's record type. The value must already have the
// property's Go type.
func (m *Model) Set(recPtr interface{}, property string, value interface{}) error {
	idx, ok := m.fields[property]
	if !ok {
		return fmt.Errorf("unknown property %q", property)
	}
	v := reflect.ValueOf(recPtr)
	if v.Kind() != reflect.Ptr || v.Elem().Type() != m.recordType {
		return fmt.Errorf("record must be *%s", m.recordType)
	}
	field := v.Elem().Field(idx)
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Type() != field.Type() {
		return fmt.Errorf("property %q: cannot assign %T", property, value)
	}
	field.Set(rv)
	return nil
}
