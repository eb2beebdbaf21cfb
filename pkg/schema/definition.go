package schema

// KeyProperty describes the single key property of a collection.
type KeyProperty struct {
	// Name is the logical (model) name of the property.
	Name string

	// StorageName is the column name; defaults to Name when empty.
	StorageName string

	// Type is the semantic type; must be in the key allow-list.
	Type PropertyType
}

// DataProperty describes a non-key, non-vector property.
type DataProperty struct {
	// Name is the logical (model) name of the property.
	Name string

	// StorageName is the column name; defaults to Name when empty.
	StorageName string

	// Type is the semantic type; must be in the data allow-list.
	Type PropertyType

	// Indexed marks the column as frequently filtered; table creation
	// emits an index for it.
	Indexed bool
}

// VectorProperty describes a fixed-length float32 vector property.
type VectorProperty struct {
	// Name is the logical (model) name of the property.
	Name string

	// StorageName is the column name; defaults to Name when empty.
	StorageName string

	// Dimensions is the fixed vector length; must be positive.
	Dimensions int

	// Distance is the similarity metric; defaults to DefaultDistance.
	Distance DistanceFunction
}

// Definition is the caller-supplied description of a collection's
// properties, validated into an immutable Model by Build.
type Definition struct {
	Key     KeyProperty
	Data    []DataProperty
	Vectors []VectorProperty
}

func (p KeyProperty) storage() string {
	if p.StorageName != "" {
		return p.StorageName
	}
	return p.Name
}

func (p DataProperty) storage() string {
	if p.StorageName != "" {
		return p.StorageName
	}
	return p.Name
}

func (p VectorProperty) storage() string {
	if p.StorageName != "" {
		return p.StorageName
	}
	return p.Name
}
