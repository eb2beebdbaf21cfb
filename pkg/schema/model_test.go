package schema

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hotel struct {
	ID          int64     `mssqlvec:"key"`
	Name        string    `mssqlvec:"data,indexed"`
	Rating      float64   `mssqlvec:"data"`
	Description string    `mssqlvec:"data,name=description_text"`
	Embedding   []float32 `mssqlvec:"vector,dim=4"`
	Internal    string
}

func TestFromType(t *testing.T) {
	model, err := FromType(reflect.TypeOf(hotel{}))
	require.NoError(t, err)

	assert.Equal(t, "ID", model.Key().Name)
	assert.Equal(t, "ID", model.Key().StorageName)
	assert.Equal(t, TypeInt64, model.Key().Type)

	require.Len(t, model.Data(), 3)
	assert.True(t, model.Data()[0].Indexed)
	assert.Equal(t, TypeString, model.Data()[0].Type)
	assert.Equal(t, TypeFloat64, model.Data()[1].Type)
	assert.Equal(t, "description_text", model.Data()[2].StorageName)
	assert.False(t, model.Data()[2].Indexed)

	require.Len(t, model.Vectors(), 1)
	assert.Equal(t, 4, model.Vectors()[0].Dimensions)
	assert.Equal(t, DistanceCosine, model.Vectors()[0].Distance)

	assert.Equal(t, 5, model.PropertyCount())
	assert.Equal(t, []string{"ID", "Name", "Rating", "description_text"}, model.StorageNames(false))
	assert.Equal(t, []string{"ID", "Name", "Rating", "description_text", "Embedding"}, model.StorageNames(true))
}

func TestFromTypePointerType(t *testing.T) {
	model, err := FromType(reflect.TypeOf(&hotel{}))
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(hotel{}), model.RecordType())
}

func TestFromTypeErrors(t *testing.T) {
	type twoKeys struct {
		A int64 `mssqlvec:"key"`
		B int64 `mssqlvec:"key"`
	}
	type badRole struct {
		A int64 `mssqlvec:"primary"`
	}
	type badDim struct {
		A int64     `mssqlvec:"key"`
		V []float32 `mssqlvec:"vector,dim=abc"`
	}
	type badOption struct {
		A int64 `mssqlvec:"key,autoincrement"`
	}

	tests := []struct {
		name       string
		recordType reflect.Type
	}{
		{"two keys", reflect.TypeOf(twoKeys{})},
		{"unknown role", reflect.TypeOf(badRole{})},
		{"bad dimension", reflect.TypeOf(badDim{})},
		{"unknown option", reflect.TypeOf(badOption{})},
		{"not a struct", reflect.TypeOf("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromType(tt.recordType)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
		})
	}
}

func TestBuildValidation(t *testing.T) {
	recordType := reflect.TypeOf(hotel{})
	valid := Definition{
		Key: KeyProperty{Name: "ID", Type: TypeInt64},
		Data: []DataProperty{
			{Name: "Name", Type: TypeString, Indexed: true},
			{Name: "Rating", Type: TypeFloat64},
		},
		Vectors: []VectorProperty{
			{Name: "Embedding", Dimensions: 4},
		},
	}

	t.Run("valid definition", func(t *testing.T) {
		model, err := Build(recordType, valid)
		require.NoError(t, err)
		assert.Equal(t, DistanceCosine, model.Vectors()[0].Distance)
	})

	tests := []struct {
		name   string
		mutate func(*Definition)
		reason string
	}{
		{
			name:   "no key",
			mutate: func(d *Definition) { d.Key = KeyProperty{} },
			reason: "no key property",
		},
		{
			name:   "invalid key type",
			mutate: func(d *Definition) { d.Key.Type = TypeFloat64 },
			reason: "not allowed for a key",
		},
		{
			name: "zero dimensions",
			mutate: func(d *Definition) {
				d.Vectors = []VectorProperty{{Name: "Embedding"}}
			},
			reason: "positive dimension count",
		},
		{
			name: "unknown distance",
			mutate: func(d *Definition) {
				d.Vectors = []VectorProperty{{Name: "Embedding", Dimensions: 4, Distance: "hamming"}}
			},
			reason: "not supported",
		},
		{
			name: "duplicate storage name",
			mutate: func(d *Definition) {
				d.Data = append(d.Data, DataProperty{Name: "Description", StorageName: "Name", Type: TypeString})
			},
			reason: "already used",
		},
		{
			name: "missing field",
			mutate: func(d *Definition) {
				d.Data = append(d.Data, DataProperty{Name: "Missing", Type: TypeString})
			},
			reason: "no exported field",
		},
		{
			name: "field type mismatch",
			mutate: func(d *Definition) {
				d.Data[1] = DataProperty{Name: "Rating", Type: TypeString}
			},
			reason: "expected string",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := valid
			def.Data = append([]DataProperty(nil), valid.Data...)
			def.Vectors = append([]VectorProperty(nil), valid.Vectors...)
			tt.mutate(&def)
			_, err := Build(recordType, def)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestModelAccessors(t *testing.T) {
	model, err := FromType(reflect.TypeOf(hotel{}))
	require.NoError(t, err)

	rec := &hotel{ID: 7, Name: "Grand", Rating: 4.5}
	id, err := model.Get(rec, "ID")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	name, err := model.Get(*rec, "Name")
	require.NoError(t, err)
	assert.Equal(t, "Grand", name)

	_, err = model.Get(rec, "Nope")
	assert.Error(t, err)

	fresh := model.NewRecord()
	require.NoError(t, model.Set(fresh, "Name", "Plaza"))
	require.NoError(t, model.Set(fresh, "Embedding", []float32{1, 2, 3, 4}))
	assert.Equal(t, "Plaza", fresh.(*hotel).Name)
	assert.Equal(t, []float32{1, 2, 3, 4}, fresh.(*hotel).Embedding)

	assert.Error(t, model.Set(fresh, "Name", 12))
	assert.Error(t, model.Set(*fresh.(*hotel), "Name", "x"))
}

func TestStorageNameLookup(t *testing.T) {
	model, err := FromType(reflect.TypeOf(hotel{}))
	require.NoError(t, err)

	storage, ok := model.StorageName("Description")
	require.True(t, ok)
	assert.Equal(t, "description_text", storage)

	storage, ok = model.StorageName("description_text")
	require.True(t, ok)
	assert.Equal(t, "description_text", storage)

	_, ok = model.StorageName("Nope")
	assert.False(t, ok)

	vp, ok := model.Vector("Embedding")
	require.True(t, ok)
	assert.Equal(t, 4, vp.Dimensions)
}
