package schema

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyType is the semantic type of a key or data property. It determines
// both the Go field type a record must use and the SQL column type the
// command builder emits.
type PropertyType int

const (
	TypeInvalid PropertyType = iota
	TypeInt32
	TypeInt64
	TypeString
	TypeUUID
	TypeTime
	TypeBytes
	TypeBool
	TypeFloat32
	TypeFloat64
	TypeDecimal
)

// String returns the lowercase name of the type.
func (t PropertyType) String() string {
	switch t {
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeString:
		return "string"
	case TypeUUID:
		return "uuid"
	case TypeTime:
		return "time"
	case TypeBytes:
		return "bytes"
	case TypeBool:
		return "bool"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeDecimal:
		return "decimal"
	default:
		return fmt.Sprintf("invalid(%d)", t)
	}
}

// ValidKey reports whether the type may be used for a key property.
func (t PropertyType) ValidKey() bool {
	switch t {
	case TypeInt32, TypeInt64, TypeString, TypeUUID, TypeTime, TypeBytes:
		return true
	default:
		return false
	}
}

// ValidData reports whether the type may be used for a data property.
func (t PropertyType) ValidData() bool {
	switch t {
	case TypeInt32, TypeInt64, TypeString, TypeUUID, TypeTime, TypeBytes,
		TypeBool, TypeFloat32, TypeFloat64, TypeDecimal:
		return true
	default:
		return false
	}
}

var (
	uuidType    = reflect.TypeOf(uuid.UUID{})
	timeType    = reflect.TypeOf(time.Time{})
	bytesType   = reflect.TypeOf([]byte(nil))
	decimalType = reflect.TypeOf(decimal.Decimal{})
	vectorType  = reflect.TypeOf([]float32(nil))
)

// GoType returns the Go type a record field must have for this property
// type.
func (t PropertyType) GoType() reflect.Type {
	switch t {
	case TypeInt32:
		return reflect.TypeOf(int32(0))
	case TypeInt64:
		return reflect.TypeOf(int64(0))
	case TypeString:
		return reflect.TypeOf("")
	case TypeUUID:
		return uuidType
	case TypeTime:
		return timeType
	case TypeBytes:
		return bytesType
	case TypeBool:
		return reflect.TypeOf(false)
	case TypeFloat32:
		return reflect.TypeOf(float32(0))
	case TypeFloat64:
		return reflect.TypeOf(float64(0))
	case TypeDecimal:
		return decimalType
	default:
		return nil
	}
}

// propertyTypeOf maps a Go field type to its semantic property type.
// Returns TypeInvalid for unsupported field types.
func propertyTypeOf(t reflect.Type) PropertyType {
	switch t {
	case uuidType:
		return TypeUUID
	case timeType:
		return TypeTime
	case bytesType:
		return TypeBytes
	case decimalType:
		return TypeDecimal
	}
	switch t.Kind() {
	case reflect.Int32:
		return TypeInt32
	case reflect.Int64:
		return TypeInt64
	case reflect.String:
		return TypeString
	case reflect.Bool:
		return TypeBool
	case reflect.Float32:
		return TypeFloat32
	case reflect.Float64:
		return TypeFloat64
	default:
		return TypeInvalid
	}
}
