package sqlgen

import (
	"fmt"

	"github.com/rzpsarthak13/mssqlvec/pkg/schema"
)

// columnType maps a semantic property type to its column type. Key columns
// of unbounded types get a bounded variant so they can carry a primary key
// index.
func columnType(t schema.PropertyType, isKey bool) (string, error) {
	switch t {
	case schema.TypeInt32:
		return "INT", nil
	case schema.TypeInt64:
		return "BIGINT", nil
	case schema.TypeString:
		if isKey {
			return "NVARCHAR(255)", nil
		}
		return "NVARCHAR(MAX)", nil
	case schema.TypeUUID:
		return "UNIQUEIDENTIFIER", nil
	case schema.TypeTime:
		return "DATETIME2", nil
	case schema.TypeBytes:
		if isKey {
			return "VARBINARY(255)", nil
		}
		return "VARBINARY(MAX)", nil
	case schema.TypeBool:
		return "BIT", nil
	case schema.TypeFloat32:
		return "REAL", nil
	case schema.TypeFloat64:
		return "FLOAT", nil
	case schema.TypeDecimal:
		return "DECIMAL(38,18)", nil
	default:
		return "", fmt.Errorf("no column type for property type %s", t)
	}
}

// vectorColumnType renders the column type of a vector property.
func vectorColumnType(dimensions int) string {
	return fmt.Sprintf("VECTOR(%d)", dimensions)
}
