package record

import (
	"encoding/json"
	"fmt"
)

// EncodeVector serializes an embedding to the JSON array text the database
// accepts for vector columns.
func EncodeVector(vector []float32) (string, error) {
	data, err := json.Marshal(vector)
	if err != nil {
		return "", fmt.Errorf("failed to encode vector: %w", err)
	}
	return string(data), nil
}

// DecodeVector parses a vector column value back into an embedding. The
// driver may hand the value over as string or raw bytes. A non-positive
// dimension count skips the length check.
func DecodeVector(value interface{}, dimensions int) ([]float32, error) {
	var data []byte
	switch v := value.(type) {
	case []float32:
		if dimensions > 0 && len(v) != dimensions {
			return nil, fmt.Errorf("vector has %d dimensions, expected %d", len(v), dimensions)
		}
		return v, nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return nil, fmt.Errorf("cannot decode vector from %T", value)
	}
	var vector []float32
	if err := json.Unmarshal(data, &vector); err != nil {
		return nil, fmt.Errorf("failed to decode vector: %w", err)
	}
	if dimensions > 0 && len(vector) != dimensions {
		return nil, fmt.Errorf("vector has %d dimensions, expected %d", len(vector), dimensions)
	}
	return vector, nil
}
