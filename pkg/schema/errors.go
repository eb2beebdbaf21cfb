package schema

import "fmt"

// ValidationError reports why a record type and definition cannot form a
// valid Model. It is returned from Build and FromType; a collection cannot
// be opened over an invalid model, so no SQL is ever generated from one.
type ValidationError struct {
	// Property is the model name of the offending property, when the
	// failure concerns a single property.
	Property string

	// Reason describes the failed validation rule.
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("invalid schema: property %q: %s", e.Property, e.Reason)
	}
	return fmt.Sprintf("invalid schema: %s", e.Reason)
}

// MappingError reports a value that could not be lifted to or from its
// declared property type.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type MappingError struct {
	// Property is the model name of the property being mapped.
	Property string

	// Value is the raw value that could not be mapped.
	Value interface{}

	// Reason describes the mismatch.
	Reason string

	cause error
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("cannot map property %q: %s (value %v)", e.Property, e.Reason, e.Value)
}

func (e *MappingError) Unwrap() error { return e.cause }

// NewMappingError builds a MappingError wrapping cause, which may be nil.
func NewMappingError(property string, value interface{}, reason string, cause error) *MappingError {
	return &MappingError{Property: property, Value: value, Reason: reason, cause: cause}
}
