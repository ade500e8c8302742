package supply

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument is matched by every MalformedDocumentError.
	ErrMalformedDocument = errors.New("supply: malformed document")
	// ErrInvalidValidityWindow is returned when a validity window does not
	// follow the "DD.MM.YYYY to DD.MM.YYYY" layout.
	ErrInvalidValidityWindow = errors.New("supply: invalid validity window")
)

// MalformedDocumentError reports a present key whose value has the wrong type.
// Field is empty when the document itself could not be decoded.
type MalformedDocumentError struct {
	Field string
	Want  string
	Got   string
	Err   error
}

// Error implements the error interface.
func (e *MalformedDocumentError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		if e.Err != nil {
			return fmt.Sprintf("supply: malformed document: %v", e.Err)
		}
		return "supply: malformed document"
	}
	return fmt.Sprintf("supply: malformed document: field %q must be %s, got %s", e.Field, e.Want, e.Got)
}

// Is lets errors.Is match ErrMalformedDocument.
func (e *MalformedDocumentError) Is(target error) bool {
	return target == ErrMalformedDocument
}

// Unwrap returns the decoding error, if any.
func (e *MalformedDocumentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func mismatch(field, want string, value any) *MalformedDocumentError {
	return &MalformedDocumentError{Field: field, Want: want, Got: describe(value)}
}

func describe(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "sequence"
	case map[string]any, Document:
		return "mapping"
	case json.Number, float32, float64:
		if _, ok := asInt(value); ok {
			return "integer"
		}
		return "number"
	default:
		if _, ok := asInt(value); ok {
			return "integer"
		}
		return fmt.Sprintf("%T", value)
	}
}
