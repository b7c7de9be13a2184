package catalog

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyInput is returned when a record set has no rows to validate.
	ErrEmptyInput = errors.New("no records supplied")

	// ErrUnknownSection is returned for a section kind other than pregrado or postgrado.
	ErrUnknownSection = errors.New("unknown section kind")

	// ErrInvalidDocument is returned when a document is not a JSON object.
	ErrInvalidDocument = errors.New("document is not a JSON object")
)

// SchemaError reports required columns missing from the record schema.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}
