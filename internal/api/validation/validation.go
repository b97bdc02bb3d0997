package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) > max
}

// ParseOptionalUUID parses s when it is non-blank. It appends a field error
// and returns nil when s is not a UUID.
func ParseOptionalUUID(field, s string, errs *[]FieldError) *uuid.UUID {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		*errs = append(*errs, FieldError{Field: field, Message: field + " must be a valid UUID"})
		return nil
	}
	return &id
}
