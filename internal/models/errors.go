// internal/models/errors.go
package models

import "fmt"

// ValidationError reports malformed caller input. It is always surfaced,
// never replaced by a default.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UnknownJurisdictionError reports a miss in a per-jurisdiction lookup table.
// Callers treat it as ineligible rather than skipping the check.
type UnknownJurisdictionError struct {
	Jurisdiction string `json:"jurisdiction"`
	Table        string `json:"table"`
	Year         int    `json:"year,omitempty"`
}

func (e *UnknownJurisdictionError) Error() string {
	if e.Year > 0 {
		return fmt.Sprintf("unknown jurisdiction %q in %s table for %d", e.Jurisdiction, e.Table, e.Year)
	}
	return fmt.Sprintf("unknown jurisdiction %q in %s table", e.Jurisdiction, e.Table)
}
