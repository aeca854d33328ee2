package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

// ValidationError reports unusable input: empty or undersized series,
// mismatched lengths, non-positive counts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Reason
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a commodity with no matching data.
type NotFoundError struct {
	Kind  string // "series", "records"
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found for commodity %q", e.Kind, e.Query)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NewNotFoundError(kind, query string) error {
	return &NotFoundError{Kind: kind, Query: query}
}
