package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errors returned by the services in addition to the ones in models
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
	ErrInvalidImage       = errors.New("only jpeg, jpg and png images are allowed")
	ErrImageTooLarge      = errors.New("image is too large")
)

// ValidationError lists the request fields that failed validation
type ValidationError struct {
	// Fields maps the JSON field name to a human readable problem
	Fields map[string]string
}

// Error implements error. Fields are listed in alphabetical order.
func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// newFieldError builds a ValidationError for a single field
func newFieldError(field, problem string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: problem}}
}
