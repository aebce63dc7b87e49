// Package service holds the business rules of the tent booking backend.
// Operations receive the caller's model.Identity explicitly and report
// failures with the error types in this file; handlers map them to HTTP.
package service

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrNotFound means the resource does not exist or is outside what the
	// caller may see.  The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrPermission is matched by every *PermissionError.
	ErrPermission = errors.New("permission denied")
	// ErrUnauthenticated covers bad credentials and unusable tokens.
	ErrUnauthenticated = errors.New("invalid credentials")
)

// PermissionError is returned when the caller's role does not allow the
// operation.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string { return e.Reason }

func (e *PermissionError) Is(target error) bool { return target == ErrPermission }

func denied(reason string) error { return &PermissionError{Reason: reason} }

// ValidationError collects every rule a request broke, keyed by field.
type ValidationError struct {
	Fields map[string][]string
}

// Add records msg against field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Err returns e when at least one message was added, nil otherwise.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// invalid builds a single-field ValidationError.
func invalid(field, msg string) error {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

const msgRequired = "This field is required."

func maxLength(n int) string {
	return "Ensure this field has no more than " + strconv.Itoa(n) + " characters."
}

func minValue(n int) string {
	return "Ensure this value is greater than or equal to " + strconv.Itoa(n) + "."
}
