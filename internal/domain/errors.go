package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrDuplicateUsername is returned when registering a username that is already taken.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRegistrationSecret indicates the registration secret is incorrect.
	ErrInvalidRegistrationSecret = errors.New("invalid registration secret")
	// ErrNotFound is returned when a user or activity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the viewer does not own the target record.
	ErrForbidden = errors.New("forbidden")
	// ErrStorageUnavailable marks failures of the persistence backend.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrExportDisabled is returned when no object storage bucket is configured.
	ErrExportDisabled = errors.New("export storage is not configured")
)

// ValidationError lists the offending input fields with a message each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for field. The first message for a field wins.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = message
}

// Err returns e when any field failed and nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// StorageError wraps a driver failure. It matches ErrStorageUnavailable and
// keeps the underlying cause reachable through errors.Is/As.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Err}
}
