// Package errors provides custom error types for the mathflix catalog.
// These errors enable programmatic error checking with errors.Is / errors.As
// and carry enough context (record ids, snapshot keys, paths) for logging.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is, As and Unwrap re-export the standard library helpers so callers only
// need to import this package.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// Common sentinel errors for the catalog
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates an optimistic version check failed on save
	ErrConflict = errors.New("version conflict")

	// ErrSnapshotUnreadable indicates a persisted snapshot could not be decoded
	ErrSnapshotUnreadable = errors.New("snapshot unreadable")

	// ErrDuplicateDefinition indicates the canonical source repeats an id
	ErrDuplicateDefinition = errors.New("duplicate definition")

	// ErrReadOnly indicates an attempt to modify a read-only resource
	ErrReadOnly = errors.New("read only")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// DuplicateDefinitionError is returned when the canonical definition list
// contains the same id more than once. It is a configuration bug in the
// source catalog and must never be resolved by picking one of the entries.
type DuplicateDefinitionError struct {
	ID string
	// Positions are the indexes in the canonical list where ID appears.
	Positions []int
}

// Error implements the error interface
func (e *DuplicateDefinitionError) Error() string {
	if len(e.Positions) > 1 {
		return fmt.Sprintf("duplicate canonical definition for id %q at positions %v", e.ID, e.Positions)
	}
	return fmt.Sprintf("duplicate canonical definition for id %q", e.ID)
}

// Is implements errors.Is support
func (e *DuplicateDefinitionError) Is(target error) bool {
	return target == ErrDuplicateDefinition
}

// NewDuplicateDefinitionError creates a new DuplicateDefinitionError
func NewDuplicateDefinitionError(id string, positions ...int) *DuplicateDefinitionError {
	return &DuplicateDefinitionError{ID: id, Positions: positions}
}

// SnapshotUnreadableError reports a persisted snapshot that could not be
// decoded. Callers treat it as an absent snapshot.
type SnapshotUnreadableError struct {
	Key string
	Err error
}

// Error implements the error interface
func (e *SnapshotUnreadableError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("snapshot %s unreadable: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("snapshot unreadable: %v", e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SnapshotUnreadableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *SnapshotUnreadableError) Is(target error) bool {
	return target == ErrSnapshotUnreadable
}

// NewSnapshotUnreadableError creates a new SnapshotUnreadableError
func NewSnapshotUnreadableError(key string, err error) *SnapshotUnreadableError {
	return &SnapshotUnreadableError{Key: key, Err: err}
}

// ConflictError represents a failed compare-and-swap on a stored snapshot.
type ConflictError struct {
	Key      string
	Expected uint64
	Actual   uint64
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return fmt.Sprintf("snapshot %s changed concurrently (expected version %d, found %d)", e.Key, e.Expected, e.Actual)
}

// Is implements errors.Is support
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflictError creates a new ConflictError
func NewConflictError(key string, expected, actual uint64) *ConflictError {
	return &ConflictError{Key: key, Expected: expected, Actual: actual}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d:%d: %s", e.Format, e.File, e.Line, e.Column, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during storage I/O
type IOError struct {
	Operation string // "read", "write", "delete", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "update", "delete", "fetch", "reconcile"
	Resource  string // "catalog", "game", "snapshot", "store"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConflict checks if an error is an optimistic concurrency conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsSnapshotUnreadable checks if an error reports a corrupt snapshot
func IsSnapshotUnreadable(err error) bool {
	return errors.Is(err, ErrSnapshotUnreadable)
}

// IsDuplicateDefinition checks if an error reports a duplicate canonical id
func IsDuplicateDefinition(err error) bool {
	return errors.Is(err, ErrDuplicateDefinition)
}

// IsReadOnly checks if an error is a read-only violation
func IsReadOnly(err error) bool {
	return errors.Is(err, ErrReadOnly)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
