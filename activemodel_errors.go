package velox

import (
	"errors"
	"fmt"
)

// RecordNotInsertedError is returned when an INSERT affected zero rows -
// an ON CONFLICT DO NOTHING, or (on MySQL, after an upsert) a last-insert-id
// of 0 - meaning no new row actually landed.
type RecordNotInsertedError struct {
	Entity string
}

// Error returns the error string.
func (e *RecordNotInsertedError) Error() string {
	return fmt.Sprintf("velox: %s: record not inserted", e.Entity)
}

// NewRecordNotInsertedError returns a new RecordNotInsertedError.
func NewRecordNotInsertedError(entity string) *RecordNotInsertedError {
	return &RecordNotInsertedError{Entity: entity}
}

// IsRecordNotInserted returns true if err is a RecordNotInsertedError.
func IsRecordNotInserted(err error) bool {
	if err == nil {
		return false
	}
	var e *RecordNotInsertedError
	return errors.As(err, &e)
}

// RecordNotUpdatedError is returned when an UPDATE affected zero rows -
// either the primary key no longer matches any row, or the row was deleted
// concurrently.
type RecordNotUpdatedError struct {
	Entity string
}

// Error returns the error string.
func (e *RecordNotUpdatedError) Error() string {
	return fmt.Sprintf("velox: %s: record not updated", e.Entity)
}

// NewRecordNotUpdatedError returns a new RecordNotUpdatedError.
func NewRecordNotUpdatedError(entity string) *RecordNotUpdatedError {
	return &RecordNotUpdatedError{Entity: entity}
}

// IsRecordNotUpdated returns true if err is a RecordNotUpdatedError.
func IsRecordNotUpdated(err error) bool {
	if err == nil {
		return false
	}
	var e *RecordNotUpdatedError
	return errors.As(err, &e)
}

// AttrNotSetError is returned when code reads a field still in the NotSet
// state of the tri-state lattice: there is no write intent and, for a model
// loaded from the database, no value to read either.
type AttrNotSetError struct {
	Entity string
	Field  string
}

// Error returns the error string.
func (e *AttrNotSetError) Error() string {
	return fmt.Sprintf("velox: %s.%s: attribute not set", e.Entity, e.Field)
}

// NewAttrNotSetError returns a new AttrNotSetError.
func NewAttrNotSetError(entity, field string) *AttrNotSetError {
	return &AttrNotSetError{Entity: entity, Field: field}
}

// IsAttrNotSet returns true if err is an AttrNotSetError.
func IsAttrNotSet(err error) bool {
	if err == nil {
		return false
	}
	var e *AttrNotSetError
	return errors.As(err, &e)
}

// BackendNotSupportedError is returned when an operation requires a
// database feature (e.g. RETURNING) the active dialect doesn't provide and
// no fallback path applies.
type BackendNotSupportedError struct {
	Dialect   string
	Operation string
}

// Error returns the error string.
func (e *BackendNotSupportedError) Error() string {
	return fmt.Sprintf("velox: %s not supported on %s", e.Operation, e.Dialect)
}

// NewBackendNotSupportedError returns a new BackendNotSupportedError.
func NewBackendNotSupportedError(dialect, operation string) *BackendNotSupportedError {
	return &BackendNotSupportedError{Dialect: dialect, Operation: operation}
}

// IsBackendNotSupported returns true if err is a BackendNotSupportedError.
func IsBackendNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var e *BackendNotSupportedError
	return errors.As(err, &e)
}
