// Package conn implements the polymorphic connection and transaction layer:
// a tagged-variant dispatcher over a finite set of database backends (pooled
// drivers via database/sql, a mutex-guarded single connection, an in-memory
// mock, and a JSON-speaking proxy), nested transactions via SAVEPOINT, and
// the pool/lock configuration each backend is opened with.
package conn

import (
	"errors"
	"fmt"
	"time"
)

// ConnError wraps a failure to acquire or establish a connection (opening
// the pool, dialing a single connection, or a failed backend handshake).
type ConnError struct {
	Backend string
	Err     error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("conn: %s: connection error: %v", e.Backend, e.Err)
}
func (e *ConnError) Unwrap() error { return e.Err }

// NewConnError returns a new ConnError.
func NewConnError(backend string, err error) *ConnError {
	return &ConnError{Backend: backend, Err: err}
}

// IsConnError returns true if err is a ConnError.
func IsConnError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConnError
	return errors.As(err, &e)
}

// ExecError wraps a failed Exec/Query call that isn't itself a business
// outcome (RecordNotInserted and friends live in the root velox package).
type ExecError struct {
	Query string
	Err   error
}

func (e *ExecError) Error() string { return fmt.Sprintf("conn: exec %q: %v", e.Query, e.Err) }
func (e *ExecError) Unwrap() error { return e.Err }

// NewExecError returns a new ExecError.
func NewExecError(query string, err error) *ExecError { return &ExecError{Query: query, Err: err} }

// IsExecError returns true if err is an ExecError.
func IsExecError(err error) bool {
	if err == nil {
		return false
	}
	var e *ExecError
	return errors.As(err, &e)
}

// DbConnError wraps a database/sql-level connection failure (as opposed to
// ConnError, which also covers non-database/sql backends like the JSON proxy).
type DbConnError struct {
	Err error
}

func (e *DbConnError) Error() string {
	return fmt.Sprintf("conn: database connection error: %v", e.Err)
}
func (e *DbConnError) Unwrap() error { return e.Err }

// NewDbConnError returns a new DbConnError.
func NewDbConnError(err error) *DbConnError { return &DbConnError{Err: err} }

// IsDbConnError returns true if err is a DbConnError.
func IsDbConnError(err error) bool {
	if err == nil {
		return false
	}
	var e *DbConnError
	return errors.As(err, &e)
}

// DbExecError wraps a database-level Exec failure (constraint violations,
// deadlocks, syntax errors surfaced by the driver).
type DbExecError struct {
	Err error
}

func (e *DbExecError) Error() string { return fmt.Sprintf("conn: database exec error: %v", e.Err) }
func (e *DbExecError) Unwrap() error { return e.Err }

// NewDbExecError returns a new DbExecError.
func NewDbExecError(err error) *DbExecError { return &DbExecError{Err: err} }

// IsDbExecError returns true if err is a DbExecError.
func IsDbExecError(err error) bool {
	if err == nil {
		return false
	}
	var e *DbExecError
	return errors.As(err, &e)
}

// DbQueryError wraps a database-level Query failure.
type DbQueryError struct {
	Err error
}

func (e *DbQueryError) Error() string { return fmt.Sprintf("conn: database query error: %v", e.Err) }
func (e *DbQueryError) Unwrap() error { return e.Err }

// NewDbQueryError returns a new DbQueryError.
func NewDbQueryError(err error) *DbQueryError { return &DbQueryError{Err: err} }

// IsDbQueryError returns true if err is a DbQueryError.
func IsDbQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *DbQueryError
	return errors.As(err, &e)
}

// ConnectionAcquireError is returned when a single-connection backend's
// try-lock doesn't succeed within its configured timeout.
type ConnectionAcquireError struct {
	Timeout time.Duration
}

func (e *ConnectionAcquireError) Error() string {
	return fmt.Sprintf("conn: connection acquire timed out after %s", e.Timeout)
}

// NewConnectionAcquireError returns a new ConnectionAcquireError.
func NewConnectionAcquireError(timeout time.Duration) *ConnectionAcquireError {
	return &ConnectionAcquireError{Timeout: timeout}
}

// IsConnectionAcquireError returns true if err is a ConnectionAcquireError.
func IsConnectionAcquireError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConnectionAcquireError
	return errors.As(err, &e)
}

// UnpackInsertIDError is returned when a RETURNING clause succeeded but its
// primary-key column didn't decode into the expected Go type.
type UnpackInsertIDError struct {
	Column string
	Err    error
}

func (e *UnpackInsertIDError) Error() string {
	return fmt.Sprintf("conn: unpacking insert id from column %q: %v", e.Column, e.Err)
}
func (e *UnpackInsertIDError) Unwrap() error { return e.Err }

// NewUnpackInsertIDError returns a new UnpackInsertIDError.
func NewUnpackInsertIDError(column string, err error) *UnpackInsertIDError {
	return &UnpackInsertIDError{Column: column, Err: err}
}

// IsUnpackInsertIDError returns true if err is an UnpackInsertIDError.
func IsUnpackInsertIDError(err error) bool {
	if err == nil {
		return false
	}
	var e *UnpackInsertIDError
	return errors.As(err, &e)
}

// CustomError wraps an application-supplied error raised from within a
// transaction callback, kept distinct from the driver-originated kinds so
// callers can tell "my code failed" from "the database failed".
type CustomError struct {
	Err error
}

func (e *CustomError) Error() string { return fmt.Sprintf("conn: %v", e.Err) }
func (e *CustomError) Unwrap() error { return e.Err }

// NewCustomError returns a new CustomError.
func NewCustomError(err error) *CustomError { return &CustomError{Err: err} }

// IsCustomError returns true if err is a CustomError.
func IsCustomError(err error) bool {
	if err == nil {
		return false
	}
	var e *CustomError
	return errors.As(err, &e)
}

// MutexPoisonError is returned when a single-connection backend's lock was
// abandoned mid-hold (the holder panicked while holding it, or a transaction
// holding it was garbage-collected without Commit or Rollback), leaving the
// loaned handle in an unknown state.
type MutexPoisonError struct {
	Backend string
}

func (e *MutexPoisonError) Error() string {
	return fmt.Sprintf("conn: %s: connection mutex poisoned by an abandoned holder", e.Backend)
}

// NewMutexPoisonError returns a new MutexPoisonError.
func NewMutexPoisonError(backend string) *MutexPoisonError {
	return &MutexPoisonError{Backend: backend}
}

// IsMutexPoisonError returns true if err is a MutexPoisonError.
func IsMutexPoisonError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutexPoisonError
	return errors.As(err, &e)
}
