package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrorCode categorizes storage failures for the presentation layer.
type ErrorCode string

const (
	// CodeNotFound means the referenced row does not exist. Recoverable;
	// surfaced to the user as a message.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeConstraintViolation means a uniqueness or foreign-key constraint
	// rejected the write. Recoverable; the caller adjusts and retries.
	CodeConstraintViolation ErrorCode = "CONSTRAINT_VIOLATION"

	// CodeUnavailable means the underlying storage failed. Fatal for the
	// current operation, never for the process.
	CodeUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
)

// StoreError is the typed error returned by both backends.
type StoreError struct {
	Code    ErrorCode
	Op      string // operation that failed, e.g. "insert product"
	Message string
	Err     error // underlying driver error, if any
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Code, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the error is a missing-row failure.
func (e *StoreError) NotFound() bool {
	return e.Code == CodeNotFound
}

// ConstraintViolation reports whether the error is a constraint failure.
// Also satisfies the behavior interface the invoice committer matches on.
func (e *StoreError) ConstraintViolation() bool {
	return e.Code == CodeConstraintViolation
}

// IsNotFound returns true if err (or anything it wraps) is a NOT_FOUND
// store error.
func IsNotFound(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == CodeNotFound
}

// IsConstraintViolation returns true if err is a CONSTRAINT_VIOLATION
// store error.
func IsConstraintViolation(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == CodeConstraintViolation
}

// IsUnavailable returns true if err is a STORAGE_UNAVAILABLE store error.
func IsUnavailable(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Code == CodeUnavailable
}

func notFound(op, message string) *StoreError {
	return &StoreError{Code: CodeNotFound, Op: op, Message: message}
}

func constraintViolation(op, message string, err error) *StoreError {
	return &StoreError{Code: CodeConstraintViolation, Op: op, Message: message, Err: err}
}

func unavailable(op string, err error) *StoreError {
	return &StoreError{Code: CodeUnavailable, Op: op, Message: "storage error", Err: err}
}

// mapSQLiteError classifies a driver error into the store taxonomy.
func mapSQLiteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(op, "no matching row")
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return constraintViolation(op, serr.Error(), err)
	}
	return unavailable(op, err)
}
