package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// The transport layer only needs this interface; it never switches on
// concrete error types.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrReference  = errors.New("unknown reference")
	ErrStorage    = errors.New("storage failure")
)

// ValidationError indicates malformed or missing input. Always recoverable
// by the caller correcting the input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string      { return e.Message }
func (e *ValidationError) StatusCode() int    { return http.StatusBadRequest }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ReferentialError indicates a foreign reference that does not exist or
// does not belong to the caller's tenant.
type ReferentialError struct {
	Field string // offending field, e.g. "project_id"
	ID    string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s %s does not exist", e.Field, e.ID)
}
func (e *ReferentialError) StatusCode() int      { return http.StatusBadRequest }
func (e *ReferentialError) Is(target error) bool { return target == ErrReference }

// ConflictError indicates the mutation would violate a data-state invariant
// (an overlapping interval). Distinguished from validation because it depends
// on current data, not just the input.
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string // ID of the existing/conflicting resource, if known
}

func (e *ConflictError) Error() string        { return e.Message }
func (e *ConflictError) StatusCode() int      { return http.StatusConflict }
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotFoundError indicates a mutation target that is absent. A row in another
// tenant or a soft-deleted row reports the same error as a missing row:
// callers must not be able to probe for cross-tenant existence.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Resource, e.ID, ErrNotFound)
}
func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StorageError wraps infrastructure failures (connection loss, timeout,
// serialization failure). May be transient; the caller may retry the whole
// operation, never a part of it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string        { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *StorageError) StatusCode() int      { return http.StatusInternalServerError }
func (e *StorageError) Is(target error) bool { return target == ErrStorage }
func (e *StorageError) Unwrap() error        { return e.Err }

// BatchItemError reports which candidate of a batch failed. Index is
// zero-based submission order. The batch persists nothing when any
// candidate fails.
type BatchItemError struct {
	Index int
	Err   error
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
}

func (e *BatchItemError) Unwrap() error { return e.Err }

// StatusCode delegates to the wrapped error so batch failures map to the
// same status as their single-entry equivalents.
func (e *BatchItemError) StatusCode() int {
	var httpErr HTTPError
	if errors.As(e.Err, &httpErr) {
		return httpErr.StatusCode()
	}
	return http.StatusInternalServerError
}
