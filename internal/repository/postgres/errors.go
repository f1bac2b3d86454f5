package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"timevault/internal/domain"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 = unique_violation
		return pgErr.Code == "23505"
	}
	return false
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23503 = foreign_key_violation
		return pgErr.Code == "23503"
	}
	return false
}

// IsPgExclusionError checks if error is an exclusion constraint violation.
// The time_entries table carries a GiST exclusion constraint on the interval
// range per (tenant_id, user_id) as a backstop behind the advisory-lock
// write path.
func IsPgExclusionError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23P01 = exclusion_violation
		return pgErr.Code == "23P01"
	}
	return false
}

// IsPgSerializationError checks if error is a serialization failure. The
// whole transaction may be retried by the caller.
func IsPgSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 = serialization_failure
		return pgErr.Code == "40001"
	}
	return false
}

// storageError wraps an infrastructure failure so callers can distinguish it
// from domain outcomes. A cancelled context or lost connection must never
// read as "not found" or "no conflict".
func storageError(op string, err error) error {
	return &domain.StorageError{Op: op, Err: err}
}
