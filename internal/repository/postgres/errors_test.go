package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"timevault/internal/domain"
)

func TestPgErrorClassification(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		check func(error) bool
	}{
		{"unique violation", "23505", IsPgDuplicateError},
		{"foreign key violation", "23503", IsPgForeignKeyError},
		{"exclusion violation", "23P01", IsPgExclusionError},
		{"serialization failure", "40001", IsPgSerializationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &pgconn.PgError{Code: tt.code}
			if !tt.check(err) {
				t.Errorf("check returned false for code %s", tt.code)
			}

			wrapped := fmt.Errorf("insert failed: %w", err)
			if !tt.check(wrapped) {
				t.Errorf("check returned false for wrapped code %s", tt.code)
			}

			if tt.check(errors.New("plain error")) {
				t.Error("check returned true for non-pg error")
			}
		})
	}
}

func TestIsPgNoRowsError(t *testing.T) {
	if !IsPgNoRowsError(pgx.ErrNoRows) {
		t.Error("IsPgNoRowsError(pgx.ErrNoRows) = false")
	}
	if IsPgNoRowsError(errors.New("other")) {
		t.Error("IsPgNoRowsError(other) = true")
	}
}

func TestStorageErrorWraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := storageError("create time entry", cause)

	if !errors.Is(err, domain.ErrStorage) {
		t.Error("storageError does not match ErrStorage")
	}
	if !errors.Is(err, cause) {
		t.Error("storageError does not unwrap to its cause")
	}
}
