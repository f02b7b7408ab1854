package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError_ContextErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantCode: ErrCodeTimeout},
		{name: "canceled", err: context.Canceled, wantCode: ErrCodeCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(MapDBError(tt.err)); got != tt.wantCode {
				t.Errorf("MapDBError() code = %v, want %v", got, tt.wantCode)
			}
		})
	}
}

func TestMapDBError_NoRows(t *testing.T) {
	if err := MapDBError(pgx.ErrNoRows); !IsNotFound(err) {
		t.Errorf("MapDBError(pgx.ErrNoRows) should be NotFound, got %v", GetCode(err))
	}
}

func TestMapDBError_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:   pgerrcode.UniqueViolation,
		Detail: "Key (external_id)=(g-100) already exists.",
	}

	err := MapDBError(pgErr)
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", GetCode(err))
	}
	if GetField(err) != "external_id" {
		t.Errorf("expected field external_id, got %q", GetField(err))
	}
}

func TestMapDBError_UniqueViolation_ColumnName(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:       pgerrcode.UniqueViolation,
		ColumnName: "external_id",
	}

	if got := GetField(MapDBError(pgErr)); got != "external_id" {
		t.Errorf("expected field external_id, got %q", got)
	}
}

func TestMapDBError_ForeignKeyViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:   pgerrcode.ForeignKeyViolation,
		Detail: `Key (user_id)=(u-404) is not present in table "users".`,
	}

	if err := MapDBError(pgErr); !IsValidation(err) {
		t.Errorf("expected validation, got %v", GetCode(err))
	}
}

func TestMapDBError_NotNullViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:       pgerrcode.NotNullViolation,
		ColumnName: "title",
	}

	err := MapDBError(pgErr)
	if !IsValidation(err) {
		t.Fatalf("expected validation, got %v", GetCode(err))
	}
	if GetField(err) != "title" {
		t.Errorf("expected field title, got %q", GetField(err))
	}
}

func TestMapDBError_UnknownPgError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.SerializationFailure}

	if err := MapDBError(pgErr); !IsInternal(err) {
		t.Errorf("expected internal, got %v", GetCode(err))
	}
}

func TestMapDBError_PassThrough(t *testing.T) {
	plain := errors.New("not a database error")
	if err := MapDBError(plain); !errors.Is(err, plain) {
		t.Errorf("expected pass-through, got %v", err)
	}
}
