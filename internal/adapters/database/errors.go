package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

// pq error codes the adapters translate
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// translateError maps driver errors onto the application taxonomy.
// notFound is the message used when no row matched.
func translateError(err error, notFound, failure string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFoundError(notFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return apperrors.NewConflictError(failure + ": already exists")
		case pqForeignKeyViolation:
			return apperrors.NewValidationError(failure + ": referenced record does not exist")
		case pqCheckViolation:
			return apperrors.NewValidationError(failure + ": value out of range")
		}
	}

	if apperrors.IsNetworkError(err) {
		return apperrors.NewExternalError("database unavailable", err)
	}
	return apperrors.NewInternalError(failure, err)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
