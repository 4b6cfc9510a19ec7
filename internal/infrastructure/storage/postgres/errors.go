package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"restostock/internal/core/apperror"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MapError translates constraint violations into AppErrors.
// Anything else is wrapped as-is.
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", entity, err)
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return apperror.NewConflict(fmt.Sprintf("%s already exists", entity)).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgForeignKeyViolation:
		return apperror.NewValidation(fmt.Sprintf("%s references a missing record", entity)).
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case pgCheckViolation:
		return apperror.NewValidation(fmt.Sprintf("%s violates %s", entity, pgErr.ConstraintName)).
			WithCause(err)
	}
	return fmt.Errorf("%s: %w", entity, err)
}

// IsUniqueViolation reports whether err is a unique constraint violation,
// optionally on a specific constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
