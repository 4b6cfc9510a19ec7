package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"restostock/internal/core/apperror"
)

func TestMapError(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "cat_materials_code_key"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "fk_material"}

	assert.Nil(t, MapError(nil, "material"))
	assert.Equal(t, apperror.CodeConflict, mustApp(t, MapError(fmt.Errorf("wrap: %w", unique), "material")).Code)
	assert.True(t, apperror.IsValidation(MapError(fk, "material")))

	plain := errors.New("boom")
	mapped := MapError(plain, "material")
	assert.ErrorIs(t, mapped, plain)
	_, ok := apperror.AsAppError(mapped)
	assert.False(t, ok)

	assert.True(t, IsUniqueViolation(unique, ""))
	assert.True(t, IsUniqueViolation(unique, "cat_materials_code_key"))
	assert.False(t, IsUniqueViolation(unique, "other"))
	assert.False(t, IsUniqueViolation(fk, ""))
}

func mustApp(t *testing.T, err error) *apperror.AppError {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	return appErr
}
