package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicates_UnwrapChain(t *testing.T) {
	base := NewIncompleteCount(3)
	wrapped := fmt.Errorf("submit: %w", base)

	assert.True(t, IsIncompleteCount(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus(wrapped))

	appErr, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, 3, appErr.Details["remaining"])
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
}

func TestFactories(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NewNotFound("material", "m1"), CodeNotFound, http.StatusNotFound},
		{"transition", NewInvalidTransition("stock count", "COMPLETED", "approve"), CodeInvalidTransition, http.StatusUnprocessableEntity},
		{"duplicate", NewDuplicateItem("c1", "m1"), CodeDuplicateItem, http.StatusConflict},
		{"concurrent", NewConcurrentModification("stock count", "c1"), CodeConcurrentModification, http.StatusConflict},
		{"inconsistent", NewInconsistentData("negative sum"), CodeInconsistentData, http.StatusUnprocessableEntity},
		{"validation", NewValidation("bad"), CodeValidation, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

func TestWithCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal(nil).WithCause(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}
