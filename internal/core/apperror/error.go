// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Business rule violations (422)
	CodeBusinessRule      = "BUSINESS_RULE_VIOLATION"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeIncompleteCount   = "INCOMPLETE_COUNT"
	CodeInconsistentData  = "INCONSISTENT_DATA"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict               = "CONFLICT"
	CodeDuplicateItem          = "DUPLICATE_ITEM"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
)

// AppError is the standard error type of the service.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (ids, quantities, states)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInvalidTransition is returned when a state machine operation is not
// permitted from the entity's current state.
func NewInvalidTransition(entity string, from any, action string) *AppError {
	return &AppError{
		Code:       CodeInvalidTransition,
		Message:    fmt.Sprintf("cannot %s %s in status %v", action, entity, from),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"entity": entity, "status": fmt.Sprint(from), "action": action},
	}
}

// NewIncompleteCount is returned when a count is submitted with uncounted items.
func NewIncompleteCount(remaining int) *AppError {
	return &AppError{
		Code:       CodeIncompleteCount,
		Message:    fmt.Sprintf("%d item(s) have not been counted yet", remaining),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"remaining": remaining},
	}
}

// NewDuplicateItem is returned when a material is already present on a count.
func NewDuplicateItem(countID, materialID any) *AppError {
	return &AppError{
		Code:       CodeDuplicateItem,
		Message:    "Material is already on this stock count",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"stock_count_id": countID, "material_id": materialID},
	}
}

// NewInconsistentData reports an invariant violation detected mid-operation.
func NewInconsistentData(message string) *AppError {
	return &AppError{
		Code:       CodeInconsistentData,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInsufficientStock creates a stock shortage error
func NewInsufficientStock(materialID string, requested, available float64) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "Insufficient stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"material_id": materialID,
			"requested":   requested,
			"available":   available,
		},
	}
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode checks whether err carries the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

func IsNotFound(err error) bool               { return HasCode(err, CodeNotFound) }
func IsInvalidTransition(err error) bool      { return HasCode(err, CodeInvalidTransition) }
func IsIncompleteCount(err error) bool        { return HasCode(err, CodeIncompleteCount) }
func IsDuplicateItem(err error) bool          { return HasCode(err, CodeDuplicateItem) }
func IsInconsistentData(err error) bool       { return HasCode(err, CodeInconsistentData) }
func IsInsufficientStock(err error) bool      { return HasCode(err, CodeInsufficientStock) }
func IsValidation(err error) bool             { return HasCode(err, CodeValidation) }
func IsConcurrentModification(err error) bool { return HasCode(err, CodeConcurrentModification) }
