// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"
	"time"

	"restostock/internal/core/apperror"
	"restostock/internal/core/id"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// IDResponse is returned when only the new id matters.
type IDResponse struct {
	ID string `json:"id"`
}

// PageQuery holds limit/offset query parameters.
type PageQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// ParseID parses a required id, naming field in the validation error.
func ParseID(field, raw string) (id.ID, error) {
	v, err := id.Parse(strings.TrimSpace(raw))
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid " + field).
			WithDetail("field", field).
			WithDetail("value", raw)
	}
	return v, nil
}

// ParseOptionalID parses an id that may be empty.
func ParseOptionalID(field, raw string) (*id.ID, error) {
	v, err := id.ParseOptional(raw)
	if err != nil {
		return nil, apperror.NewValidation("invalid " + field).
			WithDetail("field", field).
			WithDetail("value", raw)
	}
	return v, nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperror.NewValidation(field + " must be YYYY-MM-DD").
			WithDetail("field", field).
			WithDetail("value", raw)
	}
	return t, nil
}

// ParseInstant parses an RFC 3339 timestamp, or a bare date as its midnight UTC.
func ParseInstant(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	return time.Time{}, apperror.NewValidation(field + " must be RFC 3339 or YYYY-MM-DD").
		WithDetail("field", field).
		WithDetail("value", raw)
}
