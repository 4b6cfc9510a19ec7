// Package id provides UUIDv7 generation for all stock entities.
// UUIDv7 is time-ordered, so ids sort by creation time.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// ID is a type alias for UUID, used across all entities.
type ID = uuid.UUID

// New generates a new UUIDv7.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// ParseOptional parses s and returns nil for an empty string.
func ParseOptional(s string) (*ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns zero-value UUID.
func Nil() ID {
	return uuid.Nil
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}

// Ptr returns a pointer to a copy of v.
func Ptr(v ID) *ID {
	return &v
}
