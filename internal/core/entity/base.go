// Package entity holds the fields and contracts shared by all stock entities.
package entity

import (
	"context"
	"time"

	"restostock/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity contains common fields for catalog entries and documents.
type BaseEntity struct {
	ID        id.ID     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a new BaseEntity with generated ID.
func NewBaseEntity(now time.Time) BaseEntity {
	now = now.UTC()
	return BaseEntity{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch records a modification time.
func (b *BaseEntity) Touch(now time.Time) {
	b.UpdatedAt = now.UTC()
}

// Versioned entities carry an optimistic-locking counter.
type Versioned struct {
	Version int `db:"version" json:"version"`
}

// IncrementVersion bumps the version after a successful update.
func (v *Versioned) IncrementVersion() {
	v.Version++
}

// Clock abstracts time for services that stamp entities.
type Clock func() time.Time

// SystemClock returns the current UTC time.
func SystemClock() time.Time {
	return time.Now().UTC()
}
