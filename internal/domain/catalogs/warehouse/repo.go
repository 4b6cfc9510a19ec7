package warehouse

import (
	"context"

	"restostock/internal/core/id"
	"restostock/internal/domain"
)

// Repository defines the interface for Warehouse persistence.
type Repository interface {
	Create(ctx context.Context, w *Warehouse) error

	// GetByID returns apperror NotFound for unknown ids.
	GetByID(ctx context.Context, id id.ID) (*Warehouse, error)

	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Warehouse], error)
}
