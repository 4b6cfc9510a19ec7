package material

import (
	"context"

	"restostock/internal/core/id"
	"restostock/internal/core/types"
	"restostock/internal/domain"
)

// Repository defines the interface for Material persistence.
type Repository interface {
	Create(ctx context.Context, m *Material) error

	// GetByID returns apperror NotFound for unknown ids.
	GetByID(ctx context.Context, id id.ID) (*Material, error)

	// GetForUpdate retrieves material with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Material, error)

	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Material], error)

	// ListActive returns every active material ordered by name.
	ListActive(ctx context.Context) ([]*Material, error)

	// SetCurrentStock overwrites the denormalized total.
	SetCurrentStock(ctx context.Context, id id.ID, qty types.Quantity) error

	// AddCurrentStock applies a signed delta to the denormalized total.
	AddCurrentStock(ctx context.Context, id id.ID, delta types.Quantity) error

	SetAverageCost(ctx context.Context, id id.ID, cost types.Money) error
}
