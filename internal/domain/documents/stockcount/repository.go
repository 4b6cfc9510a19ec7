package stockcount

import (
	"context"

	"restostock/internal/core/id"
)

// ListFilter narrows count listings.
type ListFilter struct {
	WarehouseID *id.ID
	Status      *Status
	Limit       int
	Offset      int
}

// Repository defines persistence for counts, their items and adjustments.
type Repository interface {
	Create(ctx context.Context, c *StockCount) error

	// GetByID returns apperror NotFound for unknown ids.
	GetByID(ctx context.Context, id id.ID) (*StockCount, error)

	// GetForUpdate retrieves the count with a row lock held until commit.
	GetForUpdate(ctx context.Context, id id.ID) (*StockCount, error)

	List(ctx context.Context, filter ListFilter) ([]*StockCount, int64, error)

	// UpdateStatus persists status, approval fields and notes only if the
	// stored status still equals expected; otherwise it returns apperror
	// ConcurrentModification. On success c.Version is incremented.
	UpdateStatus(ctx context.Context, c *StockCount, expected Status) error

	// Items

	CreateItems(ctx context.Context, items []Item) error
	ListItems(ctx context.Context, countID id.ID) ([]Item, error)
	GetItem(ctx context.Context, itemID id.ID) (*Item, error)
	UpdateItem(ctx context.Context, item *Item) error

	// Adjustments

	CreateAdjustments(ctx context.Context, adjustments []Adjustment) error
	ListAdjustments(ctx context.Context, countID id.ID) ([]Adjustment, error)
}
