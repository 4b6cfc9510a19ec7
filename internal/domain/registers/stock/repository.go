package stock

import (
	"context"
	"time"

	"restostock/internal/core/id"
	"restostock/internal/core/types"
)

// Repository defines persistence for the ledger and the stock rows.
type Repository interface {
	// Ledger

	// AppendMovement inserts m and assigns m.Seq.
	AppendMovement(ctx context.Context, m *Movement) error

	// ListMovements returns movements in ledger order (Date, Seq),
	// reversed when filter.Descending is set.
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)

	// UpdateSnapshots persists StockBefore/StockAfter of the given movements.
	UpdateSnapshots(ctx context.Context, movements []Movement) error

	// Stock rows

	// GetMaterialStock returns apperror NotFound when no row exists.
	GetMaterialStock(ctx context.Context, materialID, warehouseID id.ID) (*MaterialStock, error)

	// GetMaterialStockForUpdate returns the row with a lock held until commit.
	GetMaterialStockForUpdate(ctx context.Context, materialID, warehouseID id.ID) (*MaterialStock, error)

	ListByMaterial(ctx context.Context, materialID id.ID) ([]MaterialStock, error)

	ListByWarehouse(ctx context.Context, warehouseID id.ID) ([]MaterialStock, error)

	UpsertMaterialStock(ctx context.Context, row *MaterialStock) error

	// SetAverageCost writes cost onto every row of the material.
	SetAverageCost(ctx context.Context, materialID id.ID, cost types.Money) error
}

// MovementFilter narrows ledger queries. Nil fields do not filter.
type MovementFilter struct {
	MaterialID  *id.ID
	WarehouseID *id.ID
	Types       []MovementType

	// Before keeps movements with Date < Before.
	Before *time.Time
	// FromDate keeps movements with Date >= FromDate.
	FromDate *time.Time

	// CostedOnly keeps movements with UnitCost > 0.
	CostedOnly bool

	Descending bool
	Limit      int
	Offset     int
}
