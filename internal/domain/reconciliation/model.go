// Package reconciliation keeps a material's denormalized stock total in
// line with the sum of its warehouse rows.
package reconciliation

import (
	"restostock/internal/core/id"
	"restostock/internal/core/types"
	"restostock/internal/domain/registers/stock"
)

// WarehouseStock is one row of a material's breakdown.
type WarehouseStock struct {
	WarehouseID    id.ID          `json:"warehouseId"`
	CurrentStock   types.Quantity `json:"currentStock"`
	ReservedStock  types.Quantity `json:"reservedStock"`
	AvailableStock types.Quantity `json:"availableStock"`
}

// StockSummary compares the denormalized total with the warehouse rows.
type StockSummary struct {
	MaterialID   id.ID            `json:"materialId"`
	MaterialName string           `json:"materialName"`
	Unit         types.Unit       `json:"unit"`
	SystemStock  types.Quantity   `json:"systemStock"`
	TotalStock   types.Quantity   `json:"totalStock"`
	Difference   types.Quantity   `json:"difference"`
	IsConsistent bool             `json:"isConsistent"`
	PerWarehouse []WarehouseStock `json:"perWarehouse"`
}

// ConsistencyReport is the fleet health report.
type ConsistencyReport struct {
	Total        int            `json:"total"`
	Consistent   int            `json:"consistent"`
	Inconsistent int            `json:"inconsistent"`
	Items        []StockSummary `json:"items"`
}

// FixResult is the outcome of a single fix.
type FixResult struct {
	MaterialID id.ID           `json:"materialId"`
	Success    bool            `json:"success"`
	OldValue   types.Quantity  `json:"oldValue"`
	NewValue   types.Quantity  `json:"newValue"`
	Movement   *stock.Movement `json:"movement,omitempty"`
}

// FixFailure records a material that could not be fixed.
type FixFailure struct {
	MaterialID id.ID  `json:"materialId"`
	Error      string `json:"error"`
}

// FixAllResult counts attempted and succeeded fixes.
type FixAllResult struct {
	Total    int          `json:"total"`
	Fixed    int          `json:"fixed"`
	Failures []FixFailure `json:"failures,omitempty"`
}
