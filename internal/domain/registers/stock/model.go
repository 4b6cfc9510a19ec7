// Package stock provides the stock ledger (append-only movements) and the
// per-warehouse stock rows derived from it.
package stock

import (
	"time"

	"restostock/internal/core/id"
	"restostock/internal/core/types"
)

// MovementType classifies a ledger entry.
type MovementType string

const (
	MovementIn         MovementType = "IN"
	MovementOut        MovementType = "OUT"
	MovementAdjustment MovementType = "ADJUSTMENT"
	MovementTransfer   MovementType = "TRANSFER"
	MovementWaste      MovementType = "WASTE"
)

// IsValid reports whether t is a known movement type.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment, MovementTransfer, MovementWaste:
		return true
	}
	return false
}

// ReasonConsistencyCorrection marks movements written by the consistency fixer.
const ReasonConsistencyCorrection = "consistency correction"

// Movement is an append-only ledger entry.
//
// Quantity is signed (positive increases stock). Only StockBefore and
// StockAfter are ever rewritten, when an earlier-dated movement is inserted.
// A nil WarehouseID marks a material-level correction of the denormalized
// total; such entries never appear in a single warehouse's ledger.
type Movement struct {
	ID          id.ID          `db:"id" json:"id"`
	Seq         int64          `db:"seq" json:"seq"`
	MaterialID  id.ID          `db:"material_id" json:"materialId"`
	WarehouseID *id.ID         `db:"warehouse_id" json:"warehouseId,omitempty"`
	Type        MovementType   `db:"type" json:"type"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	UnitCost    types.Money    `db:"unit_cost" json:"unitCost"`
	TotalCost   types.Money    `db:"total_cost" json:"totalCost"`
	StockBefore types.Quantity `db:"stock_before" json:"stockBefore"`
	StockAfter  types.Quantity `db:"stock_after" json:"stockAfter"`

	// Date is the effective date, distinct from CreatedAt.
	Date time.Time `db:"date" json:"date"`

	InvoiceID *id.ID    `db:"invoice_id" json:"invoiceId,omitempty"`
	Reference string    `db:"reference" json:"reference,omitempty"`
	Reason    string    `db:"reason" json:"reason,omitempty"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Before reports whether m sorts before o in ledger order:
// effective date first, then insertion sequence.
func (m Movement) Before(o Movement) bool {
	if !m.Date.Equal(o.Date) {
		return m.Date.Before(o.Date)
	}
	return m.Seq < o.Seq
}

// MaterialStock is the stock row of one material in one warehouse.
type MaterialStock struct {
	MaterialID     id.ID          `db:"material_id" json:"materialId"`
	WarehouseID    id.ID          `db:"warehouse_id" json:"warehouseId"`
	CurrentStock   types.Quantity `db:"current_stock" json:"currentStock"`
	ReservedStock  types.Quantity `db:"reserved_stock" json:"reservedStock"`
	AvailableStock types.Quantity `db:"available_stock" json:"availableStock"`
	AverageCost    types.Money    `db:"average_cost" json:"averageCost"`
	LastUpdated    time.Time      `db:"last_updated" json:"lastUpdated"`
}

// Recompute derives AvailableStock. It is the only place that assigns it.
func (s *MaterialStock) Recompute() {
	s.AvailableStock = s.CurrentStock - s.ReservedStock
}

// ExpectedLine is the ledger-derived stock of one material at a cutoff.
type ExpectedLine struct {
	MaterialID id.ID          `json:"materialId"`
	Quantity   types.Quantity `json:"quantity"`
}

// HistoricalPreview estimates what a count would contain at a cutoff.
type HistoricalPreview struct {
	WarehouseID   id.ID          `json:"warehouseId"`
	Cutoff        time.Time      `json:"cutoff"`
	MaterialCount int            `json:"materialCount"`
	Lines         []ExpectedLine `json:"lines"`
}
