package dto

import (
	"time"

	"restostock/internal/core/id"
	"restostock/internal/core/types"
	"restostock/internal/domain/registers/stock"
)

// MovementRequest is the request body for recording a movement.
// Quantity is in Unit, or the material's consumption unit when Unit is empty.
type MovementRequest struct {
	MaterialID  string             `json:"materialId" binding:"required"`
	WarehouseID string             `json:"warehouseId" binding:"required"`
	Type        stock.MovementType `json:"type" binding:"required"`
	Quantity    types.Quantity     `json:"quantity"`
	Unit        types.Unit         `json:"unit"`
	UnitCost    types.Money        `json:"unitCost"`
	Date        *time.Time         `json:"date"`
	InvoiceID   string             `json:"invoiceId"`
	Reference   string             `json:"reference"`
	Reason      string             `json:"reason"`
}

func (r *MovementRequest) ToInput(createdBy string) (stock.MovementInput, error) {
	materialID, err := ParseID("materialId", r.MaterialID)
	if err != nil {
		return stock.MovementInput{}, err
	}
	warehouseID, err := ParseID("warehouseId", r.WarehouseID)
	if err != nil {
		return stock.MovementInput{}, err
	}
	invoiceID, err := ParseOptionalID("invoiceId", r.InvoiceID)
	if err != nil {
		return stock.MovementInput{}, err
	}

	in := stock.MovementInput{
		MaterialID:  materialID,
		WarehouseID: warehouseID,
		Type:        r.Type,
		Amount:      types.NewMeasure(r.Quantity, r.Unit),
		UnitCost:    r.UnitCost,
		InvoiceID:   invoiceID,
		Reference:   r.Reference,
		Reason:      r.Reason,
		CreatedBy:   createdBy,
	}
	if r.Date != nil {
		in.Date = *r.Date
	}
	return in, nil
}

// TransferRequest is the request body for a warehouse-to-warehouse transfer.
type TransferRequest struct {
	MaterialID      string         `json:"materialId" binding:"required"`
	FromWarehouseID string         `json:"fromWarehouseId" binding:"required"`
	ToWarehouseID   string         `json:"toWarehouseId" binding:"required"`
	Quantity        types.Quantity `json:"quantity"`
	Unit            types.Unit     `json:"unit"`
	Date            *time.Time     `json:"date"`
	Reference       string         `json:"reference"`
}

func (r *TransferRequest) ToInput(createdBy string) (stock.TransferInput, error) {
	materialID, err := ParseID("materialId", r.MaterialID)
	if err != nil {
		return stock.TransferInput{}, err
	}
	from, err := ParseID("fromWarehouseId", r.FromWarehouseID)
	if err != nil {
		return stock.TransferInput{}, err
	}
	to, err := ParseID("toWarehouseId", r.ToWarehouseID)
	if err != nil {
		return stock.TransferInput{}, err
	}

	in := stock.TransferInput{
		MaterialID:      materialID,
		FromWarehouseID: from,
		ToWarehouseID:   to,
		Amount:          types.NewMeasure(r.Quantity, r.Unit),
		Reference:       r.Reference,
		CreatedBy:       createdBy,
	}
	if r.Date != nil {
		in.Date = *r.Date
	}
	return in, nil
}

// ReservationRequest reserves or releases stock in one warehouse.
type ReservationRequest struct {
	MaterialID  string         `json:"materialId" binding:"required"`
	WarehouseID string         `json:"warehouseId" binding:"required"`
	Quantity    types.Quantity `json:"quantity"`
}

func (r *ReservationRequest) IDs() (materialID, warehouseID id.ID, err error) {
	if materialID, err = ParseID("materialId", r.MaterialID); err != nil {
		return
	}
	warehouseID, err = ParseID("warehouseId", r.WarehouseID)
	return
}

// MovementQuery holds the ledger listing parameters.
type MovementQuery struct {
	PageQuery
	MaterialID  string `form:"material_id"`
	WarehouseID string `form:"warehouse_id"`
	Type        string `form:"type"`
	From        string `form:"from"`
	Before      string `form:"before"`
	Order       string `form:"order"`
}

// ToFilter converts the query; the listing is newest first unless order=asc.
func (q *MovementQuery) ToFilter() (stock.MovementFilter, error) {
	f := stock.MovementFilter{
		Limit:      q.Limit,
		Offset:     q.Offset,
		Descending: q.Order != "asc",
	}
	var err error
	if f.MaterialID, err = ParseOptionalID("material_id", q.MaterialID); err != nil {
		return f, err
	}
	if f.WarehouseID, err = ParseOptionalID("warehouse_id", q.WarehouseID); err != nil {
		return f, err
	}
	if q.Type != "" {
		f.Types = []stock.MovementType{stock.MovementType(q.Type)}
	}
	if q.From != "" {
		t, err := ParseInstant("from", q.From)
		if err != nil {
			return f, err
		}
		f.FromDate = &t
	}
	if q.Before != "" {
		t, err := ParseInstant("before", q.Before)
		if err != nil {
			return f, err
		}
		f.Before = &t
	}
	return f, nil
}

// StockAsOfResponse is the ledger-derived stock at an instant.
type StockAsOfResponse struct {
	MaterialID  id.ID          `json:"materialId"`
	WarehouseID *id.ID         `json:"warehouseId,omitempty"`
	At          time.Time      `json:"at"`
	Quantity    types.Quantity `json:"quantity"`
}

// BalancesResponse lists a material's stock rows with their valuation.
type BalancesResponse struct {
	MaterialID id.ID                 `json:"materialId"`
	Items      []stock.MaterialStock `json:"items"`
	Valuation  types.Money           `json:"valuation"`
}

// CostResponse is the result of an average cost recalculation.
type CostResponse struct {
	MaterialID  id.ID       `json:"materialId"`
	AverageCost types.Money `json:"averageCost"`
}
