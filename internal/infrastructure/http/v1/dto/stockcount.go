package dto

import (
	"restostock/internal/core/types"
	"restostock/internal/domain/documents/stockcount"
)

// CreateStockCountRequest is the request body for opening a count.
type CreateStockCountRequest struct {
	WarehouseID      string `json:"warehouseId" binding:"required"`
	CountDate        string `json:"countDate" binding:"required"`
	CountTime        string `json:"countTime"`
	CountedBy        string `json:"countedBy"`
	Notes            string `json:"notes"`
	StartImmediately bool   `json:"startImmediately"`
}

func (r *CreateStockCountRequest) ToInput() (stockcount.CreateInput, error) {
	warehouseID, err := ParseID("warehouseId", r.WarehouseID)
	if err != nil {
		return stockcount.CreateInput{}, err
	}
	date, err := ParseDate("countDate", r.CountDate)
	if err != nil {
		return stockcount.CreateInput{}, err
	}
	return stockcount.CreateInput{
		WarehouseID:      warehouseID,
		CountDate:        date,
		CountTime:        r.CountTime,
		CountedBy:        r.CountedBy,
		Notes:            r.Notes,
		StartImmediately: r.StartImmediately,
	}, nil
}

// StockCountQuery holds the count listing parameters.
type StockCountQuery struct {
	PageQuery
	WarehouseID string `form:"warehouse_id"`
	Status      string `form:"status"`
}

func (q *StockCountQuery) ToFilter() (stockcount.ListFilter, error) {
	f := stockcount.ListFilter{Limit: q.Limit, Offset: q.Offset}
	var err error
	if f.WarehouseID, err = ParseOptionalID("warehouse_id", q.WarehouseID); err != nil {
		return f, err
	}
	if q.Status != "" {
		s := stockcount.Status(q.Status)
		f.Status = &s
	}
	return f, nil
}

// PreviewQuery selects the warehouse and instant of a count preview.
type PreviewQuery struct {
	WarehouseID string `form:"warehouse_id" binding:"required"`
	CountDate   string `form:"count_date" binding:"required"`
	CountTime   string `form:"count_time"`
}

type AddItemRequest struct {
	MaterialID string `json:"materialId" binding:"required"`
}

// UpdateItemRequest records a physical count.
type UpdateItemRequest struct {
	CountedStock *types.Quantity `json:"countedStock" binding:"required"`
	Reason       string          `json:"reason"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

// ApproveRequest may name the approver; the caller identity is used otherwise.
type ApproveRequest struct {
	ApprovedBy string `json:"approvedBy"`
}
