package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"restostock/internal/core/id"
	"restostock/internal/core/types"
	"restostock/internal/domain/registers/stock"
	"restostock/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for the stock register.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// RecordMovement handles POST /stock/movements
func (h *StockHandler) RecordMovement(c *gin.Context) {
	var req dto.MovementRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(h.UserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	m, err := h.service.Record(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m)
}

// Transfer handles POST /stock/transfers
func (h *StockHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(h.UserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	movements, err := h.service.Transfer(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, gin.H{"items": movements})
}

// ListMovements handles GET /stock/movements
func (h *StockHandler) ListMovements(c *gin.Context) {
	var q dto.MovementQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	movements, err := h.service.History(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": movements})
}

// AsOf handles GET /stock/as-of?material_id&warehouse_id&at
func (h *StockHandler) AsOf(c *gin.Context) {
	materialID, err := dto.ParseID("material_id", c.Query("material_id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	warehouseID, err := dto.ParseOptionalID("warehouse_id", c.Query("warehouse_id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	at := time.Now().UTC()
	if raw := c.Query("at"); raw != "" {
		if at, err = dto.ParseInstant("at", raw); err != nil {
			h.Error(c, err)
			return
		}
	}

	qty, err := h.service.StockAsOf(c.Request.Context(), materialID, warehouseID, at)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.StockAsOfResponse{MaterialID: materialID, WarehouseID: warehouseID, At: at, Quantity: qty})
}

// Balances handles GET /stock/balances/:materialId
func (h *StockHandler) Balances(c *gin.Context) {
	materialID, ok := h.PathID(c, "materialId")
	if !ok {
		return
	}
	rows, err := h.service.Balances(c.Request.Context(), materialID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.BalancesResponse{MaterialID: materialID, Items: rows, Valuation: stock.Valuation(rows)})
}

// Reserve handles POST /stock/reservations
func (h *StockHandler) Reserve(c *gin.Context) {
	h.reservation(c, h.service.Reserve)
}

// Release handles DELETE /stock/reservations
func (h *StockHandler) Release(c *gin.Context) {
	h.reservation(c, h.service.Release)
}

func (h *StockHandler) reservation(c *gin.Context, apply func(ctx context.Context, materialID, warehouseID id.ID, qty types.Quantity) (*stock.MaterialStock, error)) {
	var req dto.ReservationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	materialID, warehouseID, err := req.IDs()
	if err != nil {
		h.Error(c, err)
		return
	}
	row, err := apply(c.Request.Context(), materialID, warehouseID, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, row)
}
