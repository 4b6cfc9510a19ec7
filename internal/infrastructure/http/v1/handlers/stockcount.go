package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"restostock/internal/core/id"
	"restostock/internal/domain/documents/stockcount"
	"restostock/internal/infrastructure/http/v1/dto"
)

// StockCountHandler handles the stock count workflow.
type StockCountHandler struct {
	*BaseHandler
	service *stockcount.Service
}

func NewStockCountHandler(base *BaseHandler, service *stockcount.Service) *StockCountHandler {
	return &StockCountHandler{BaseHandler: base, service: service}
}

// Create handles POST /stock-counts
func (h *StockCountHandler) Create(c *gin.Context) {
	var req dto.CreateStockCountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}
	details, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, details)
}

// List handles GET /stock-counts
func (h *StockCountHandler) List(c *gin.Context) {
	var q dto.StockCountQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	counts, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[*stockcount.StockCount]{
		Items:      counts,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Preview handles GET /stock-counts/preview
func (h *StockCountHandler) Preview(c *gin.Context) {
	var q dto.PreviewQuery
	if !h.BindQuery(c, &q) {
		return
	}
	warehouseID, err := dto.ParseID("warehouse_id", q.WarehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	date, err := dto.ParseDate("count_date", q.CountDate)
	if err != nil {
		h.Error(c, err)
		return
	}
	preview, err := h.service.Preview(c.Request.Context(), warehouseID, date, q.CountTime)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, preview)
}

// Get handles GET /stock-counts/:id
func (h *StockCountHandler) Get(c *gin.Context) {
	h.withCount(c, func(ctx context.Context, countID id.ID) (any, error) {
		return h.service.Get(ctx, countID)
	})
}

// Adjustments handles GET /stock-counts/:id/adjustments
func (h *StockCountHandler) Adjustments(c *gin.Context) {
	h.withCount(c, func(ctx context.Context, countID id.ID) (any, error) {
		adjustments, err := h.service.Adjustments(ctx, countID)
		if err != nil {
			return nil, err
		}
		return gin.H{"items": adjustments}, nil
	})
}

// Start handles POST /stock-counts/:id/start
func (h *StockCountHandler) Start(c *gin.Context) {
	h.withCount(c, func(ctx context.Context, countID id.ID) (any, error) {
		return h.service.Start(ctx, countID)
	})
}

// Pause handles POST /stock-counts/:id/pause
func (h *StockCountHandler) Pause(c *gin.Context) {
	h.withCount(c, func(ctx context.Context, countID id.ID) (any, error) {
		return h.service.Pause(ctx, countID)
	})
}

// Cancel handles POST /stock-counts/:id/cancel
func (h *StockCountHandler) Cancel(c *gin.Context) {
	h.withCount(c, func(ctx context.Context, countID id.ID) (any, error) {
		return h.service.Cancel(ctx, countID)
	})
}

// Recalculate handles POST /stock-counts/:id/recalculate
func (h *StockCountHandler) Recalculate(c *gin.Context) {
	h.withCount(c, func(ctx context.Context, countID id.ID) (any, error) {
		return h.service.Recalculate(ctx, countID)
	})
}

// Submit handles POST /stock-counts/:id/submit
func (h *StockCountHandler) Submit(c *gin.Context) {
	h.withCount(c, func(ctx context.Context, countID id.ID) (any, error) {
		return h.service.Submit(ctx, countID)
	})
}

// Approve handles POST /stock-counts/:id/approve. The body is optional.
func (h *StockCountHandler) Approve(c *gin.Context) {
	var req dto.ApproveRequest
	if !h.BindOptionalJSON(c, &req) {
		return
	}
	h.withCount(c, func(ctx context.Context, countID id.ID) (any, error) {
		return h.service.Approve(ctx, countID, req.ApprovedBy)
	})
}

// Reject handles POST /stock-counts/:id/reject
func (h *StockCountHandler) Reject(c *gin.Context) {
	var req dto.RejectRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.withCount(c, func(ctx context.Context, countID id.ID) (any, error) {
		return h.service.Reject(ctx, countID, req.Reason)
	})
}

// AddItem handles POST /stock-counts/:id/items
func (h *StockCountHandler) AddItem(c *gin.Context) {
	countID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	materialID, err := dto.ParseID("materialId", req.MaterialID)
	if err != nil {
		h.Error(c, err)
		return
	}
	item, err := h.service.AddItem(c.Request.Context(), countID, materialID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, item)
}

// UpdateItem handles PATCH /stock-count-items/:itemId
func (h *StockCountHandler) UpdateItem(c *gin.Context) {
	itemID, ok := h.PathID(c, "itemId")
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.service.UpdateItem(c.Request.Context(), itemID, *req.CountedStock, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// withCount parses :id, runs fn and writes its result.
func (h *StockCountHandler) withCount(c *gin.Context, fn func(ctx context.Context, countID id.ID) (any, error)) {
	countID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	out, err := fn(c.Request.Context(), countID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, out)
}
