package handlers

import (
	"github.com/gin-gonic/gin"

	"restostock/internal/domain"
	"restostock/internal/domain/catalogs/material"
	"restostock/internal/domain/catalogs/warehouse"
	"restostock/internal/infrastructure/http/v1/dto"
)

// MaterialHandler handles HTTP requests for the material catalog.
type MaterialHandler struct {
	*BaseHandler
	service *material.Service
}

func NewMaterialHandler(base *BaseHandler, service *material.Service) *MaterialHandler {
	return &MaterialHandler{BaseHandler: base, service: service}
}

// Create handles POST /materials
func (h *MaterialHandler) Create(c *gin.Context) {
	var req dto.CreateMaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}
	m, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromMaterial(m))
}

// Get handles GET /materials/:id
func (h *MaterialHandler) Get(c *gin.Context) {
	materialID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	m, err := h.service.Get(c.Request.Context(), materialID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromMaterial(m))
}

// List handles GET /materials
func (h *MaterialHandler) List(c *gin.Context) {
	var q dto.CatalogQuery
	if !h.BindQuery(c, &q) {
		return
	}
	res, err := h.service.List(c.Request.Context(), catalogFilter(q))
	if err != nil {
		h.Error(c, err)
		return
	}
	items := make([]dto.MaterialResponse, len(res.Items))
	for i, m := range res.Items {
		items[i] = dto.FromMaterial(m)
	}
	h.OK(c, dto.ListResponse[dto.MaterialResponse]{
		Items:      items,
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	})
}

// WarehouseHandler handles HTTP requests for the warehouse catalog.
type WarehouseHandler struct {
	*BaseHandler
	service *warehouse.Service
}

func NewWarehouseHandler(base *BaseHandler, service *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{BaseHandler: base, service: service}
}

// Create handles POST /warehouses
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req dto.CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	w, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, w)
}

// Get handles GET /warehouses/:id
func (h *WarehouseHandler) Get(c *gin.Context) {
	warehouseID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	w, err := h.service.Get(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, w)
}

// List handles GET /warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	var q dto.CatalogQuery
	if !h.BindQuery(c, &q) {
		return
	}
	res, err := h.service.List(c.Request.Context(), catalogFilter(q))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[*warehouse.Warehouse]{
		Items:      res.Items,
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	})
}

func catalogFilter(q dto.CatalogQuery) domain.ListFilter {
	f := domain.ListFilter{
		Search:          q.Search,
		IncludeInactive: q.IncludeInactive,
		Limit:           q.Limit,
		Offset:          q.Offset,
	}
	f.Normalize()
	return f
}
