package handlers

import (
	"github.com/gin-gonic/gin"

	"restostock/internal/domain/costing"
	"restostock/internal/domain/reconciliation"
	"restostock/internal/infrastructure/http/v1/dto"
)

// ConsistencyHandler exposes the checker and fixer.
type ConsistencyHandler struct {
	*BaseHandler
	service *reconciliation.Service
}

func NewConsistencyHandler(base *BaseHandler, service *reconciliation.Service) *ConsistencyHandler {
	return &ConsistencyHandler{BaseHandler: base, service: service}
}

// Report handles GET /consistency/report
func (h *ConsistencyHandler) Report(c *gin.Context) {
	report, err := h.service.Report(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// CheckMaterial handles GET /consistency/materials/:id
func (h *ConsistencyHandler) CheckMaterial(c *gin.Context) {
	materialID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	summary, err := h.service.CheckMaterial(c.Request.Context(), materialID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// Fix handles POST /consistency/materials/:id/fix
func (h *ConsistencyHandler) Fix(c *gin.Context) {
	materialID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	result, err := h.service.Fix(c.Request.Context(), materialID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// FixAll handles POST /consistency/fix-all
func (h *ConsistencyHandler) FixAll(c *gin.Context) {
	result, err := h.service.FixAll(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// CostingHandler triggers average cost recalculation.
type CostingHandler struct {
	*BaseHandler
	service *costing.Service
}

func NewCostingHandler(base *BaseHandler, service *costing.Service) *CostingHandler {
	return &CostingHandler{BaseHandler: base, service: service}
}

// Recalculate handles POST /costing/materials/:id/recalculate
func (h *CostingHandler) Recalculate(c *gin.Context) {
	materialID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	avg, err := h.service.Recalculate(c.Request.Context(), materialID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CostResponse{MaterialID: materialID, AverageCost: avg})
}
