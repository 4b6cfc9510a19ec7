package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"restostock/internal/infrastructure/storage/postgres"
)

// Pinger is satisfied by the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// poolStatter is implemented by *postgres.Pool.
type poolStatter interface {
	Stats() postgres.PoolStats
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new health handler. A nil db reports healthy.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"checks": map[string]string{"database": "unhealthy: " + err.Error()},
			})
			return
		}
	}
	resp := gin.H{
		"status": "ok",
		"checks": map[string]string{"database": "healthy"},
	}
	if ps, ok := h.db.(poolStatter); ok {
		resp["pool"] = ps.Stats()
	}
	c.JSON(http.StatusOK, resp)
}
