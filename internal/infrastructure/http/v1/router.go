// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"restostock/internal/app"
	"restostock/internal/infrastructure/http/v1/handlers"
	"restostock/internal/infrastructure/http/v1/middleware"
	"restostock/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	Logger   *logger.Logger
	Services app.Services

	// DB is pinged by /health; nil reports healthy.
	DB handlers.Pinger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(log))
	router.Use(middleware.UserContext())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.NewHealthHandler(cfg.DB).Health)

	base := handlers.NewBaseHandler()
	api := router.Group("/api/v1")
	registerCatalogRoutes(api, base, cfg.Services)
	registerStockRoutes(api, base, cfg.Services)
	registerStockCountRoutes(api, base, cfg.Services)

	return router
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s app.Services) {
	materials := handlers.NewMaterialHandler(base, s.Materials)
	rg.POST("/materials", materials.Create)
	rg.GET("/materials", materials.List)
	rg.GET("/materials/:id", materials.Get)

	warehouses := handlers.NewWarehouseHandler(base, s.Warehouses)
	rg.POST("/warehouses", warehouses.Create)
	rg.GET("/warehouses", warehouses.List)
	rg.GET("/warehouses/:id", warehouses.Get)
}

func registerStockRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s app.Services) {
	h := handlers.NewStockHandler(base, s.Stock)
	st := rg.Group("/stock")
	{
		st.POST("/movements", h.RecordMovement)
		st.GET("/movements", h.ListMovements)
		st.POST("/transfers", h.Transfer)
		st.GET("/as-of", h.AsOf)
		st.GET("/balances/:materialId", h.Balances)
		st.POST("/reservations", h.Reserve)
		st.DELETE("/reservations", h.Release)
	}

	ch := handlers.NewConsistencyHandler(base, s.Reconciliation)
	cons := rg.Group("/consistency")
	{
		cons.GET("/report", ch.Report)
		cons.GET("/materials/:id", ch.CheckMaterial)
		cons.POST("/materials/:id/fix", ch.Fix)
		cons.POST("/fix-all", ch.FixAll)
	}

	costs := handlers.NewCostingHandler(base, s.Costing)
	rg.POST("/costing/materials/:id/recalculate", costs.Recalculate)
}

func registerStockCountRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, s app.Services) {
	h := handlers.NewStockCountHandler(base, s.StockCounts)
	counts := rg.Group("/stock-counts")
	{
		counts.POST("", h.Create)
		counts.GET("", h.List)
		counts.GET("/preview", h.Preview)
		counts.GET("/:id", h.Get)
		counts.GET("/:id/adjustments", h.Adjustments)
		counts.POST("/:id/items", h.AddItem)
		counts.POST("/:id/start", h.Start)
		counts.POST("/:id/pause", h.Pause)
		counts.POST("/:id/cancel", h.Cancel)
		counts.POST("/:id/recalculate", h.Recalculate)
		counts.POST("/:id/submit", h.Submit)
		counts.POST("/:id/approve", h.Approve)
		counts.POST("/:id/reject", h.Reject)
	}
	rg.PATCH("/stock-count-items/:itemId", h.UpdateItem)
}
