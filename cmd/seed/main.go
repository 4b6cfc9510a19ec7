// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"restostock/internal/app"
	"restostock/internal/config"
	"restostock/internal/core/apperror"
	appctx "restostock/internal/core/context"
	"restostock/internal/core/types"
	"restostock/internal/domain"
	"restostock/internal/domain/catalogs/material"
	"restostock/internal/domain/catalogs/warehouse"
	"restostock/internal/domain/registers/stock"
	"restostock/internal/infrastructure/storage/postgres"
	"restostock/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "seed", Name: "seed"})

	pool, err := postgres.NewPool(ctx, cfg.Pool())
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	repos, err := app.PostgresRepositories(postgres.NewTxManager(pool), cfg.Audit.CompressThreshold)
	if err != nil {
		log.Fatalw("failed to build repositories", "error", err)
	}
	services := app.NewServices(repos, app.Settings{
		Epsilon:    cfg.Epsilon(),
		CostWindow: cfg.Stock.CostWindow,
		StockCount: cfg.StockCount(),
	})

	n, err := seedDemoData(ctx, services, log)
	if err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}
	log.Infow("seeding complete", "materials", n)
}

type demoMaterial struct {
	code     string
	name     string
	category string
	purchase types.Unit
	consume  types.Unit
	minStock types.Quantity
	// opening receipt in the purchase unit
	received types.Quantity
	unitCost string
	cold     bool
}

var demoMaterials = []demoMaterial{
	{"FLR-001", "Wheat flour", "dry goods", types.UnitKilogram, types.UnitGram, types.NewQuantity(5000), types.NewQuantity(25), "0.0012", false},
	{"SUG-001", "Sugar", "dry goods", types.UnitKilogram, types.UnitGram, types.NewQuantity(2000), types.NewQuantity(10), "0.0015", false},
	{"MLK-001", "Whole milk", "dairy", types.UnitLiter, types.UnitMilliliter, types.NewQuantity(3000), types.NewQuantity(12), "0.0011", true},
	{"EGG-001", "Eggs", "dairy", types.UnitPiece, types.UnitPiece, types.NewQuantity(30), types.NewQuantity(120), "0.25", true},
}

// seedDemoData creates two warehouses and a handful of materials with an
// opening receipt each. Materials whose code already exists are skipped.
func seedDemoData(ctx context.Context, s app.Services, log *logger.Logger) (int, error) {
	dry, err := ensureWarehouse(ctx, s.Warehouses, warehouse.CreateInput{Name: "Dry store", Type: warehouse.TypeDry})
	if err != nil {
		return 0, err
	}
	minT, maxT := 0.0, 5.0
	cold, err := ensureWarehouse(ctx, s.Warehouses, warehouse.CreateInput{
		Name:           "Cold room",
		Type:           warehouse.TypeCold,
		MinTemperature: &minT,
		MaxTemperature: &maxT,
	})
	if err != nil {
		return 0, err
	}

	created := 0
	for _, d := range demoMaterials {
		wh := dry
		if d.cold {
			wh = cold
		}

		m, err := s.Materials.Create(ctx, material.CreateInput{
			Code:               d.code,
			Name:               d.name,
			Category:           d.category,
			PurchaseUnit:       d.purchase,
			ConsumptionUnit:    d.consume,
			MinStockLevel:      d.minStock,
			DefaultWarehouseID: &wh.ID,
		})
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeConflict {
				log.Infow("material already exists, skipping", "code", d.code)
				continue
			}
			return created, fmt.Errorf("create material %s: %w", d.code, err)
		}

		if _, err := s.Stock.Record(ctx, stock.MovementInput{
			MaterialID:  m.ID,
			WarehouseID: wh.ID,
			Type:        stock.MovementIn,
			Amount:      types.NewMeasure(d.received, d.purchase),
			UnitCost:    types.MustMoney(d.unitCost),
			Reference:   "opening balance",
			CreatedBy:   "seed",
		}); err != nil {
			return created, fmt.Errorf("receive %s: %w", d.code, err)
		}

		log.Infow("seeded material", "code", d.code, "warehouse", wh.Name)
		created++
	}
	return created, nil
}

// ensureWarehouse returns the active warehouse with the given name, creating it
// when absent.
func ensureWarehouse(ctx context.Context, svc *warehouse.Service, in warehouse.CreateInput) (*warehouse.Warehouse, error) {
	existing, err := svc.List(ctx, domain.ListFilter{Search: in.Name})
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	for _, w := range existing.Items {
		if w.Name == in.Name {
			return w, nil
		}
	}
	w, err := svc.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create warehouse %q: %w", in.Name, err)
	}
	return w, nil
}
