// Package app wires repositories and domain services together.
package app

import (
	"context"
	"fmt"

	"restostock/internal/core/numerator"
	"restostock/internal/core/tx"
	"restostock/internal/core/types"
	"restostock/internal/domain/audit"
	"restostock/internal/domain/catalogs/material"
	"restostock/internal/domain/catalogs/warehouse"
	"restostock/internal/domain/costing"
	"restostock/internal/domain/documents/stockcount"
	"restostock/internal/domain/reconciliation"
	"restostock/internal/domain/registers/stock"
	numeratorpg "restostock/internal/infrastructure/numerator"
	"restostock/internal/infrastructure/storage/memory"
	"restostock/internal/infrastructure/storage/postgres"
	"restostock/internal/infrastructure/storage/postgres/catalog_repo"
	"restostock/internal/infrastructure/storage/postgres/document_repo"
	"restostock/internal/infrastructure/storage/postgres/register_repo"
)

// Repositories is the storage a Services set runs on.
type Repositories struct {
	Materials   material.Repository
	Warehouses  warehouse.Repository
	Stock       stock.Repository
	StockCounts stockcount.Repository
	Audit       audit.Recorder
	Numerator   numerator.Generator
	TxManager   tx.Manager
}

// Settings are the tunables of the domain services.
type Settings struct {
	Epsilon    types.Quantity
	CostWindow int
	StockCount stockcount.Config
}

// DefaultSettings returns the built-in tolerances and numbering.
func DefaultSettings() Settings {
	return Settings{
		Epsilon:    types.Epsilon,
		CostWindow: costing.DefaultWindow,
		StockCount: stockcount.DefaultConfig(),
	}
}

// Services groups the domain services.
type Services struct {
	Materials      *material.Service
	Warehouses     *warehouse.Service
	Stock          *stock.Service
	Reconciliation *reconciliation.Service
	Costing        *costing.Service
	StockCounts    *stockcount.Service
}

// NewServices builds every service over repos.
func NewServices(repos Repositories, s Settings) Services {
	costs := costing.NewService(repos.Stock, repos.Materials, repos.TxManager, s.CostWindow)

	ledger := stock.NewService(repos.Stock, repos.Materials, repos.Warehouses, repos.TxManager)
	ledger.SetCostRecalculator(costs)

	recon := reconciliation.NewService(repos.Materials, repos.Stock, repos.TxManager, repos.Audit, s.Epsilon)

	counts := stockcount.NewService(stockcount.Deps{
		Repo:       repos.StockCounts,
		Ledger:     ledger,
		Materials:  repos.Materials,
		Warehouses: repos.Warehouses,
		Reconciler: recon,
		Costs:      costs,
		Numerator:  repos.Numerator,
		TxManager:  repos.TxManager,
		Audit:      repos.Audit,
	}, s.StockCount)

	return Services{
		Materials:      material.NewService(repos.Materials),
		Warehouses:     warehouse.NewService(repos.Warehouses),
		Stock:          ledger,
		Reconciliation: recon,
		Costing:        costs,
		StockCounts:    counts,
	}
}

// MemoryRepositories exposes an in-memory store as Repositories.
func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Materials:   store.Materials(),
		Warehouses:  store.Warehouses(),
		Stock:       store.Stock(),
		StockCounts: store.StockCounts(),
		Audit:       store.Audit(),
		Numerator:   store.Numerator(),
		TxManager:   store,
	}
}

// PostgresRepositories builds the postgres repositories over txm.
func PostgresRepositories(txm *postgres.TxManager, auditCompressThreshold int) (Repositories, error) {
	auditRepo, err := postgres.NewAuditRepo(txm, auditCompressThreshold)
	if err != nil {
		return Repositories{}, fmt.Errorf("audit repo: %w", err)
	}
	nums := numeratorpg.NewWithResolver(func(ctx context.Context) numeratorpg.Querier {
		return txm.GetQuerier(ctx)
	})
	return Repositories{
		Materials:   catalog_repo.NewMaterialRepo(txm),
		Warehouses:  catalog_repo.NewWarehouseRepo(txm),
		Stock:       register_repo.NewStockRepo(txm),
		StockCounts: document_repo.NewStockCountRepo(txm),
		Audit:       auditRepo,
		Numerator:   nums,
		TxManager:   txm,
	}, nil
}
