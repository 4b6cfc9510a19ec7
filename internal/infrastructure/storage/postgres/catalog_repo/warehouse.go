package catalog_repo

import (
	"restostock/internal/domain/catalogs/warehouse"
	"restostock/internal/infrastructure/storage/postgres"
)

const warehouseTable = "cat_warehouses"

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct {
	*BaseCatalogRepo[*warehouse.Warehouse]
}

var _ warehouse.Repository = (*WarehouseRepo)(nil)

// NewWarehouseRepo creates a new warehouse repository.
func NewWarehouseRepo(txManager *postgres.TxManager) *WarehouseRepo {
	return &WarehouseRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			warehouseTable,
			"warehouse",
			postgres.ExtractDBColumns[warehouse.Warehouse](),
			[]string{"name"},
			func() *warehouse.Warehouse { return &warehouse.Warehouse{} },
		),
	}
}
