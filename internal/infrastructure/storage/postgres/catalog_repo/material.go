package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"restostock/internal/core/id"
	"restostock/internal/core/types"
	"restostock/internal/domain/catalogs/material"
	"restostock/internal/infrastructure/storage/postgres"
)

const materialTable = "cat_materials"

// MaterialRepo implements material.Repository.
type MaterialRepo struct {
	*BaseCatalogRepo[*material.Material]
}

var _ material.Repository = (*MaterialRepo)(nil)

// NewMaterialRepo creates a new material repository.
func NewMaterialRepo(txManager *postgres.TxManager) *MaterialRepo {
	return &MaterialRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			materialTable,
			"material",
			postgres.ExtractDBColumns[material.Material](),
			[]string{"name", "code"},
			func() *material.Material { return &material.Material{} },
		),
	}
}

// ListActive returns every active material ordered by name.
func (r *MaterialRepo) ListActive(ctx context.Context) ([]*material.Material, error) {
	sql, args, err := r.Builder().
		Select(r.selectCols...).
		From(materialTable).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("name ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]*material.Material, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list active materials: %w", err)
	}
	return out, nil
}

func (r *MaterialRepo) SetCurrentStock(ctx context.Context, materialID id.ID, qty types.Quantity) error {
	return r.update(ctx, materialID, map[string]any{"current_stock": qty})
}

func (r *MaterialRepo) AddCurrentStock(ctx context.Context, materialID id.ID, delta types.Quantity) error {
	return r.update(ctx, materialID, map[string]any{
		"current_stock": squirrel.Expr("current_stock + ?", delta),
	})
}

func (r *MaterialRepo) SetAverageCost(ctx context.Context, materialID id.ID, cost types.Money) error {
	return r.update(ctx, materialID, map[string]any{"average_cost": cost})
}
