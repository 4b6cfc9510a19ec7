// Package register_repo provides PostgreSQL implementations for register repositories.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"restostock/internal/core/apperror"
	"restostock/internal/core/id"
	"restostock/internal/core/types"
	"restostock/internal/domain/registers/stock"
	"restostock/internal/infrastructure/storage/postgres"
)

const (
	stockMovementsTable = "reg_stock_movements"
	materialStockTable  = "material_stock"
)

var movementColumns = []string{
	"id", "seq", "material_id", "warehouse_id", "type", "quantity",
	"unit_cost", "total_cost", "stock_before", "stock_after", "date",
	"invoice_id", "reference", "reason", "created_by", "created_at",
}

// movementInsertColumns omits seq, which the database assigns.
func movementInsertColumns() []string {
	cols := make([]string, 0, len(movementColumns)-1)
	for _, c := range movementColumns {
		if c != "seq" {
			cols = append(cols, c)
		}
	}
	return cols
}

var materialStockColumns = []string{
	"material_id", "warehouse_id", "current_stock", "reserved_stock",
	"available_stock", "average_cost", "last_updated",
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *StockRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// AppendMovement inserts the movement; seq comes from the table's sequence.
func (r *StockRepo) AppendMovement(ctx context.Context, m *stock.Movement) error {
	sql, args, err := r.builder.Insert(stockMovementsTable).
		Columns(movementInsertColumns()...).
		Values(
			m.ID, m.MaterialID, m.WarehouseID, string(m.Type), m.Quantity,
			m.UnitCost, m.TotalCost, m.StockBefore, m.StockAfter, m.Date,
			m.InvoiceID, m.Reference, m.Reason, m.CreatedBy, m.CreatedAt,
		).
		Suffix("RETURNING seq").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&m.Seq); err != nil {
		return postgres.MapError(err, "stock movement")
	}
	return nil
}

// movementsQuery builds the ledger SELECT for filter.
func (r *StockRepo) movementsQuery(filter stock.MovementFilter) squirrel.SelectBuilder {
	q := r.builder.Select(movementColumns...).From(stockMovementsTable)

	if filter.MaterialID != nil {
		q = q.Where(squirrel.Eq{"material_id": *filter.MaterialID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if len(filter.Types) > 0 {
		names := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			names[i] = string(t)
		}
		q = q.Where(squirrel.Eq{"type": names})
	}
	if filter.Before != nil {
		q = q.Where(squirrel.Lt{"date": *filter.Before})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.CostedOnly {
		q = q.Where(squirrel.Gt{"unit_cost": 0})
	}

	if filter.Descending {
		q = q.OrderBy("date DESC", "seq DESC")
	} else {
		q = q.OrderBy("date ASC", "seq ASC")
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

func (r *StockRepo) ListMovements(ctx context.Context, filter stock.MovementFilter) ([]stock.Movement, error) {
	sql, args, err := r.movementsQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]stock.Movement, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return out, nil
}

// UpdateSnapshots rewrites stock_before/stock_after in one batch.
func (r *StockRepo) UpdateSnapshots(ctx context.Context, movements []stock.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	queries := make([]postgres.BatchQuery, 0, len(movements))
	for _, m := range movements {
		sql, args, err := r.builder.Update(stockMovementsTable).
			Set("stock_before", m.StockBefore).
			Set("stock_after", m.StockAfter).
			Where(squirrel.Eq{"id": m.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}

	if err := postgres.NewBatchExecutor(r.txManager).ExecuteBatch(ctx, queries, true); err != nil {
		return fmt.Errorf("update snapshots: %w", err)
	}
	return nil
}

func (r *StockRepo) getMaterialStock(ctx context.Context, materialID, warehouseID id.ID, forUpdate bool) (*stock.MaterialStock, error) {
	q := r.builder.Select(materialStockColumns...).
		From(materialStockTable).
		Where(squirrel.Eq{"material_id": materialID, "warehouse_id": warehouseID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row stock.MaterialStock
	if err := pgxscan.Get(ctx, r.querier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("material stock", materialID.String()).
				WithDetail("warehouse_id", warehouseID.String())
		}
		return nil, fmt.Errorf("get material stock: %w", err)
	}
	return &row, nil
}

func (r *StockRepo) GetMaterialStock(ctx context.Context, materialID, warehouseID id.ID) (*stock.MaterialStock, error) {
	return r.getMaterialStock(ctx, materialID, warehouseID, false)
}

func (r *StockRepo) GetMaterialStockForUpdate(ctx context.Context, materialID, warehouseID id.ID) (*stock.MaterialStock, error) {
	return r.getMaterialStock(ctx, materialID, warehouseID, true)
}

func (r *StockRepo) listRows(ctx context.Context, where squirrel.Eq, orderBy string) ([]stock.MaterialStock, error) {
	sql, args, err := r.builder.Select(materialStockColumns...).
		From(materialStockTable).
		Where(where).
		OrderBy(orderBy).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]stock.MaterialStock, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list material stock: %w", err)
	}
	return out, nil
}

func (r *StockRepo) ListByMaterial(ctx context.Context, materialID id.ID) ([]stock.MaterialStock, error) {
	return r.listRows(ctx, squirrel.Eq{"material_id": materialID}, "warehouse_id ASC")
}

func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID id.ID) ([]stock.MaterialStock, error) {
	return r.listRows(ctx, squirrel.Eq{"warehouse_id": warehouseID}, "material_id ASC")
}

// UpsertMaterialStock writes the row, deriving available_stock first.
func (r *StockRepo) UpsertMaterialStock(ctx context.Context, row *stock.MaterialStock) error {
	row.Recompute()

	sql, args, err := r.builder.Insert(materialStockTable).
		Columns(materialStockColumns...).
		Values(
			row.MaterialID, row.WarehouseID, row.CurrentStock, row.ReservedStock,
			row.AvailableStock, row.AverageCost, row.LastUpdated,
		).
		Suffix(`ON CONFLICT (material_id, warehouse_id) DO UPDATE SET
			current_stock = EXCLUDED.current_stock,
			reserved_stock = EXCLUDED.reserved_stock,
			available_stock = EXCLUDED.available_stock,
			average_cost = EXCLUDED.average_cost,
			last_updated = EXCLUDED.last_updated`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "material stock")
	}
	return nil
}

func (r *StockRepo) SetAverageCost(ctx context.Context, materialID id.ID, cost types.Money) error {
	sql, args, err := r.builder.Update(materialStockTable).
		Set("average_cost", cost).
		Where(squirrel.Eq{"material_id": materialID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("set average cost: %w", err)
	}
	return nil
}
