// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"restostock/internal/core/apperror"
	"restostock/internal/core/id"
	"restostock/internal/domain/documents/stockcount"
	"restostock/internal/infrastructure/storage/postgres"
)

const (
	stockCountsTable     = "stock_counts"
	stockCountItemsTable = "stock_count_items"
	adjustmentsTable     = "stock_adjustments"

	itemMaterialConstraint = "stock_count_items_count_material_key"
)

var (
	countColumns      = postgres.ExtractDBColumns[stockcount.StockCount]()
	itemColumns       = postgres.ExtractDBColumns[stockcount.Item]()
	adjustmentColumns = postgres.ExtractDBColumns[stockcount.Adjustment]()
)

// StockCountRepo implements stockcount.Repository.
type StockCountRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ stockcount.Repository = (*StockCountRepo)(nil)

// NewStockCountRepo creates a new stock count repository.
func NewStockCountRepo(txManager *postgres.TxManager) *StockCountRepo {
	return &StockCountRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *StockCountRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *StockCountRepo) Create(ctx context.Context, c *stockcount.StockCount) error {
	data := postgres.Pick(postgres.StructToMap(c), countColumns)

	sql, args, err := r.builder.Insert(stockCountsTable).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "stock count")
	}
	return nil
}

func (r *StockCountRepo) get(ctx context.Context, countID id.ID, forUpdate bool) (*stockcount.StockCount, error) {
	q := r.builder.Select(countColumns...).
		From(stockCountsTable).
		Where(squirrel.Eq{"id": countID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c stockcount.StockCount
	if err := pgxscan.Get(ctx, r.querier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock count", countID.String())
		}
		return nil, fmt.Errorf("get stock count: %w", err)
	}
	return &c, nil
}

func (r *StockCountRepo) GetByID(ctx context.Context, countID id.ID) (*stockcount.StockCount, error) {
	return r.get(ctx, countID, false)
}

func (r *StockCountRepo) GetForUpdate(ctx context.Context, countID id.ID) (*stockcount.StockCount, error) {
	return r.get(ctx, countID, true)
}

func (r *StockCountRepo) listQuery(filter stockcount.ListFilter) squirrel.SelectBuilder {
	q := r.builder.Select(countColumns...).From(stockCountsTable)
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": string(*filter.Status)})
	}
	return q
}

// List returns counts newest first together with the unpaginated total.
func (r *StockCountRepo) List(ctx context.Context, filter stockcount.ListFilter) ([]*stockcount.StockCount, int64, error) {
	q := r.listQuery(filter)

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock counts: %w", err)
	}

	q = q.OrderBy("count_date DESC", "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	out := make([]*stockcount.StockCount, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list stock counts: %w", err)
	}
	return out, total, nil
}

// UpdateStatus is a compare-and-set on status.
func (r *StockCountRepo) UpdateStatus(ctx context.Context, c *stockcount.StockCount, expected stockcount.Status) error {
	sql, args, err := r.builder.Update(stockCountsTable).
		Set("status", string(c.Status)).
		Set("approved_by", c.ApprovedBy).
		Set("completed_at", c.CompletedAt).
		Set("notes", c.Notes).
		Set("updated_at", c.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": c.ID, "status": string(expected)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock count status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.get(ctx, c.ID, false); getErr != nil {
			return getErr
		}
		return apperror.NewConcurrentModification("stock count", c.ID).
			WithDetail("expected", string(expected))
	}
	c.IncrementVersion()
	return nil
}

// CreateItems bulk inserts with COPY; it must run inside a transaction.
func (r *StockCountRepo) CreateItems(ctx context.Context, items []stockcount.Item) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(items))
	for i := range items {
		data := postgres.StructToMap(&items[i])
		row := make([]any, len(itemColumns))
		for j, col := range itemColumns {
			row[j] = data[col]
		}
		rows = append(rows, row)
	}

	_, err := postgres.NewBatchInserter(r.txManager).CopyFromSlice(ctx, stockCountItemsTable, itemColumns, rows)
	if err != nil {
		if postgres.IsUniqueViolation(err, itemMaterialConstraint) {
			return apperror.NewDuplicateItem(items[0].StockCountID, duplicateHint(items))
		}
		return fmt.Errorf("copy stock count items: %w", err)
	}
	return nil
}

// duplicateHint names the material when a single item was inserted.
func duplicateHint(items []stockcount.Item) any {
	if len(items) == 1 {
		return items[0].MaterialID
	}
	return nil
}

func (r *StockCountRepo) ListItems(ctx context.Context, countID id.ID) ([]stockcount.Item, error) {
	sql, args, err := r.builder.Select(itemColumns...).
		From(stockCountItemsTable).
		Where(squirrel.Eq{"stock_count_id": countID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]stockcount.Item, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock count items: %w", err)
	}
	return out, nil
}

func (r *StockCountRepo) GetItem(ctx context.Context, itemID id.ID) (*stockcount.Item, error) {
	sql, args, err := r.builder.Select(itemColumns...).
		From(stockCountItemsTable).
		Where(squirrel.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var it stockcount.Item
	if err := pgxscan.Get(ctx, r.querier(ctx), &it, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock count item", itemID.String())
		}
		return nil, fmt.Errorf("get stock count item: %w", err)
	}
	return &it, nil
}

func (r *StockCountRepo) UpdateItem(ctx context.Context, item *stockcount.Item) error {
	sql, args, err := r.builder.Update(stockCountItemsTable).
		Set("system_stock", item.SystemStock).
		Set("counted_stock", item.CountedStock).
		Set("difference", item.Difference).
		Set("reason", item.Reason).
		Set("is_completed", item.IsCompleted).
		Set("counted_at", item.CountedAt).
		Set("updated_at", item.UpdatedAt).
		Where(squirrel.Eq{"id": item.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock count item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock count item", item.ID.String())
	}
	return nil
}

func (r *StockCountRepo) CreateAdjustments(ctx context.Context, adjustments []stockcount.Adjustment) error {
	if len(adjustments) == 0 {
		return nil
	}

	q := r.builder.Insert(adjustmentsTable).Columns(adjustmentColumns...)
	for i := range adjustments {
		data := postgres.StructToMap(&adjustments[i])
		values := make([]any, len(adjustmentColumns))
		for j, col := range adjustmentColumns {
			values[j] = data[col]
		}
		q = q.Values(values...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "stock adjustment")
	}
	return nil
}

func (r *StockCountRepo) ListAdjustments(ctx context.Context, countID id.ID) ([]stockcount.Adjustment, error) {
	sql, args, err := r.builder.Select(adjustmentColumns...).
		From(adjustmentsTable).
		Where(squirrel.Eq{"stock_count_id": countID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]stockcount.Adjustment, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	return out, nil
}
