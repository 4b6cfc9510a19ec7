// Package catalog_repo provides PostgreSQL implementations for catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"restostock/internal/core/apperror"
	"restostock/internal/core/id"
	"restostock/internal/domain"
	"restostock/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo provides common CRUD operations for catalog entities.
// Embed this in specific catalog repositories.
type BaseCatalogRepo[T any] struct {
	txManager  *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	searchCols []string
	newFn      func() T
}

// NewBaseCatalogRepo creates a new base catalog repository.
func NewBaseCatalogRepo[T any](
	txManager *postgres.TxManager,
	tableName, entityName string,
	selectCols, searchCols []string,
	newFn func() T,
) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		entityName: entityName,
		selectCols: selectCols,
		searchCols: searchCols,
		newFn:      newFn,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseCatalogRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	data := postgres.Pick(postgres.StructToMap(entity), r.selectCols)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	sql, args, err := r.Builder().Insert(r.tableName).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, r.entityName)
	}
	return nil
}

func (r *BaseCatalogRepo[T]) get(ctx context.Context, entityID id.ID, forUpdate bool) (T, error) {
	entity := r.newFn()

	q := r.Builder().
		Select(r.selectCols...).
		From(r.tableName).
		Where(squirrel.Eq{"id": entityID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.entityName, entityID.String())
		}
		return entity, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return entity, nil
}

// GetByID retrieves entity by ID.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.get(ctx, entityID, false)
}

// GetForUpdate retrieves entity by ID with row lock.
func (r *BaseCatalogRepo[T]) GetForUpdate(ctx context.Context, entityID id.ID) (T, error) {
	return r.get(ctx, entityID, true)
}

// listQuery builds the filtered, unpaginated SELECT for List.
func (r *BaseCatalogRepo[T]) listQuery(filter domain.ListFilter) squirrel.SelectBuilder {
	q := r.Builder().Select(r.selectCols...).From(r.tableName)

	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	if filter.Search != "" && len(r.searchCols) > 0 {
		pattern := "%" + filter.Search + "%"
		or := make(squirrel.Or, 0, len(r.searchCols))
		for _, col := range r.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}
	return q
}

// List retrieves entities with filtering and pagination, ordered by name.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	filter.Normalize()
	result := domain.ListResult[T]{Limit: filter.Limit, Offset: filter.Offset}
	q := r.listQuery(filter)

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	sql, args, err := q.OrderBy("name ASC", "id ASC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	result.Items = make([]T, 0)
	if err := pgxscan.Select(ctx, r.querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.entityName, err)
	}
	return result, nil
}

// update applies a SET clause to one row and reports NotFound if it is missing.
func (r *BaseCatalogRepo[T]) update(ctx context.Context, entityID id.ID, set map[string]any) error {
	sql, args, err := r.Builder().
		Update(r.tableName).
		SetMap(set).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.entityName, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}
