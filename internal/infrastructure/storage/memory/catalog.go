package memory

import (
	"context"
	"slices"
	"strings"

	"restostock/internal/core/apperror"
	"restostock/internal/core/id"
	"restostock/internal/core/types"
	"restostock/internal/domain"
	"restostock/internal/domain/catalogs/material"
	"restostock/internal/domain/catalogs/warehouse"
)

// MaterialRepo implements material.Repository.
type MaterialRepo struct{ s *Store }

var _ material.Repository = (*MaterialRepo)(nil)

func (r *MaterialRepo) Create(ctx context.Context, m *material.Material) error {
	return r.s.with(ctx, func(st *state) error {
		if _, exists := st.materials[m.ID]; exists {
			return apperror.NewConflict("material already exists").WithDetail("id", m.ID)
		}
		for _, other := range st.materials {
			if m.Code != "" && other.Code == m.Code {
				return apperror.NewConflict("material code already in use").WithDetail("code", m.Code)
			}
		}
		st.materials[m.ID] = *m
		return nil
	})
}

func (r *MaterialRepo) GetByID(ctx context.Context, materialID id.ID) (*material.Material, error) {
	var out *material.Material
	err := r.s.with(ctx, func(st *state) error {
		m, ok := st.materials[materialID]
		if !ok {
			return apperror.NewNotFound("material", materialID)
		}
		out = &m
		return nil
	})
	return out, err
}

// GetForUpdate needs no extra locking: the caller's transaction holds the store.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, materialID id.ID) (*material.Material, error) {
	return r.GetByID(ctx, materialID)
}

func (r *MaterialRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*material.Material], error) {
	filter.Normalize()
	result := domain.ListResult[*material.Material]{Limit: filter.Limit, Offset: filter.Offset}
	err := r.s.with(ctx, func(st *state) error {
		search := strings.ToLower(filter.Search)
		all := make([]*material.Material, 0, len(st.materials))
		for _, m := range st.materials {
			if !filter.IncludeInactive && !m.IsActive {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(m.Name), search) &&
				!strings.Contains(strings.ToLower(m.Code), search) {
				continue
			}
			all = append(all, &m)
		}
		sortMaterials(all)
		result.TotalCount = int64(len(all))
		result.Items = page(all, filter.Offset, filter.Limit)
		return nil
	})
	return result, err
}

func (r *MaterialRepo) ListActive(ctx context.Context) ([]*material.Material, error) {
	var out []*material.Material
	err := r.s.with(ctx, func(st *state) error {
		for _, m := range st.materials {
			if m.IsActive {
				out = append(out, &m)
			}
		}
		sortMaterials(out)
		return nil
	})
	return out, err
}

func (r *MaterialRepo) SetCurrentStock(ctx context.Context, materialID id.ID, qty types.Quantity) error {
	return r.update(ctx, materialID, func(m *material.Material) {
		m.CurrentStock = qty
	})
}

func (r *MaterialRepo) AddCurrentStock(ctx context.Context, materialID id.ID, delta types.Quantity) error {
	return r.update(ctx, materialID, func(m *material.Material) {
		m.CurrentStock += delta
	})
}

func (r *MaterialRepo) SetAverageCost(ctx context.Context, materialID id.ID, cost types.Money) error {
	return r.update(ctx, materialID, func(m *material.Material) {
		m.AverageCost = cost
	})
}

func (r *MaterialRepo) update(ctx context.Context, materialID id.ID, fn func(m *material.Material)) error {
	return r.s.with(ctx, func(st *state) error {
		m, ok := st.materials[materialID]
		if !ok {
			return apperror.NewNotFound("material", materialID)
		}
		fn(&m)
		st.materials[materialID] = m
		return nil
	})
}

func sortMaterials(ms []*material.Material) {
	slices.SortFunc(ms, func(a, b *material.Material) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct{ s *Store }

var _ warehouse.Repository = (*WarehouseRepo)(nil)

func (r *WarehouseRepo) Create(ctx context.Context, w *warehouse.Warehouse) error {
	return r.s.with(ctx, func(st *state) error {
		if _, exists := st.warehouses[w.ID]; exists {
			return apperror.NewConflict("warehouse already exists").WithDetail("id", w.ID)
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) GetByID(ctx context.Context, warehouseID id.ID) (*warehouse.Warehouse, error) {
	var out *warehouse.Warehouse
	err := r.s.with(ctx, func(st *state) error {
		w, ok := st.warehouses[warehouseID]
		if !ok {
			return apperror.NewNotFound("warehouse", warehouseID)
		}
		out = &w
		return nil
	})
	return out, err
}

func (r *WarehouseRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*warehouse.Warehouse], error) {
	filter.Normalize()
	result := domain.ListResult[*warehouse.Warehouse]{Limit: filter.Limit, Offset: filter.Offset}
	err := r.s.with(ctx, func(st *state) error {
		search := strings.ToLower(filter.Search)
		all := make([]*warehouse.Warehouse, 0, len(st.warehouses))
		for _, w := range st.warehouses {
			if !filter.IncludeInactive && !w.IsActive {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(w.Name), search) {
				continue
			}
			all = append(all, &w)
		}
		slices.SortFunc(all, func(a, b *warehouse.Warehouse) int {
			return strings.Compare(a.Name, b.Name)
		})
		result.TotalCount = int64(len(all))
		result.Items = page(all, filter.Offset, filter.Limit)
		return nil
	})
	return result, err
}

// page slices items by offset and limit. A limit <= 0 means no limit.
func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
