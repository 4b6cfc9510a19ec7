package memory

import (
	"context"
	"slices"

	"restostock/internal/core/apperror"
	"restostock/internal/core/id"
	"restostock/internal/domain/documents/stockcount"
)

// StockCountRepo implements stockcount.Repository.
type StockCountRepo struct{ s *Store }

var _ stockcount.Repository = (*StockCountRepo)(nil)

func (r *StockCountRepo) Create(ctx context.Context, c *stockcount.StockCount) error {
	return r.s.with(ctx, func(st *state) error {
		for _, other := range st.counts {
			if other.Number == c.Number {
				return apperror.NewConflict("stock count number already in use").WithDetail("number", c.Number)
			}
		}
		st.counts[c.ID] = *c
		return nil
	})
}

func (r *StockCountRepo) GetByID(ctx context.Context, countID id.ID) (*stockcount.StockCount, error) {
	var out *stockcount.StockCount
	err := r.s.with(ctx, func(st *state) error {
		c, ok := st.counts[countID]
		if !ok {
			return apperror.NewNotFound("stock count", countID)
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *StockCountRepo) GetForUpdate(ctx context.Context, countID id.ID) (*stockcount.StockCount, error) {
	return r.GetByID(ctx, countID)
}

func (r *StockCountRepo) List(ctx context.Context, filter stockcount.ListFilter) ([]*stockcount.StockCount, int64, error) {
	var (
		out   []*stockcount.StockCount
		total int64
	)
	err := r.s.with(ctx, func(st *state) error {
		all := make([]*stockcount.StockCount, 0, len(st.counts))
		for _, c := range st.counts {
			if filter.WarehouseID != nil && c.WarehouseID != *filter.WarehouseID {
				continue
			}
			if filter.Status != nil && c.Status != *filter.Status {
				continue
			}
			all = append(all, &c)
		}
		// newest count date first, then newest id
		slices.SortFunc(all, func(a, b *stockcount.StockCount) int {
			if !a.CountDate.Equal(b.CountDate) {
				return b.CountDate.Compare(a.CountDate)
			}
			return compareIDs(b.ID, a.ID)
		})
		total = int64(len(all))
		out = page(all, filter.Offset, filter.Limit)
		return nil
	})
	return out, total, err
}

func (r *StockCountRepo) UpdateStatus(ctx context.Context, c *stockcount.StockCount, expected stockcount.Status) error {
	return r.s.with(ctx, func(st *state) error {
		stored, ok := st.counts[c.ID]
		if !ok {
			return apperror.NewNotFound("stock count", c.ID)
		}
		if stored.Status != expected {
			return apperror.NewConcurrentModification("stock count", c.ID).
				WithDetail("expected", string(expected)).
				WithDetail("actual", string(stored.Status))
		}
		c.IncrementVersion()
		stored.Status = c.Status
		stored.ApprovedBy = c.ApprovedBy
		stored.CompletedAt = c.CompletedAt
		stored.Notes = c.Notes
		stored.Version = c.Version
		stored.UpdatedAt = c.UpdatedAt
		st.counts[c.ID] = stored
		return nil
	})
}

func (r *StockCountRepo) CreateItems(ctx context.Context, items []stockcount.Item) error {
	return r.s.with(ctx, func(st *state) error {
		for _, it := range items {
			for _, other := range st.items {
				if other.StockCountID == it.StockCountID && other.MaterialID == it.MaterialID {
					return apperror.NewDuplicateItem(it.StockCountID, it.MaterialID)
				}
			}
			st.items[it.ID] = it
		}
		return nil
	})
}

func (r *StockCountRepo) ListItems(ctx context.Context, countID id.ID) ([]stockcount.Item, error) {
	out := make([]stockcount.Item, 0)
	err := r.s.with(ctx, func(st *state) error {
		for _, it := range st.items {
			if it.StockCountID == countID {
				out = append(out, it)
			}
		}
		slices.SortFunc(out, func(a, b stockcount.Item) int {
			return compareIDs(a.ID, b.ID)
		})
		return nil
	})
	return out, err
}

func (r *StockCountRepo) GetItem(ctx context.Context, itemID id.ID) (*stockcount.Item, error) {
	var out *stockcount.Item
	err := r.s.with(ctx, func(st *state) error {
		it, ok := st.items[itemID]
		if !ok {
			return apperror.NewNotFound("stock count item", itemID)
		}
		out = &it
		return nil
	})
	return out, err
}

func (r *StockCountRepo) UpdateItem(ctx context.Context, item *stockcount.Item) error {
	return r.s.with(ctx, func(st *state) error {
		if _, ok := st.items[item.ID]; !ok {
			return apperror.NewNotFound("stock count item", item.ID)
		}
		st.items[item.ID] = *item
		return nil
	})
}

func (r *StockCountRepo) CreateAdjustments(ctx context.Context, adjustments []stockcount.Adjustment) error {
	return r.s.with(ctx, func(st *state) error {
		st.adjustments = append(st.adjustments, adjustments...)
		return nil
	})
}

func (r *StockCountRepo) ListAdjustments(ctx context.Context, countID id.ID) ([]stockcount.Adjustment, error) {
	out := make([]stockcount.Adjustment, 0)
	err := r.s.with(ctx, func(st *state) error {
		for _, a := range st.adjustments {
			if a.StockCountID == countID {
				out = append(out, a)
			}
		}
		return nil
	})
	return out, err
}
