package memory

import (
	"bytes"
	"context"
	"slices"

	"restostock/internal/core/apperror"
	"restostock/internal/core/id"
	"restostock/internal/core/types"
	"restostock/internal/domain/registers/stock"
)

// StockRepo implements stock.Repository.
type StockRepo struct{ s *Store }

var _ stock.Repository = (*StockRepo)(nil)

func (r *StockRepo) AppendMovement(ctx context.Context, m *stock.Movement) error {
	return r.s.with(ctx, func(st *state) error {
		st.seq++
		m.Seq = st.seq
		st.movements = append(st.movements, *m)
		return nil
	})
}

func matches(m stock.Movement, f stock.MovementFilter) bool {
	if f.MaterialID != nil && m.MaterialID != *f.MaterialID {
		return false
	}
	if f.WarehouseID != nil && (m.WarehouseID == nil || *m.WarehouseID != *f.WarehouseID) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, m.Type) {
		return false
	}
	if f.Before != nil && !m.Date.Before(*f.Before) {
		return false
	}
	if f.FromDate != nil && m.Date.Before(*f.FromDate) {
		return false
	}
	if f.CostedOnly && !m.UnitCost.IsPositive() {
		return false
	}
	return true
}

func (r *StockRepo) ListMovements(ctx context.Context, filter stock.MovementFilter) ([]stock.Movement, error) {
	var out []stock.Movement
	err := r.s.with(ctx, func(st *state) error {
		for _, m := range st.movements {
			if matches(m, filter) {
				out = append(out, m)
			}
		}
		stock.SortLedger(out)
		if filter.Descending {
			slices.Reverse(out)
		}
		out = page(out, filter.Offset, filter.Limit)
		return nil
	})
	return out, err
}

func (r *StockRepo) UpdateSnapshots(ctx context.Context, movements []stock.Movement) error {
	return r.s.with(ctx, func(st *state) error {
		index := make(map[id.ID]int, len(st.movements))
		for i, m := range st.movements {
			index[m.ID] = i
		}
		for _, m := range movements {
			i, ok := index[m.ID]
			if !ok {
				return apperror.NewNotFound("movement", m.ID)
			}
			st.movements[i].StockBefore = m.StockBefore
			st.movements[i].StockAfter = m.StockAfter
		}
		return nil
	})
}

func (r *StockRepo) GetMaterialStock(ctx context.Context, materialID, warehouseID id.ID) (*stock.MaterialStock, error) {
	var out *stock.MaterialStock
	err := r.s.with(ctx, func(st *state) error {
		row, ok := st.stockRows[stockKey{materialID, warehouseID}]
		if !ok {
			return apperror.NewNotFound("material stock", materialID).WithDetail("warehouse_id", warehouseID)
		}
		out = &row
		return nil
	})
	return out, err
}

func (r *StockRepo) GetMaterialStockForUpdate(ctx context.Context, materialID, warehouseID id.ID) (*stock.MaterialStock, error) {
	return r.GetMaterialStock(ctx, materialID, warehouseID)
}

func (r *StockRepo) ListByMaterial(ctx context.Context, materialID id.ID) ([]stock.MaterialStock, error) {
	return r.listRows(ctx, func(row stock.MaterialStock) bool { return row.MaterialID == materialID })
}

func (r *StockRepo) ListByWarehouse(ctx context.Context, warehouseID id.ID) ([]stock.MaterialStock, error) {
	return r.listRows(ctx, func(row stock.MaterialStock) bool { return row.WarehouseID == warehouseID })
}

func (r *StockRepo) listRows(ctx context.Context, keep func(stock.MaterialStock) bool) ([]stock.MaterialStock, error) {
	out := make([]stock.MaterialStock, 0)
	err := r.s.with(ctx, func(st *state) error {
		for _, row := range st.stockRows {
			if keep(row) {
				out = append(out, row)
			}
		}
		slices.SortFunc(out, func(a, b stock.MaterialStock) int {
			if c := compareIDs(a.MaterialID, b.MaterialID); c != 0 {
				return c
			}
			return compareIDs(a.WarehouseID, b.WarehouseID)
		})
		return nil
	})
	return out, err
}

func (r *StockRepo) UpsertMaterialStock(ctx context.Context, row *stock.MaterialStock) error {
	return r.s.with(ctx, func(st *state) error {
		row.Recompute()
		st.stockRows[stockKey{row.MaterialID, row.WarehouseID}] = *row
		return nil
	})
}

func (r *StockRepo) SetAverageCost(ctx context.Context, materialID id.ID, cost types.Money) error {
	return r.s.with(ctx, func(st *state) error {
		for k, row := range st.stockRows {
			if k.material == materialID {
				row.AverageCost = cost
				st.stockRows[k] = row
			}
		}
		return nil
	})
}

// Movements returns a copy of the whole ledger in insertion order.
func (r *StockRepo) Movements() []stock.Movement {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]stock.Movement(nil), r.s.st.movements...)
}

func compareIDs(a, b id.ID) int {
	return bytes.Compare(a[:], b[:])
}
