package stock

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"restostock/internal/core/id"
	"restostock/internal/core/types"
	"restostock/pkg/logger"
)

// SortLedger orders movements by (Date, Seq) in place.
func SortLedger(movements []Movement) {
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].Before(movements[j])
	})
}

// Fold sums the signed quantity of every movement dated strictly before cutoff.
// The input is not modified.
func Fold(movements []Movement, cutoff time.Time) types.Quantity {
	ordered := make([]Movement, len(movements))
	copy(ordered, movements)
	SortLedger(ordered)

	var total types.Quantity
	for _, m := range ordered {
		if !m.Date.Before(cutoff) {
			break
		}
		total += m.Quantity
	}
	return total
}

// FoldByMaterial folds movements per material and returns the nonzero
// balances sorted by material id.
func FoldByMaterial(movements []Movement, cutoff time.Time) []ExpectedLine {
	byMaterial := make(map[id.ID][]Movement)
	for _, m := range movements {
		byMaterial[m.MaterialID] = append(byMaterial[m.MaterialID], m)
	}

	lines := make([]ExpectedLine, 0, len(byMaterial))
	for materialID, ms := range byMaterial {
		if qty := Fold(ms, cutoff); !qty.IsZero() {
			lines = append(lines, ExpectedLine{MaterialID: materialID, Quantity: qty})
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		return bytes.Compare(lines[i].MaterialID[:], lines[j].MaterialID[:]) < 0
	})
	return lines
}

// StockAsOf replays the ledger of a material up to cutoff (exclusive).
// A nil warehouseID folds the whole material ledger, which also includes
// the warehouse-less consistency corrections. After a fix the fleet figure
// can therefore differ from the sum of the per-warehouse figures.
func (s *Service) StockAsOf(ctx context.Context, materialID id.ID, warehouseID *id.ID, cutoff time.Time) (types.Quantity, error) {
	movements, err := s.repo.ListMovements(ctx, MovementFilter{
		MaterialID:  &materialID,
		WarehouseID: warehouseID,
		Before:      &cutoff,
	})
	if err != nil {
		return 0, fmt.Errorf("list movements: %w", err)
	}
	return Fold(movements, cutoff), nil
}

// ExpectedStock returns every material with nonzero ledger stock in the
// warehouse as of cutoff. Count creation, recalculation and preview all use it.
func (s *Service) ExpectedStock(ctx context.Context, warehouseID id.ID, cutoff time.Time) ([]ExpectedLine, error) {
	movements, err := s.repo.ListMovements(ctx, MovementFilter{
		WarehouseID: &warehouseID,
		Before:      &cutoff,
	})
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return FoldByMaterial(movements, cutoff), nil
}

// Preview estimates the content of a count at cutoff without creating it.
func (s *Service) Preview(ctx context.Context, warehouseID id.ID, cutoff time.Time) (*HistoricalPreview, error) {
	if _, err := s.warehouses.GetByID(ctx, warehouseID); err != nil {
		return nil, err
	}
	lines, err := s.ExpectedStock(ctx, warehouseID, cutoff)
	if err != nil {
		return nil, err
	}
	return &HistoricalPreview{
		WarehouseID:   warehouseID,
		Cutoff:        cutoff,
		MaterialCount: len(lines),
		Lines:         lines,
	}, nil
}

// History lists ledger entries, newest first unless the filter says otherwise.
func (s *Service) History(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	if filter.Limit <= 0 || filter.Limit > 1000 {
		filter.Limit = 100
	}
	return s.repo.ListMovements(ctx, filter)
}

// ReplayFrom recomputes StockBefore/StockAfter of every movement of the
// (material, warehouse) ledger dated at or after from. Must run inside the
// transaction that inserted the back-dated movement.
func (s *Service) ReplayFrom(ctx context.Context, materialID, warehouseID id.ID, from time.Time) ([]Movement, error) {
	earlier, err := s.repo.ListMovements(ctx, MovementFilter{
		MaterialID:  &materialID,
		WarehouseID: &warehouseID,
		Before:      &from,
	})
	if err != nil {
		return nil, fmt.Errorf("list earlier movements: %w", err)
	}
	tail, err := s.repo.ListMovements(ctx, MovementFilter{
		MaterialID:  &materialID,
		WarehouseID: &warehouseID,
		FromDate:    &from,
	})
	if err != nil {
		return nil, fmt.Errorf("list later movements: %w", err)
	}
	SortLedger(tail)

	running := Fold(earlier, from)
	changed := make([]Movement, 0)
	for i := range tail {
		before, after := running, running+tail[i].Quantity
		if tail[i].StockBefore != before || tail[i].StockAfter != after {
			tail[i].StockBefore, tail[i].StockAfter = before, after
			changed = append(changed, tail[i])
		}
		running = after
	}

	if len(changed) > 0 {
		if err := s.repo.UpdateSnapshots(ctx, changed); err != nil {
			return nil, fmt.Errorf("update snapshots: %w", err)
		}
		logger.Debug(ctx, "ledger replayed",
			"material_id", materialID,
			"warehouse_id", warehouseID,
			"from", from,
			"updated", len(changed),
		)
	}
	return tail, nil
}
