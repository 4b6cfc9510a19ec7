// Package costing computes weighted average material costs from the
// inbound part of the stock ledger.
package costing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"restostock/internal/core/id"
	"restostock/internal/core/tx"
	"restostock/internal/core/types"
	"restostock/internal/domain/catalogs/material"
	"restostock/internal/domain/registers/stock"
	"restostock/pkg/logger"
)

// DefaultWindow is the number of recent inbound movements averaged.
const DefaultWindow = 10

// Service recalculates average costs.
type Service struct {
	ledger    stock.Repository
	materials material.Repository
	txManager tx.Manager
	window    int
}

var _ stock.CostRecalculator = (*Service)(nil)

// NewService creates a costing service. A window <= 0 uses DefaultWindow.
func NewService(ledger stock.Repository, materials material.Repository, txManager tx.Manager, window int) *Service {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Service{
		ledger:    ledger,
		materials: materials,
		txManager: txManager,
		window:    window,
	}
}

// WeightedAverage returns Σ(unitCost × qty) / Σqty rounded to 4 places.
// ok is false when the movements carry no quantity.
func WeightedAverage(movements []stock.Movement) (avg types.Money, ok bool) {
	value := decimal.Zero
	qty := decimal.Zero
	for _, m := range movements {
		q := m.Quantity.Abs().Decimal()
		value = value.Add(m.UnitCost.Mul(q))
		qty = qty.Add(q)
	}
	if qty.IsZero() {
		return decimal.Zero, false
	}
	return value.Div(qty).Round(4), true
}

// Recalculate averages the latest costed IN movements of the material and
// stores the result on the material and all its stock rows. Without any
// qualifying movement it returns zero and leaves the stored cost unchanged.
func (s *Service) Recalculate(ctx context.Context, materialID id.ID) (types.Money, error) {
	var avg types.Money
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.materials.GetByID(ctx, materialID); err != nil {
			return err
		}

		inbound, err := s.ledger.ListMovements(ctx, stock.MovementFilter{
			MaterialID: &materialID,
			Types:      []stock.MovementType{stock.MovementIn},
			CostedOnly: true,
			Descending: true,
			Limit:      s.window,
		})
		if err != nil {
			return fmt.Errorf("list inbound movements: %w", err)
		}

		var ok bool
		avg, ok = WeightedAverage(inbound)
		if !ok {
			avg = decimal.Zero
			return nil
		}

		if err := s.materials.SetAverageCost(ctx, materialID, avg); err != nil {
			return fmt.Errorf("set material cost: %w", err)
		}
		if err := s.ledger.SetAverageCost(ctx, materialID, avg); err != nil {
			return fmt.Errorf("set stock row cost: %w", err)
		}

		logger.Debug(ctx, "average cost recalculated",
			"material_id", materialID,
			"average_cost", avg.String(),
			"movements", len(inbound),
		)
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return avg, nil
}
