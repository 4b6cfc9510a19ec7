package reconciliation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"restostock/internal/core/apperror"
	appctx "restostock/internal/core/context"
	"restostock/internal/core/entity"
	"restostock/internal/core/id"
	"restostock/internal/core/tx"
	"restostock/internal/core/types"
	"restostock/internal/domain/audit"
	"restostock/internal/domain/catalogs/material"
	"restostock/internal/domain/registers/stock"
	"restostock/pkg/logger"
)

// Service checks and fixes stock consistency.
//
// The warehouse rows are ground truth: a fix always moves the material's
// total towards their sum, never the other way round.
type Service struct {
	materials material.Repository
	stock     stock.Repository
	txManager tx.Manager
	audit     audit.Recorder
	epsilon   types.Quantity
	now       entity.Clock
}

// NewService creates a reconciliation service. An epsilon <= 0 uses types.Epsilon.
func NewService(materials material.Repository, stockRepo stock.Repository, txManager tx.Manager, recorder audit.Recorder, epsilon types.Quantity) *Service {
	if epsilon <= 0 {
		epsilon = types.Epsilon
	}
	return &Service{
		materials: materials,
		stock:     stockRepo,
		txManager: txManager,
		audit:     recorder,
		epsilon:   epsilon,
		now:       entity.SystemClock,
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(c entity.Clock) {
	s.now = c
}

func (s *Service) summarize(m *material.Material, rows []stock.MaterialStock) StockSummary {
	sum := StockSummary{
		MaterialID:   m.ID,
		MaterialName: m.Name,
		Unit:         m.ConsumptionUnit,
		SystemStock:  m.CurrentStock,
		PerWarehouse: make([]WarehouseStock, 0, len(rows)),
	}
	for _, r := range rows {
		sum.TotalStock += r.CurrentStock
		sum.PerWarehouse = append(sum.PerWarehouse, WarehouseStock{
			WarehouseID:    r.WarehouseID,
			CurrentStock:   r.CurrentStock,
			ReservedStock:  r.ReservedStock,
			AvailableStock: r.AvailableStock,
		})
	}
	sum.Difference = sum.SystemStock - sum.TotalStock
	sum.IsConsistent = sum.Difference.Abs() < s.epsilon
	return sum
}

// CheckMaterial compares one material against its warehouse rows.
// Inconsistency is a result, not an error.
func (s *Service) CheckMaterial(ctx context.Context, materialID id.ID) (*StockSummary, error) {
	m, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	rows, err := s.stock.ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, fmt.Errorf("list stock rows: %w", err)
	}
	sum := s.summarize(m, rows)
	return &sum, nil
}

// CheckAll checks every active material.
func (s *Service) CheckAll(ctx context.Context) ([]StockSummary, error) {
	materials, err := s.materials.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}

	out := make([]StockSummary, 0, len(materials))
	for _, m := range materials {
		rows, err := s.stock.ListByMaterial(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("list stock rows of %s: %w", m.ID, err)
		}
		out = append(out, s.summarize(m, rows))
	}
	return out, nil
}

// Report aggregates CheckAll; Items holds inconsistent materials only.
func (s *Service) Report(ctx context.Context) (*ConsistencyReport, error) {
	all, err := s.CheckAll(ctx)
	if err != nil {
		return nil, err
	}
	report := &ConsistencyReport{Total: len(all), Items: make([]StockSummary, 0)}
	for _, sum := range all {
		if sum.IsConsistent {
			report.Consistent++
			continue
		}
		report.Inconsistent++
		report.Items = append(report.Items, sum)
	}
	return report, nil
}

// Fix sets the material's total to its warehouse-row sum and appends a
// compensating material-level ADJUSTMENT. A consistent material is left alone.
func (s *Service) Fix(ctx context.Context, materialID id.ID) (*FixResult, error) {
	var result *FixResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.materials.GetForUpdate(ctx, materialID)
		if err != nil {
			return err
		}
		rows, err := s.stock.ListByMaterial(ctx, materialID)
		if err != nil {
			return fmt.Errorf("list stock rows: %w", err)
		}
		sum := s.summarize(m, rows)

		if sum.IsConsistent {
			result = &FixResult{
				MaterialID: materialID,
				Success:    true,
				OldValue:   sum.SystemStock,
				NewValue:   sum.SystemStock,
			}
			return nil
		}
		if sum.TotalStock.IsNegative() {
			return apperror.NewInconsistentData("warehouse stock sum is negative").
				WithDetail("material_id", materialID).
				WithDetail("total", sum.TotalStock)
		}

		now := s.now()
		correction := &stock.Movement{
			ID:          id.New(),
			MaterialID:  materialID,
			Type:        stock.MovementAdjustment,
			Quantity:    sum.TotalStock - sum.SystemStock,
			UnitCost:    decimal.Zero,
			TotalCost:   decimal.Zero,
			StockBefore: sum.SystemStock,
			StockAfter:  sum.TotalStock,
			Date:        now,
			Reason:      stock.ReasonConsistencyCorrection,
			CreatedBy:   appctx.GetUserID(ctx),
			CreatedAt:   now,
		}
		if err := s.stock.AppendMovement(ctx, correction); err != nil {
			return fmt.Errorf("append correction: %w", err)
		}
		if err := s.materials.SetCurrentStock(ctx, materialID, sum.TotalStock); err != nil {
			return fmt.Errorf("set current stock: %w", err)
		}

		result = &FixResult{
			MaterialID: materialID,
			Success:    true,
			OldValue:   sum.SystemStock,
			NewValue:   sum.TotalStock,
			Movement:   correction,
		}
		return audit.Write(ctx, s.audit, "material", materialID, audit.ActionConsistencyFix, result)
	})
	if err != nil {
		return nil, err
	}

	if result.Movement != nil {
		logger.Info(ctx, "stock consistency fixed",
			"material_id", materialID,
			"old", result.OldValue,
			"new", result.NewValue,
		)
	}
	return result, nil
}

// FixAll fixes every inconsistent material, each in its own transaction.
// Failures are collected and do not stop the sweep.
func (s *Service) FixAll(ctx context.Context) (*FixAllResult, error) {
	all, err := s.CheckAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &FixAllResult{}
	for _, sum := range all {
		if sum.IsConsistent {
			continue
		}
		result.Total++
		if _, err := s.Fix(ctx, sum.MaterialID); err != nil {
			logger.Warn(ctx, "consistency fix failed", "material_id", sum.MaterialID, "error", err)
			result.Failures = append(result.Failures, FixFailure{MaterialID: sum.MaterialID, Error: err.Error()})
			continue
		}
		result.Fixed++
	}

	logger.Info(ctx, "consistency sweep finished", "total", result.Total, "fixed", result.Fixed)
	return result, nil
}
