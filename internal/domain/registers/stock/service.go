package stock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"restostock/internal/core/apperror"
	"restostock/internal/core/entity"
	"restostock/internal/core/id"
	"restostock/internal/core/tx"
	"restostock/internal/core/types"
	"restostock/internal/domain/catalogs/material"
	"restostock/internal/domain/catalogs/warehouse"
	"restostock/pkg/logger"
)

// CostRecalculator refreshes a material's weighted average cost.
type CostRecalculator interface {
	Recalculate(ctx context.Context, materialID id.ID) (types.Money, error)
}

// Service records movements and maintains the stock rows.
type Service struct {
	repo       Repository
	materials  material.Repository
	warehouses warehouse.Repository
	txManager  tx.Manager
	costs      CostRecalculator
	now        entity.Clock
}

// NewService creates a new stock service.
func NewService(repo Repository, materials material.Repository, warehouses warehouse.Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:       repo,
		materials:  materials,
		warehouses: warehouses,
		txManager:  txManager,
		now:        entity.SystemClock,
	}
}

// SetCostRecalculator enables average cost refresh after IN movements.
func (s *Service) SetCostRecalculator(c CostRecalculator) {
	s.costs = c
}

// SetClock overrides the time source.
func (s *Service) SetClock(c entity.Clock) {
	s.now = c
}

// MovementInput describes a stock-affecting event.
type MovementInput struct {
	MaterialID  id.ID
	WarehouseID id.ID
	Type        MovementType

	// Amount is a magnitude for IN, OUT and WASTE (the type gives the sign)
	// and a signed value for ADJUSTMENT and TRANSFER. An empty unit means
	// the material's consumption unit.
	Amount types.Measure

	// UnitCost is per consumption unit.
	UnitCost types.Money

	// Date is the effective date; zero means now.
	Date      time.Time
	InvoiceID *id.ID
	Reference string
	Reason    string
	CreatedBy string
}

func (in MovementInput) validate() error {
	if !in.Type.IsValid() {
		return apperror.NewValidation("invalid movement type").WithDetail("type", string(in.Type))
	}
	if in.Amount.Value.IsZero() {
		return apperror.NewValidation("quantity must be nonzero").WithDetail("field", "quantity")
	}
	switch in.Type {
	case MovementIn, MovementOut, MovementWaste:
		if in.Amount.Value.IsNegative() {
			return apperror.NewValidation("quantity must be positive for " + string(in.Type)).
				WithDetail("field", "quantity")
		}
	}
	if in.UnitCost.IsNegative() {
		return apperror.NewValidation("unitCost cannot be negative").WithDetail("field", "unitCost")
	}
	return nil
}

// signed returns the ledger delta for qty under the movement type.
func signed(t MovementType, qty types.Quantity) types.Quantity {
	switch t {
	case MovementOut, MovementWaste:
		return -qty
	default:
		return qty
	}
}

// Record appends a movement, replays the ledger when it is back-dated and
// applies the delta to the stock row and the material's denormalized total.
func (s *Service) Record(ctx context.Context, in MovementInput) (*Movement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var recorded *Movement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		recorded, err = s.record(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

func (s *Service) record(ctx context.Context, in MovementInput) (*Movement, error) {
	mat, err := s.materials.GetForUpdate(ctx, in.MaterialID)
	if err != nil {
		return nil, err
	}
	if _, err := s.warehouses.GetByID(ctx, in.WarehouseID); err != nil {
		return nil, err
	}

	qty, err := mat.ToConsumption(in.Amount)
	if err != nil {
		return nil, err
	}
	delta := signed(in.Type, qty)

	now := s.now()
	row, err := s.repo.GetMaterialStockForUpdate(ctx, in.MaterialID, in.WarehouseID)
	if apperror.IsNotFound(err) {
		row = &MaterialStock{
			MaterialID:  in.MaterialID,
			WarehouseID: in.WarehouseID,
			AverageCost: mat.AverageCost,
		}
	} else if err != nil {
		return nil, fmt.Errorf("get stock row: %w", err)
	}

	if err := checkDelta(in.Type, row, delta); err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = now
	}
	warehouseID := in.WarehouseID
	m := &Movement{
		ID:          id.New(),
		MaterialID:  in.MaterialID,
		WarehouseID: &warehouseID,
		Type:        in.Type,
		Quantity:    delta,
		UnitCost:    in.UnitCost,
		TotalCost:   in.UnitCost.Mul(delta.Abs().Decimal()).Round(4),
		Date:        date.UTC(),
		InvoiceID:   in.InvoiceID,
		Reference:   strings.TrimSpace(in.Reference),
		Reason:      strings.TrimSpace(in.Reason),
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
	}
	if err := s.repo.AppendMovement(ctx, m); err != nil {
		return nil, fmt.Errorf("append movement: %w", err)
	}

	replayed, err := s.ReplayFrom(ctx, in.MaterialID, in.WarehouseID, m.Date)
	if err != nil {
		return nil, err
	}
	for _, r := range replayed {
		if r.ID == m.ID {
			m.StockBefore, m.StockAfter = r.StockBefore, r.StockAfter
		}
	}
	if backdated := len(replayed) - 1; backdated > 0 {
		logger.Info(ctx, "back-dated movement inserted",
			"movement_id", m.ID,
			"date", m.Date,
			"replayed", backdated,
		)
	}

	row.CurrentStock += delta
	row.Recompute()
	row.LastUpdated = now
	if err := s.repo.UpsertMaterialStock(ctx, row); err != nil {
		return nil, fmt.Errorf("upsert stock row: %w", err)
	}
	if err := s.materials.AddCurrentStock(ctx, in.MaterialID, delta); err != nil {
		return nil, fmt.Errorf("update material stock: %w", err)
	}

	if in.Type == MovementIn && s.costs != nil {
		if _, err := s.costs.Recalculate(ctx, in.MaterialID); err != nil {
			return nil, fmt.Errorf("recalculate average cost: %w", err)
		}
	}

	logger.Info(ctx, "stock movement recorded",
		"movement_id", m.ID,
		"type", m.Type,
		"material_id", m.MaterialID,
		"warehouse_id", in.WarehouseID,
		"quantity", m.Quantity,
	)
	return m, nil
}

// checkDelta rejects movements that would drive the row below zero.
func checkDelta(t MovementType, row *MaterialStock, delta types.Quantity) error {
	if !delta.IsNegative() {
		return nil
	}
	switch t {
	case MovementAdjustment:
		if row.CurrentStock+delta < 0 {
			return apperror.NewInconsistentData("adjustment would make warehouse stock negative").
				WithDetail("material_id", row.MaterialID).
				WithDetail("warehouse_id", row.WarehouseID).
				WithDetail("current", row.CurrentStock).
				WithDetail("delta", delta)
		}
	default:
		if row.AvailableStock+delta < 0 {
			return apperror.NewInsufficientStock(
				row.MaterialID.String(),
				delta.Abs().Float64(),
				row.AvailableStock.Float64(),
			).WithDetail("warehouse_id", row.WarehouseID)
		}
	}
	return nil
}

// TransferInput moves stock between two warehouses.
type TransferInput struct {
	MaterialID      id.ID
	FromWarehouseID id.ID
	ToWarehouseID   id.ID
	Amount          types.Measure
	Date            time.Time
	Reference       string
	CreatedBy       string
}

// Transfer posts a pair of TRANSFER movements atomically.
// The material's total stock is unchanged.
func (s *Service) Transfer(ctx context.Context, in TransferInput) ([]*Movement, error) {
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, apperror.NewValidation("source and destination warehouses must differ")
	}
	if !in.Amount.Value.IsPositive() {
		return nil, apperror.NewValidation("transfer quantity must be positive").WithDetail("field", "quantity")
	}

	var out []*Movement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		date := in.Date
		if date.IsZero() {
			date = s.now()
		}
		legs := []struct {
			warehouseID id.ID
			amount      types.Measure
		}{
			{in.FromWarehouseID, types.NewMeasure(in.Amount.Value.Neg(), in.Amount.Unit)},
			{in.ToWarehouseID, in.Amount},
		}
		for _, leg := range legs {
			m, err := s.record(ctx, MovementInput{
				MaterialID:  in.MaterialID,
				WarehouseID: leg.warehouseID,
				Type:        MovementTransfer,
				Amount:      leg.amount,
				Date:        date,
				Reference:   in.Reference,
				CreatedBy:   in.CreatedBy,
			})
			if err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reserve earmarks available stock, lowering AvailableStock.
func (s *Service) Reserve(ctx context.Context, materialID, warehouseID id.ID, qty types.Quantity) (*MaterialStock, error) {
	if !qty.IsPositive() {
		return nil, apperror.NewValidation("reservation quantity must be positive")
	}
	return s.adjustReservation(ctx, materialID, warehouseID, qty)
}

// Release returns reserved stock to available.
func (s *Service) Release(ctx context.Context, materialID, warehouseID id.ID, qty types.Quantity) (*MaterialStock, error) {
	if !qty.IsPositive() {
		return nil, apperror.NewValidation("release quantity must be positive")
	}
	return s.adjustReservation(ctx, materialID, warehouseID, -qty)
}

func (s *Service) adjustReservation(ctx context.Context, materialID, warehouseID id.ID, delta types.Quantity) (*MaterialStock, error) {
	var row *MaterialStock
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		row, err = s.repo.GetMaterialStockForUpdate(ctx, materialID, warehouseID)
		if err != nil {
			return err
		}

		switch {
		case delta > 0 && row.AvailableStock < delta:
			return apperror.NewInsufficientStock(materialID.String(), delta.Float64(), row.AvailableStock.Float64()).
				WithDetail("warehouse_id", warehouseID)
		case delta < 0 && row.ReservedStock < -delta:
			return apperror.NewValidation("cannot release more than is reserved").
				WithDetail("reserved", row.ReservedStock).
				WithDetail("requested", -delta)
		}

		row.ReservedStock += delta
		row.Recompute()
		row.LastUpdated = s.now()
		return s.repo.UpsertMaterialStock(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Balances returns every stock row of a material.
func (s *Service) Balances(ctx context.Context, materialID id.ID) ([]MaterialStock, error) {
	if _, err := s.materials.GetByID(ctx, materialID); err != nil {
		return nil, err
	}
	return s.repo.ListByMaterial(ctx, materialID)
}

// WarehouseBalances returns every stock row of a warehouse.
func (s *Service) WarehouseBalances(ctx context.Context, warehouseID id.ID) ([]MaterialStock, error) {
	if _, err := s.warehouses.GetByID(ctx, warehouseID); err != nil {
		return nil, err
	}
	return s.repo.ListByWarehouse(ctx, warehouseID)
}

// Valuation is Σ currentStock × averageCost over the rows.
func Valuation(rows []MaterialStock) types.Money {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.CurrentStock.Decimal().Mul(r.AverageCost))
	}
	return total.Round(2)
}
