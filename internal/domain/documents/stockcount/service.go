package stockcount

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"restostock/internal/core/apperror"
	appctx "restostock/internal/core/context"
	"restostock/internal/core/entity"
	"restostock/internal/core/id"
	"restostock/internal/core/numerator"
	"restostock/internal/core/tx"
	"restostock/internal/core/types"
	"restostock/internal/domain/audit"
	"restostock/internal/domain/catalogs/material"
	"restostock/internal/domain/catalogs/warehouse"
	"restostock/internal/domain/reconciliation"
	"restostock/internal/domain/registers/stock"
	"restostock/pkg/logger"
)

// Ledger is the part of the stock service the workflow relies on.
type Ledger interface {
	StockAsOf(ctx context.Context, materialID id.ID, warehouseID *id.ID, cutoff time.Time) (types.Quantity, error)
	ExpectedStock(ctx context.Context, warehouseID id.ID, cutoff time.Time) ([]stock.ExpectedLine, error)
	Preview(ctx context.Context, warehouseID id.ID, cutoff time.Time) (*stock.HistoricalPreview, error)
	Record(ctx context.Context, in stock.MovementInput) (*stock.Movement, error)
}

// Reconciler syncs a material's denormalized total after posting.
type Reconciler interface {
	Fix(ctx context.Context, materialID id.ID) (*reconciliation.FixResult, error)
}

// Deps wires the service.
type Deps struct {
	Repo       Repository
	Ledger     Ledger
	Materials  material.Repository
	Warehouses warehouse.Repository
	Reconciler Reconciler
	Costs      stock.CostRecalculator
	Numerator  numerator.Generator
	TxManager  tx.Manager
	Audit      audit.Recorder
}

// Service provides the stock count workflow.
type Service struct {
	repo       Repository
	ledger     Ledger
	materials  material.Repository
	warehouses warehouse.Repository
	reconciler Reconciler
	costs      stock.CostRecalculator
	numerator  numerator.Generator
	txManager  tx.Manager
	audit      audit.Recorder
	cfg        Config
	now        entity.Clock
}

// NewService creates a new stock count service.
func NewService(deps Deps, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Numbering.Prefix == "" {
		cfg.Numbering = DefaultConfig().Numbering
	}
	return &Service{
		repo:       deps.Repo,
		ledger:     deps.Ledger,
		materials:  deps.Materials,
		warehouses: deps.Warehouses,
		reconciler: deps.Reconciler,
		costs:      deps.Costs,
		numerator:  deps.Numerator,
		txManager:  deps.TxManager,
		audit:      deps.Audit,
		cfg:        cfg,
		now:        entity.SystemClock,
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(c entity.Clock) {
	s.now = c
}

// CreateInput holds the fields of a new count.
type CreateInput struct {
	WarehouseID id.ID
	CountDate   time.Time
	CountTime   string
	CountedBy   string
	Notes       string

	// StartImmediately creates the count IN_PROGRESS instead of PLANNING.
	StartImmediately bool
}

// Cutoff combines a date and time the way Create does.
func (s *Service) Cutoff(date time.Time, clock string) (time.Time, error) {
	return ComputeCutoff(date, clock, s.cfg.Location)
}

// Create opens a count seeded with every material the ledger shows in the
// warehouse at the cutoff.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Details, error) {
	if in.CountDate.IsZero() {
		return nil, apperror.NewValidation("countDate is required").WithDetail("field", "countDate")
	}
	cutoff, err := s.Cutoff(in.CountDate, in.CountTime)
	if err != nil {
		return nil, err
	}
	countedBy := strings.TrimSpace(in.CountedBy)
	if countedBy == "" {
		countedBy = appctx.GetUserID(ctx)
	}
	if countedBy == "" {
		return nil, apperror.NewValidation("countedBy is required").WithDetail("field", "countedBy")
	}
	if _, err := s.warehouses.GetByID(ctx, in.WarehouseID); err != nil {
		return nil, err
	}

	now := s.now()
	y, m, d := in.CountDate.Date()
	c := &StockCount{
		BaseEntity:  entity.NewBaseEntity(now),
		Versioned:   entity.Versioned{Version: 1},
		WarehouseID: in.WarehouseID,
		Status:      StatusPlanning,
		CountDate:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		CountTime:   strings.TrimSpace(in.CountTime),
		Cutoff:      cutoff,
		CountedBy:   countedBy,
		Notes:       strings.TrimSpace(in.Notes),
	}
	if in.StartImmediately {
		c.Status = StatusInProgress
	}

	var items []Item
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GetNextNumber(ctx, s.cfg.Numbering, &numerator.Options{Strategy: NumeratorStrategy}, c.CountDate)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		c.Number = number

		expected, err := s.ledger.ExpectedStock(ctx, c.WarehouseID, c.Cutoff)
		if err != nil {
			return fmt.Errorf("expected stock: %w", err)
		}

		if err := s.repo.Create(ctx, c); err != nil {
			return fmt.Errorf("create stock count: %w", err)
		}

		items = make([]Item, 0, len(expected))
		for _, line := range expected {
			items = append(items, NewItem(c.ID, line.MaterialID, line.Quantity, false, now))
		}
		if err := s.repo.CreateItems(ctx, items); err != nil {
			return fmt.Errorf("create items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock count created",
		"id", c.ID,
		"number", c.Number,
		"warehouse_id", c.WarehouseID,
		"cutoff", c.Cutoff,
		"items", len(items),
	)
	return s.details(ctx, c, items, nil)
}

// Preview reports what a count created at date/time would contain.
func (s *Service) Preview(ctx context.Context, warehouseID id.ID, date time.Time, clock string) (*stock.HistoricalPreview, error) {
	cutoff, err := s.Cutoff(date, clock)
	if err != nil {
		return nil, err
	}
	return s.ledger.Preview(ctx, warehouseID, cutoff)
}

// Get returns a count with its items, adjustments and summary.
func (s *Service) Get(ctx context.Context, countID id.ID) (*Details, error) {
	c, err := s.repo.GetByID(ctx, countID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, countID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	adjustments, err := s.repo.ListAdjustments(ctx, countID)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	return s.details(ctx, c, items, adjustments)
}

// List returns a page of counts.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*StockCount, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, apperror.NewValidation("invalid status").WithDetail("status", string(*filter.Status))
	}
	return s.repo.List(ctx, filter)
}

// Adjustments lists the corrections posted by an approved count.
func (s *Service) Adjustments(ctx context.Context, countID id.ID) ([]Adjustment, error) {
	if _, err := s.repo.GetByID(ctx, countID); err != nil {
		return nil, err
	}
	return s.repo.ListAdjustments(ctx, countID)
}

func (s *Service) details(ctx context.Context, c *StockCount, items []Item, adjustments []Adjustment) (*Details, error) {
	sum := Summary{TotalItems: len(items), TotalDifferenceValue: decimal.Zero}
	for _, it := range items {
		if it.IsCompleted {
			sum.CompletedItems++
		}
		if it.Difference.IsZero() {
			continue
		}
		sum.ItemsWithDifference++
		sum.TotalDifference += it.Difference

		m, err := s.materials.GetByID(ctx, it.MaterialID)
		if err != nil {
			return nil, fmt.Errorf("get material %s: %w", it.MaterialID, err)
		}
		sum.TotalDifferenceValue = sum.TotalDifferenceValue.Add(it.Difference.Decimal().Mul(m.AverageCost))
	}
	sum.TotalDifferenceValue = sum.TotalDifferenceValue.Round(2)

	if items == nil {
		items = []Item{}
	}
	if adjustments == nil {
		adjustments = []Adjustment{}
	}
	return &Details{Count: c, Items: items, Adjustments: adjustments, Summary: sum}, nil
}

// Recalculate refreshes systemStock of every item from the ledger at the
// stored cutoff and adds newly expected materials. Items are never removed.
func (s *Service) Recalculate(ctx context.Context, countID id.ID) (*Details, error) {
	var (
		c     *StockCount
		items []Item
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.repo.GetForUpdate(ctx, countID)
		if err != nil {
			return err
		}
		if !c.CanRecalculate() {
			return apperror.NewInvalidTransition("stock count", c.Status, "recalculate")
		}

		expected, err := s.ledger.ExpectedStock(ctx, c.WarehouseID, c.Cutoff)
		if err != nil {
			return fmt.Errorf("expected stock: %w", err)
		}
		byMaterial := make(map[id.ID]types.Quantity, len(expected))
		for _, line := range expected {
			byMaterial[line.MaterialID] = line.Quantity
		}

		items, err = s.repo.ListItems(ctx, countID)
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}

		now := s.now()
		present := make(map[id.ID]bool, len(items))
		updated := 0
		for i := range items {
			present[items[i].MaterialID] = true
			if !items[i].SetSystemStock(byMaterial[items[i].MaterialID], now) {
				continue
			}
			if err := s.repo.UpdateItem(ctx, &items[i]); err != nil {
				return fmt.Errorf("update item: %w", err)
			}
			updated++
		}

		var added []Item
		for _, line := range expected {
			if present[line.MaterialID] {
				continue
			}
			added = append(added, NewItem(c.ID, line.MaterialID, line.Quantity, false, now))
		}
		if len(added) > 0 {
			if err := s.repo.CreateItems(ctx, added); err != nil {
				return fmt.Errorf("create items: %w", err)
			}
			items = append(items, added...)
		}

		logger.Info(ctx, "stock count recalculated",
			"id", c.ID,
			"updated", updated,
			"added", len(added),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.details(ctx, c, items, nil)
}

// AddItem puts a material on the count by hand.
func (s *Service) AddItem(ctx context.Context, countID, materialID id.ID) (*Item, error) {
	var item Item
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetForUpdate(ctx, countID)
		if err != nil {
			return err
		}
		if !c.CanAddItems() {
			return apperror.NewInvalidTransition("stock count", c.Status, "add item to")
		}
		if _, err := s.materials.GetByID(ctx, materialID); err != nil {
			return err
		}

		items, err := s.repo.ListItems(ctx, countID)
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}
		for _, it := range items {
			if it.MaterialID == materialID {
				return apperror.NewDuplicateItem(countID, materialID)
			}
		}

		warehouseID := c.WarehouseID
		systemStock, err := s.ledger.StockAsOf(ctx, materialID, &warehouseID, c.Cutoff)
		if err != nil {
			return fmt.Errorf("stock as of cutoff: %w", err)
		}

		item = NewItem(countID, materialID, systemStock, true, s.now())
		return s.repo.CreateItems(ctx, []Item{item})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock count item added", "count_id", countID, "material_id", materialID)
	return &item, nil
}

// UpdateItem records the counted quantity of a line.
func (s *Service) UpdateItem(ctx context.Context, itemID id.ID, counted types.Quantity, reason string) (*Item, error) {
	if counted.IsNegative() {
		return nil, apperror.NewValidation("countedStock cannot be negative").WithDetail("field", "countedStock")
	}

	var item *Item
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.repo.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		c, err := s.repo.GetForUpdate(ctx, item.StockCountID)
		if err != nil {
			return err
		}
		if !c.CanCount() {
			return apperror.NewInvalidTransition("stock count", c.Status, "update items of")
		}

		item.Count(counted, reason, s.now())
		return s.repo.UpdateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Start moves a planned count into counting.
func (s *Service) Start(ctx context.Context, countID id.ID) (*StockCount, error) {
	return s.transition(ctx, countID, ActionStart, nil)
}

// Pause returns a count in progress to planning.
func (s *Service) Pause(ctx context.Context, countID id.ID) (*StockCount, error) {
	return s.transition(ctx, countID, ActionPause, nil)
}

// Cancel abandons a count before submission. Items are kept.
func (s *Service) Cancel(ctx context.Context, countID id.ID) (*StockCount, error) {
	return s.transition(ctx, countID, ActionCancel, nil)
}

// Submit sends a fully counted count for approval.
func (s *Service) Submit(ctx context.Context, countID id.ID) (*StockCount, error) {
	return s.transition(ctx, countID, ActionSubmit, func(ctx context.Context, c *StockCount) error {
		items, err := s.repo.ListItems(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}
		if remaining := Remaining(items); remaining > 0 {
			return apperror.NewIncompleteCount(remaining).WithDetail("stock_count_id", c.ID)
		}
		return nil
	})
}

// Reject sends a pending count to CANCELLED and records why.
func (s *Service) Reject(ctx context.Context, countID id.ID, reason string) (*StockCount, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.NewValidation("rejection reason is required").WithDetail("field", "reason")
	}
	return s.transition(ctx, countID, ActionReject, func(ctx context.Context, c *StockCount) error {
		c.AppendNote("Rejection reason: " + reason)
		return audit.Write(ctx, s.audit, "stock_count", c.ID, audit.ActionCountRejected, map[string]any{
			"number": c.Number,
			"reason": reason,
		})
	})
}

// transition applies action under a row lock. guard runs after the state
// check and before the write, inside the same transaction.
func (s *Service) transition(ctx context.Context, countID id.ID, action Action, guard func(ctx context.Context, c *StockCount) error) (*StockCount, error) {
	var c *StockCount
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.repo.GetForUpdate(ctx, countID)
		if err != nil {
			return err
		}
		from := c.Status
		if _, err := Next(from, action); err != nil {
			return err
		}
		if guard != nil {
			if err := guard(ctx, c); err != nil {
				return err
			}
		}
		if err := c.Apply(action, s.now()); err != nil {
			return err
		}
		return s.repo.UpdateStatus(ctx, c, from)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock count status changed",
		"id", c.ID,
		"number", c.Number,
		"action", action,
		"status", c.Status,
	)
	return c, nil
}

// Approve posts the count. For every line with a difference it creates an
// adjustment and an ADJUSTMENT movement dated at the cutoff, then syncs each
// affected material's total and average cost and completes the count.
// Everything happens in one transaction.
func (s *Service) Approve(ctx context.Context, countID id.ID, approvedBy string) (*Details, error) {
	approvedBy = strings.TrimSpace(approvedBy)
	if approvedBy == "" {
		approvedBy = appctx.GetUserID(ctx)
	}
	if approvedBy == "" {
		return nil, apperror.NewValidation("approvedBy is required").WithDetail("field", "approvedBy")
	}

	var (
		c           *StockCount
		items       []Item
		adjustments []Adjustment
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.repo.GetForUpdate(ctx, countID)
		if err != nil {
			return err
		}
		from := c.Status
		if _, err := Next(from, ActionApprove); err != nil {
			return err
		}

		items, err = s.repo.ListItems(ctx, countID)
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}

		now := s.now()
		affected := make([]id.ID, 0)
		for _, it := range items {
			if it.Difference.IsZero() {
				continue
			}
			adj := NewAdjustment(c, it, approvedBy, now)

			reason := it.Reason
			if reason == "" {
				reason = "stock count " + c.Number
			}
			mv, err := s.ledger.Record(ctx, stock.MovementInput{
				MaterialID:  it.MaterialID,
				WarehouseID: c.WarehouseID,
				Type:        stock.MovementAdjustment,
				Amount:      types.Measure{Value: it.Difference},
				Date:        c.Cutoff,
				Reference:   c.Number,
				Reason:      reason,
				CreatedBy:   approvedBy,
			})
			if err != nil {
				return fmt.Errorf("post adjustment for %s: %w", it.MaterialID, err)
			}
			adj.MovementID = &mv.ID
			adjustments = append(adjustments, adj)
			affected = append(affected, it.MaterialID)
		}

		if len(adjustments) > 0 {
			if err := s.repo.CreateAdjustments(ctx, adjustments); err != nil {
				return fmt.Errorf("create adjustments: %w", err)
			}
		}

		for _, materialID := range affected {
			if _, err := s.reconciler.Fix(ctx, materialID); err != nil {
				return fmt.Errorf("sync material %s: %w", materialID, err)
			}
			if s.costs != nil {
				if _, err := s.costs.Recalculate(ctx, materialID); err != nil {
					return fmt.Errorf("recalculate cost of %s: %w", materialID, err)
				}
			}
		}

		if err := c.Apply(ActionApprove, now); err != nil {
			return err
		}
		c.ApprovedBy = &approvedBy
		c.CompletedAt = &now
		if err := s.repo.UpdateStatus(ctx, c, from); err != nil {
			return err
		}

		return audit.Write(ctx, s.audit, "stock_count", c.ID, audit.ActionCountApproved, map[string]any{
			"number":      c.Number,
			"warehouseId": c.WarehouseID,
			"cutoff":      c.Cutoff,
			"approvedBy":  approvedBy,
			"items":       items,
			"adjustments": adjustments,
		})
	})
	if err != nil {
		logger.Error(ctx, "stock count approval rolled back", "id", countID, "error", err)
		return nil, err
	}

	logger.Info(ctx, "stock count approved",
		"id", c.ID,
		"number", c.Number,
		"approved_by", approvedBy,
		"adjustments", len(adjustments),
	)
	return s.details(ctx, c, items, adjustments)
}
