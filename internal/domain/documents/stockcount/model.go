// Package stockcount implements the physical stock count document and its
// approval workflow.
package stockcount

import (
	"fmt"
	"strings"
	"time"

	"restostock/internal/core/apperror"
	"restostock/internal/core/entity"
	"restostock/internal/core/id"
	"restostock/internal/core/types"
)

// Status of a stock count.
type Status string

const (
	StatusPlanning        Status = "PLANNING"
	StatusInProgress      Status = "IN_PROGRESS"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusCompleted       Status = "COMPLETED"
	StatusCancelled       Status = "CANCELLED"
)

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanning, StatusInProgress, StatusPendingApproval, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Action is a workflow operation that changes status.
type Action string

const (
	ActionStart   Action = "start"
	ActionPause   Action = "pause"
	ActionCancel  Action = "cancel"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// transitions is the complete state machine. Anything absent is illegal.
var transitions = map[Status]map[Action]Status{
	StatusPlanning: {
		ActionStart:  StatusInProgress,
		ActionCancel: StatusCancelled,
	},
	StatusInProgress: {
		ActionPause:  StatusPlanning,
		ActionCancel: StatusCancelled,
		ActionSubmit: StatusPendingApproval,
	},
	StatusPendingApproval: {
		ActionApprove: StatusCompleted,
		ActionReject:  StatusCancelled,
	},
}

// Next returns the status reached by applying action to from.
func Next(from Status, action Action) (Status, error) {
	if to, ok := transitions[from][action]; ok {
		return to, nil
	}
	return from, apperror.NewInvalidTransition("stock count", from, string(action))
}

// StockCount is a physical count session for one warehouse.
type StockCount struct {
	entity.BaseEntity
	entity.Versioned

	Number      string `db:"count_number" json:"countNumber"`
	WarehouseID id.ID  `db:"warehouse_id" json:"warehouseId"`
	Status      Status `db:"status" json:"status"`

	// CountDate (a calendar date) and CountTime (HH:MM) combine into Cutoff,
	// the instant the count treats as "now" for expected stock.
	CountDate time.Time `db:"count_date" json:"countDate"`
	CountTime string    `db:"count_time" json:"countTime"`
	Cutoff    time.Time `db:"cutoff" json:"cutoff"`

	CountedBy   string     `db:"counted_by" json:"countedBy"`
	ApprovedBy  *string    `db:"approved_by" json:"approvedBy,omitempty"`
	Notes       string     `db:"notes" json:"notes"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
}

// ComputeCutoff combines a date and an HH:MM[:SS] clock time in loc.
func ComputeCutoff(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	clock = strings.TrimSpace(clock)
	var (
		t   time.Time
		err error
	)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err = time.Parse(layout, clock); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, apperror.NewValidation(fmt.Sprintf("invalid count time %q, expected HH:MM", clock)).
			WithDetail("field", "countTime")
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc).UTC(), nil
}

// CanAddItems reports whether materials may still be added.
func (c *StockCount) CanAddItems() bool {
	return c.Status == StatusPlanning || c.Status == StatusInProgress
}

// CanRecalculate reports whether expected stock may be refreshed.
func (c *StockCount) CanRecalculate() bool {
	return c.Status == StatusPlanning || c.Status == StatusInProgress
}

// CanCount reports whether item values may be entered.
func (c *StockCount) CanCount() bool {
	return c.Status == StatusInProgress
}

// Apply moves the count along the state machine.
func (c *StockCount) Apply(action Action, now time.Time) error {
	next, err := Next(c.Status, action)
	if err != nil {
		return err
	}
	c.Status = next
	c.Touch(now)
	return nil
}

// AppendNote adds a line to the notes.
func (c *StockCount) AppendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if c.Notes == "" {
		c.Notes = note
		return
	}
	c.Notes += "\n" + note
}

// Item is one material line on a count.
type Item struct {
	ID           id.ID `db:"id" json:"id"`
	StockCountID id.ID `db:"stock_count_id" json:"stockCountId"`
	MaterialID   id.ID `db:"material_id" json:"materialId"`

	// SystemStock is the ledger stock at the count cutoff, snapshotted on
	// creation and recalculation.
	SystemStock  types.Quantity `db:"system_stock" json:"systemStock"`
	CountedStock types.Quantity `db:"counted_stock" json:"countedStock"`
	Difference   types.Quantity `db:"difference" json:"difference"`
	Reason       string         `db:"reason" json:"reason"`

	IsCompleted     bool `db:"is_completed" json:"isCompleted"`
	IsManuallyAdded bool `db:"is_manually_added" json:"isManuallyAdded"`

	CountedAt *time.Time `db:"counted_at" json:"countedAt,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

// NewItem creates an uncounted line.
func NewItem(countID, materialID id.ID, systemStock types.Quantity, manual bool, now time.Time) Item {
	return Item{
		ID:              id.New(),
		StockCountID:    countID,
		MaterialID:      materialID,
		SystemStock:     systemStock,
		IsManuallyAdded: manual,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Count records the observed quantity.
func (i *Item) Count(counted types.Quantity, reason string, now time.Time) {
	i.CountedStock = counted
	i.Difference = counted - i.SystemStock
	i.Reason = strings.TrimSpace(reason)
	i.IsCompleted = true
	i.CountedAt = &now
	i.UpdatedAt = now
}

// SetSystemStock refreshes the expected stock. Difference follows for
// counted lines and stays zero otherwise. Reports whether anything changed.
func (i *Item) SetSystemStock(q types.Quantity, now time.Time) bool {
	if i.SystemStock == q {
		return false
	}
	i.SystemStock = q
	if i.IsCompleted {
		i.Difference = i.CountedStock - q
	}
	i.UpdatedAt = now
	return true
}

// AdjustmentType is the direction of a posted correction.
type AdjustmentType string

const (
	AdjustmentIncrease AdjustmentType = "INCREASE"
	AdjustmentDecrease AdjustmentType = "DECREASE"
)

// Adjustment is the immutable record of a correction posted on approval.
type Adjustment struct {
	ID             id.ID          `db:"id" json:"id"`
	StockCountID   id.ID          `db:"stock_count_id" json:"stockCountId"`
	MaterialID     id.ID          `db:"material_id" json:"materialId"`
	WarehouseID    id.ID          `db:"warehouse_id" json:"warehouseId"`
	AdjustmentType AdjustmentType `db:"adjustment_type" json:"adjustmentType"`
	Quantity       types.Quantity `db:"quantity" json:"quantity"`
	Reason         string         `db:"reason" json:"reason"`
	AdjustedBy     string         `db:"adjusted_by" json:"adjustedBy"`
	MovementID     *id.ID         `db:"movement_id" json:"movementId,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
}

// NewAdjustment derives the correction for a counted line with a difference.
func NewAdjustment(c *StockCount, item Item, adjustedBy string, now time.Time) Adjustment {
	t := AdjustmentIncrease
	if item.Difference.IsNegative() {
		t = AdjustmentDecrease
	}
	return Adjustment{
		ID:             id.New(),
		StockCountID:   c.ID,
		MaterialID:     item.MaterialID,
		WarehouseID:    c.WarehouseID,
		AdjustmentType: t,
		Quantity:       item.Difference.Abs(),
		Reason:         item.Reason,
		AdjustedBy:     adjustedBy,
		CreatedAt:      now,
	}
}

// Summary aggregates a count's lines.
type Summary struct {
	TotalItems          int            `json:"totalItems"`
	CompletedItems      int            `json:"completedItems"`
	ItemsWithDifference int            `json:"itemsWithDifference"`
	TotalDifference     types.Quantity `json:"totalDifference"`

	// TotalDifferenceValue is Σ difference × material average cost
	TotalDifferenceValue types.Money `json:"totalDifferenceValue"`
}

// Remaining counts lines not yet counted.
func Remaining(items []Item) int {
	n := 0
	for _, it := range items {
		if !it.IsCompleted {
			n++
		}
	}
	return n
}

// Details is a count with its lines and posted adjustments.
type Details struct {
	Count       *StockCount  `json:"count"`
	Items       []Item       `json:"items"`
	Adjustments []Adjustment `json:"adjustments"`
	Summary     Summary      `json:"summary"`
}
