package stockcount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restostock/internal/core/apperror"
	"restostock/internal/core/id"
	"restostock/internal/core/types"
)

func TestNext_FullTable(t *testing.T) {
	statuses := []Status{StatusPlanning, StatusInProgress, StatusPendingApproval, StatusCompleted, StatusCancelled}
	actions := []Action{ActionStart, ActionPause, ActionCancel, ActionSubmit, ActionApprove, ActionReject}

	legal := map[Status]map[Action]Status{
		StatusPlanning:        {ActionStart: StatusInProgress, ActionCancel: StatusCancelled},
		StatusInProgress:      {ActionPause: StatusPlanning, ActionCancel: StatusCancelled, ActionSubmit: StatusPendingApproval},
		StatusPendingApproval: {ActionApprove: StatusCompleted, ActionReject: StatusCancelled},
	}

	for _, from := range statuses {
		for _, action := range actions {
			t.Run(string(from)+"/"+string(action), func(t *testing.T) {
				got, err := Next(from, action)
				want, ok := legal[from][action]
				if ok {
					require.NoError(t, err)
					assert.Equal(t, want, got)
					return
				}
				assert.True(t, apperror.IsInvalidTransition(err))
				assert.Equal(t, from, got)
			})
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPendingApproval.IsTerminal())
	assert.False(t, Status("DRAFT").IsValid())
}

func TestComputeCutoff(t *testing.T) {
	date := time.Date(2024, 1, 18, 0, 0, 0, 0, time.UTC)
	istanbul := time.FixedZone("TRT", 3*60*60)

	tests := []struct {
		name    string
		clock   string
		loc     *time.Location
		want    time.Time
		wantErr bool
	}{
		{"hh:mm", "09:00", time.UTC, time.Date(2024, 1, 18, 9, 0, 0, 0, time.UTC), false},
		{"with seconds", "23:59:30", nil, time.Date(2024, 1, 18, 23, 59, 30, 0, time.UTC), false},
		{"local zone", "09:00", istanbul, time.Date(2024, 1, 18, 6, 0, 0, 0, time.UTC), false},
		{"garbage", "nine", time.UTC, time.Time{}, true},
		{"empty", "", time.UTC, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeCutoff(date, tt.clock, tt.loc)
			if tt.wantErr {
				assert.True(t, apperror.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestItem_CountAndRecalculate(t *testing.T) {
	now := time.Now()
	item := NewItem(id.New(), id.New(), types.NewQuantity(8000), false, now)
	assert.True(t, item.Difference.IsZero())
	assert.False(t, item.IsCompleted)

	// uncounted lines keep a zero difference
	assert.True(t, item.SetSystemStock(types.NewQuantity(8100), now))
	assert.True(t, item.Difference.IsZero())
	assert.False(t, item.SetSystemStock(types.NewQuantity(8100), now))

	item.Count(types.NewQuantity(7850), " spoilage ", now)
	assert.True(t, item.IsCompleted)
	assert.Equal(t, "spoilage", item.Reason)
	assert.Equal(t, types.NewQuantity(-250), item.Difference)
	require.NotNil(t, item.CountedAt)

	item.SetSystemStock(types.NewQuantity(8000), now)
	assert.Equal(t, types.NewQuantity(-150), item.Difference)
}

func TestNewAdjustment(t *testing.T) {
	c := &StockCount{WarehouseID: id.New()}
	c.ID = id.New()

	decrease := NewAdjustment(c, Item{MaterialID: id.New(), Difference: types.NewQuantity(-150), Reason: "spoilage"}, "mgr", time.Now())
	assert.Equal(t, AdjustmentDecrease, decrease.AdjustmentType)
	assert.Equal(t, types.NewQuantity(150), decrease.Quantity)
	assert.Equal(t, c.WarehouseID, decrease.WarehouseID)

	increase := NewAdjustment(c, Item{MaterialID: id.New(), Difference: types.NewQuantity(20)}, "mgr", time.Now())
	assert.Equal(t, AdjustmentIncrease, increase.AdjustmentType)
	assert.Equal(t, types.NewQuantity(20), increase.Quantity)
}

func TestRemainingAndNotes(t *testing.T) {
	items := []Item{{IsCompleted: true}, {}, {}}
	assert.Equal(t, 2, Remaining(items))
	assert.Equal(t, 0, Remaining(nil))

	c := &StockCount{}
	c.AppendNote("first")
	c.AppendNote("  ")
	c.AppendNote("Rejection reason: wrong shelf")
	assert.Equal(t, "first\nRejection reason: wrong shelf", c.Notes)
}
