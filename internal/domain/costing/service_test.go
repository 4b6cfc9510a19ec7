package costing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restostock/internal/core/entity"
	"restostock/internal/core/id"
	"restostock/internal/core/types"
	"restostock/internal/domain/catalogs/material"
	"restostock/internal/domain/costing"
	"restostock/internal/domain/registers/stock"
	"restostock/internal/infrastructure/storage/memory"
)

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name   string
		lines  []stock.Movement
		want   string
		wantOK bool
	}{
		{"empty", nil, "0", false},
		{"single", []stock.Movement{
			{Quantity: types.NewQuantity(10), UnitCost: types.MustMoney("4.5")},
		}, "4.5", true},
		{"weighted", []stock.Movement{
			{Quantity: types.NewQuantity(10), UnitCost: types.MustMoney("20")},
			{Quantity: types.NewQuantity(30), UnitCost: types.MustMoney("10")},
		}, "12.5", true},
		{"rounded to four places", []stock.Movement{
			{Quantity: types.NewQuantity(3), UnitCost: types.MustMoney("1")},
			{Quantity: types.NewQuantity(3), UnitCost: types.MustMoney("1")},
			{Quantity: types.NewQuantity(3), UnitCost: types.MustMoney("0")},
		}, "0.6667", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := costing.WeightedAverage(tt.lines)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func seedLedger(t *testing.T, store *memory.Store, movements ...stock.Movement) id.ID {
	t.Helper()
	ctx := context.Background()
	m := &material.Material{
		BaseEntity:      entity.NewBaseEntity(time.Now()),
		Name:            "Zeytinyagi",
		ConsumptionUnit: types.UnitMilliliter,
		PurchaseUnit:    types.UnitLiter,
		AverageCost:     types.MustMoney("0.1"),
		IsActive:        true,
	}
	require.NoError(t, store.Materials().Create(ctx, m))
	for i := range movements {
		movements[i].ID = id.New()
		movements[i].MaterialID = m.ID
		require.NoError(t, store.Stock().AppendMovement(ctx, &movements[i]))
	}
	return m.ID
}

func TestRecalculate_UsesLatestCostedInbound(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	materialID := seedLedger(t, store,
		stock.Movement{Type: stock.MovementIn, Quantity: types.NewQuantity(100), UnitCost: types.MustMoney("9"), Date: base},
		stock.Movement{Type: stock.MovementIn, Quantity: types.NewQuantity(100), UnitCost: types.MustMoney("2"), Date: base.Add(24 * time.Hour)},
		stock.Movement{Type: stock.MovementIn, Quantity: types.NewQuantity(300), UnitCost: types.MustMoney("4"), Date: base.Add(48 * time.Hour)},
		stock.Movement{Type: stock.MovementIn, Quantity: types.NewQuantity(50), Date: base.Add(72 * time.Hour)},
		stock.Movement{Type: stock.MovementOut, Quantity: types.NewQuantity(-100), UnitCost: types.MustMoney("100"), Date: base.Add(96 * time.Hour)},
	)

	svc := costing.NewService(store.Stock(), store.Materials(), store, 2)
	avg, err := svc.Recalculate(ctx, materialID)
	require.NoError(t, err)

	// window of two skips the oldest IN and the uncosted one
	assert.Equal(t, "3.5", avg.String())

	m, err := store.Materials().GetByID(ctx, materialID)
	require.NoError(t, err)
	assert.Equal(t, "3.5", m.AverageCost.String())
}

func TestRecalculate_WithoutInboundKeepsCost(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	materialID := seedLedger(t, store,
		stock.Movement{Type: stock.MovementAdjustment, Quantity: types.NewQuantity(5), Date: time.Now()},
	)

	svc := costing.NewService(store.Stock(), store.Materials(), store, 0)
	avg, err := svc.Recalculate(ctx, materialID)
	require.NoError(t, err)
	assert.True(t, avg.IsZero())

	m, err := store.Materials().GetByID(ctx, materialID)
	require.NoError(t, err)
	assert.Equal(t, "0.1", m.AverageCost.String())
}
