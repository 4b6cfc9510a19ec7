package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restostock/internal/core/apperror"
	"restostock/internal/core/id"
	"restostock/internal/core/types"
	"restostock/internal/domain/catalogs/material"
	"restostock/internal/domain/catalogs/warehouse"
	"restostock/internal/domain/costing"
	"restostock/internal/domain/registers/stock"
	"restostock/internal/infrastructure/storage/memory"
)

type fixture struct {
	store *memory.Store
	svc   *stock.Service
	mat   *material.Material
	cold  *warehouse.Warehouse
	dry   *warehouse.Warehouse
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	mat, err := material.NewService(store.Materials()).Create(ctx, material.CreateInput{
		Code:            "DOM",
		Name:            "Domates",
		PurchaseUnit:    types.UnitKilogram,
		ConsumptionUnit: types.UnitGram,
	})
	require.NoError(t, err)

	warehouses := warehouse.NewService(store.Warehouses())
	cold, err := warehouses.Create(ctx, warehouse.CreateInput{Name: "Soguk Oda", Type: warehouse.TypeCold})
	require.NoError(t, err)
	dry, err := warehouses.Create(ctx, warehouse.CreateInput{Name: "Kuru Depo", Type: warehouse.TypeDry})
	require.NoError(t, err)

	svc := stock.NewService(store.Stock(), store.Materials(), store.Warehouses(), store)
	svc.SetCostRecalculator(costing.NewService(store.Stock(), store.Materials(), store, 0))

	return &fixture{store: store, svc: svc, mat: mat, cold: cold, dry: dry}
}

func (f *fixture) record(t *testing.T, typ stock.MovementType, warehouseID id.ID, grams int64, date time.Time) *stock.Movement {
	t.Helper()
	m, err := f.svc.Record(context.Background(), stock.MovementInput{
		MaterialID:  f.mat.ID,
		WarehouseID: warehouseID,
		Type:        typ,
		Amount:      types.Measure{Value: types.NewQuantity(grams)},
		Date:        date,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) materialStock(t *testing.T) types.Quantity {
	t.Helper()
	m, err := f.store.Materials().GetByID(context.Background(), f.mat.ID)
	require.NoError(t, err)
	return m.CurrentStock
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 9, 0, 0, 0, time.UTC)
}

func TestRecord_UpdatesRowAndMaterial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.record(t, stock.MovementIn, f.cold.ID, 1000, day(1))
	out := f.record(t, stock.MovementOut, f.cold.ID, 300, day(2))

	assert.Equal(t, types.NewQuantity(0), in.StockBefore)
	assert.Equal(t, types.NewQuantity(1000), in.StockAfter)
	assert.Equal(t, types.NewQuantity(-300), out.Quantity)
	assert.Equal(t, types.NewQuantity(700), out.StockAfter)

	row, err := f.store.Stock().GetMaterialStock(ctx, f.mat.ID, f.cold.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(700), row.CurrentStock)
	assert.Equal(t, types.NewQuantity(700), row.AvailableStock)
	assert.Equal(t, types.NewQuantity(700), f.materialStock(t))
}

func TestRecord_ConvertsPurchaseUnit(t *testing.T) {
	f := newFixture(t)

	m, err := f.svc.Record(context.Background(), stock.MovementInput{
		MaterialID:  f.mat.ID,
		WarehouseID: f.cold.ID,
		Type:        stock.MovementIn,
		Amount:      types.NewMeasure(types.NewQuantityFromFloat64(2.5), types.UnitKilogram),
		UnitCost:    types.MustMoney("0.02"),
	})
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantity(2500), m.Quantity)
	assert.Equal(t, "50", m.TotalCost.String())
}

func TestRecord_RejectsIncompatibleUnit(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Record(context.Background(), stock.MovementInput{
		MaterialID:  f.mat.ID,
		WarehouseID: f.cold.ID,
		Type:        stock.MovementIn,
		Amount:      types.NewMeasure(types.NewQuantity(1), types.UnitLiter),
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestRecord_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.record(t, stock.MovementIn, f.cold.ID, 100, day(1))

	_, err := f.svc.Record(context.Background(), stock.MovementInput{
		MaterialID:  f.mat.ID,
		WarehouseID: f.cold.ID,
		Type:        stock.MovementWaste,
		Amount:      types.Measure{Value: types.NewQuantity(150)},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	assert.Len(t, f.store.Stock().Movements(), 1)
	assert.Equal(t, types.NewQuantity(100), f.materialStock(t))
}

func TestRecord_NegativeAdjustmentIsInconsistent(t *testing.T) {
	f := newFixture(t)
	f.record(t, stock.MovementIn, f.cold.ID, 100, day(1))

	_, err := f.svc.Record(context.Background(), stock.MovementInput{
		MaterialID:  f.mat.ID,
		WarehouseID: f.cold.ID,
		Type:        stock.MovementAdjustment,
		Amount:      types.Measure{Value: types.NewQuantity(-101)},
	})
	assert.True(t, apperror.IsInconsistentData(err))
}

func TestRecord_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		in   stock.MovementInput
	}{
		{"zero quantity", stock.MovementInput{Type: stock.MovementIn}},
		{"negative in", stock.MovementInput{Type: stock.MovementIn, Amount: types.Measure{Value: types.NewQuantity(-1)}}},
		{"unknown type", stock.MovementInput{Type: "GIFT", Amount: types.Measure{Value: types.NewQuantity(1)}}},
		{"negative cost", stock.MovementInput{
			Type: stock.MovementIn, Amount: types.Measure{Value: types.NewQuantity(1)}, UnitCost: types.MustMoney("-1"),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.MaterialID = f.mat.ID
			tt.in.WarehouseID = f.cold.ID
			_, err := f.svc.Record(context.Background(), tt.in)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
}

func TestRecord_BackdatedReplaysSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.record(t, stock.MovementIn, f.cold.ID, 1000, day(1))
	f.record(t, stock.MovementOut, f.cold.ID, 200, day(3))
	late := f.record(t, stock.MovementIn, f.cold.ID, 500, day(2))

	assert.Equal(t, types.NewQuantity(1000), late.StockBefore)
	assert.Equal(t, types.NewQuantity(1500), late.StockAfter)

	ledger, err := f.svc.History(ctx, stock.MovementFilter{MaterialID: &f.mat.ID})
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.Equal(t, day(3), ledger[2].Date)
	assert.Equal(t, types.NewQuantity(1500), ledger[2].StockBefore)
	assert.Equal(t, types.NewQuantity(1300), ledger[2].StockAfter)

	for i := 1; i < len(ledger); i++ {
		assert.Equal(t, ledger[i-1].StockAfter, ledger[i].StockBefore)
	}

	asOf, err := f.svc.StockAsOf(ctx, f.mat.ID, &f.cold.ID, day(2).Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(1500), asOf)
}

func TestStockAsOf_IsDeterministic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.record(t, stock.MovementIn, f.cold.ID, 400, day(1))
	f.record(t, stock.MovementIn, f.dry.ID, 100, day(1))
	f.record(t, stock.MovementOut, f.cold.ID, 50, day(1))

	first, err := f.svc.StockAsOf(ctx, f.mat.ID, nil, day(2))
	require.NoError(t, err)
	for range 5 {
		again, err := f.svc.StockAsOf(ctx, f.mat.ID, nil, day(2))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, types.NewQuantity(450), first)

	cold, err := f.svc.StockAsOf(ctx, f.mat.ID, &f.cold.ID, day(2))
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(350), cold)
}

func TestTransfer_KeepsMaterialTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.record(t, stock.MovementIn, f.cold.ID, 1000, day(1))

	legs, err := f.svc.Transfer(ctx, stock.TransferInput{
		MaterialID:      f.mat.ID,
		FromWarehouseID: f.cold.ID,
		ToWarehouseID:   f.dry.ID,
		Amount:          types.NewMeasure(types.NewQuantityFromFloat64(0.4), types.UnitKilogram),
		Date:            day(2),
	})
	require.NoError(t, err)
	require.Len(t, legs, 2)
	assert.Equal(t, types.NewQuantity(-400), legs[0].Quantity)
	assert.Equal(t, types.NewQuantity(400), legs[1].Quantity)

	rows, err := f.svc.Balances(ctx, f.mat.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(1000), rows[0].CurrentStock+rows[1].CurrentStock)
	assert.Equal(t, types.NewQuantity(1000), f.materialStock(t))
}

func TestTransfer_FailureRollsBackBothLegs(t *testing.T) {
	f := newFixture(t)
	f.record(t, stock.MovementIn, f.cold.ID, 100, day(1))

	_, err := f.svc.Transfer(context.Background(), stock.TransferInput{
		MaterialID:      f.mat.ID,
		FromWarehouseID: f.cold.ID,
		ToWarehouseID:   f.dry.ID,
		Amount:          types.Measure{Value: types.NewQuantity(500)},
	})
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Len(t, f.store.Stock().Movements(), 1)

	_, err = f.svc.Transfer(context.Background(), stock.TransferInput{
		MaterialID:      f.mat.ID,
		FromWarehouseID: f.cold.ID,
		ToWarehouseID:   f.cold.ID,
		Amount:          types.Measure{Value: types.NewQuantity(5)},
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestReserveAndRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.record(t, stock.MovementIn, f.cold.ID, 1000, day(1))

	row, err := f.svc.Reserve(ctx, f.mat.ID, f.cold.ID, types.NewQuantity(600))
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(400), row.AvailableStock)

	_, err = f.svc.Record(ctx, stock.MovementInput{
		MaterialID:  f.mat.ID,
		WarehouseID: f.cold.ID,
		Type:        stock.MovementOut,
		Amount:      types.Measure{Value: types.NewQuantity(500)},
	})
	assert.True(t, apperror.IsInsufficientStock(err), "reserved stock is not available")

	_, err = f.svc.Reserve(ctx, f.mat.ID, f.cold.ID, types.NewQuantity(401))
	assert.True(t, apperror.IsInsufficientStock(err))

	_, err = f.svc.Release(ctx, f.mat.ID, f.cold.ID, types.NewQuantity(601))
	assert.True(t, apperror.IsValidation(err))

	row, err = f.svc.Release(ctx, f.mat.ID, f.cold.ID, types.NewQuantity(600))
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(1000), row.AvailableStock)
	assert.True(t, row.ReservedStock.IsZero())
}

func TestExpectedStockAndPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.record(t, stock.MovementIn, f.cold.ID, 800, day(1))
	f.record(t, stock.MovementIn, f.cold.ID, 200, day(5))

	p, err := f.svc.Preview(ctx, f.cold.ID, day(3))
	require.NoError(t, err)
	assert.Equal(t, 1, p.MaterialCount)
	assert.Equal(t, types.NewQuantity(800), p.Lines[0].Quantity)

	empty, err := f.svc.ExpectedStock(ctx, f.dry.ID, day(3))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = f.svc.Preview(ctx, id.New(), day(3))
	assert.True(t, apperror.IsNotFound(err))
}

func TestInboundRecalculatesAverageCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, in := range []struct {
		grams int64
		cost  string
	}{{1000, "0.02"}, {1000, "0.03"}} {
		_, err := f.svc.Record(ctx, stock.MovementInput{
			MaterialID:  f.mat.ID,
			WarehouseID: f.cold.ID,
			Type:        stock.MovementIn,
			Amount:      types.Measure{Value: types.NewQuantity(in.grams)},
			UnitCost:    types.MustMoney(in.cost),
		})
		require.NoError(t, err)
	}

	m, err := f.store.Materials().GetByID(ctx, f.mat.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.025", m.AverageCost.String())

	rows, err := f.svc.Balances(ctx, f.mat.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.025", rows[0].AverageCost.String())
	assert.Equal(t, "50", stock.Valuation(rows).String())
}
