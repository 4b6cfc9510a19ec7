package material

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restostock/internal/core/apperror"
	"restostock/internal/core/types"
)

func TestMaterial_Validate(t *testing.T) {
	maxLow := types.NewQuantity(1)
	tests := []struct {
		name    string
		m       Material
		wantErr bool
	}{
		{"ok", Material{Name: "Domates", ConsumptionUnit: types.UnitGram, PurchaseUnit: types.UnitKilogram}, false},
		{"purchase defaults", Material{Name: "Milk", ConsumptionUnit: types.UnitMilliliter}, false},
		{"missing name", Material{ConsumptionUnit: types.UnitGram}, true},
		{"bad unit", Material{Name: "X", ConsumptionUnit: "oz"}, true},
		{"dimension mismatch", Material{Name: "X", ConsumptionUnit: types.UnitGram, PurchaseUnit: types.UnitLiter}, true},
		{"max below min", Material{Name: "X", ConsumptionUnit: types.UnitGram, MinStockLevel: types.NewQuantity(5), MaxStockLevel: &maxLow}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate(context.Background())
			if tt.wantErr {
				assert.True(t, apperror.IsValidation(err), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMaterial_ToConsumption(t *testing.T) {
	m := &Material{Name: "Domates", ConsumptionUnit: types.UnitGram}

	q, err := m.ToConsumption(types.NewMeasure(types.NewQuantityFromFloat64(2.5), types.UnitKilogram))
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(2500), q)

	q, err = m.ToConsumption(types.Measure{Value: types.NewQuantity(40)})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(40), q)

	_, err = m.ToConsumption(types.NewMeasure(types.NewQuantity(1), types.UnitLiter))
	assert.True(t, apperror.IsValidation(err))
}
