package warehouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"restostock/internal/core/apperror"
)

func ptr(v float64) *float64 { return &v }

func TestWarehouse_Validate(t *testing.T) {
	tests := []struct {
		name    string
		w       Warehouse
		wantErr bool
	}{
		{"ok", Warehouse{Name: "Main", Type: TypeGeneral}, false},
		{"cold with bounds", Warehouse{Name: "Cold room", Type: TypeCold, MinTemperature: ptr(0), MaxTemperature: ptr(4)}, false},
		{"missing name", Warehouse{Type: TypeDry}, true},
		{"bad type", Warehouse{Name: "X", Type: "attic"}, true},
		{"inverted bounds", Warehouse{Name: "F", Type: TypeFreezer, MinTemperature: ptr(-10), MaxTemperature: ptr(-18)}, true},
		{"negative capacity", Warehouse{Name: "K", Type: TypeKitchen, Capacity: ptr(-1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate(context.Background())
			if tt.wantErr {
				assert.True(t, apperror.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
