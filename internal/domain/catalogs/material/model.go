// Package material provides the Material catalog: raw ingredients and
// supplies tracked in stock.
package material

import (
	"context"
	"strings"

	"restostock/internal/core/apperror"
	"restostock/internal/core/entity"
	"restostock/internal/core/id"
	"restostock/internal/core/types"
)

// Material is a stock-keeping item.
//
// CurrentStock is the denormalized total over all warehouses, in the
// consumption unit. It may drift from the sum of stock rows; the
// reconciliation service detects and corrects that.
type Material struct {
	entity.BaseEntity

	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category"`

	PurchaseUnit    types.Unit `db:"purchase_unit" json:"purchaseUnit"`
	ConsumptionUnit types.Unit `db:"consumption_unit" json:"consumptionUnit"`

	CurrentStock  types.Quantity  `db:"current_stock" json:"currentStock"`
	MinStockLevel types.Quantity  `db:"min_stock_level" json:"minStockLevel"`
	MaxStockLevel *types.Quantity `db:"max_stock_level" json:"maxStockLevel,omitempty"`

	// AverageCost is currency per consumption unit
	AverageCost types.Money `db:"average_cost" json:"averageCost"`

	DefaultWarehouseID *id.ID `db:"default_warehouse_id" json:"defaultWarehouseId,omitempty"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// Validate implements entity.Validatable interface.
func (m *Material) Validate(_ context.Context) error {
	if strings.TrimSpace(m.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if !m.ConsumptionUnit.IsValid() {
		return apperror.NewValidation("invalid consumption unit").
			WithDetail("field", "consumptionUnit").
			WithDetail("value", string(m.ConsumptionUnit))
	}
	if m.PurchaseUnit == "" {
		m.PurchaseUnit = m.ConsumptionUnit
	}
	if !m.PurchaseUnit.IsValid() || m.PurchaseUnit.Dimension() != m.ConsumptionUnit.Dimension() {
		return apperror.NewValidation("purchase unit must share the consumption unit's dimension").
			WithDetail("field", "purchaseUnit").
			WithDetail("value", string(m.PurchaseUnit))
	}
	if m.MinStockLevel.IsNegative() {
		return apperror.NewValidation("minStockLevel cannot be negative").WithDetail("field", "minStockLevel")
	}
	if m.MaxStockLevel != nil && *m.MaxStockLevel < m.MinStockLevel {
		return apperror.NewValidation("maxStockLevel must be >= minStockLevel").WithDetail("field", "maxStockLevel")
	}
	return nil
}

// ToConsumption converts a measure into this material's consumption unit.
func (m *Material) ToConsumption(v types.Measure) (types.Quantity, error) {
	if v.Unit == "" {
		return v.Value, nil
	}
	converted, err := v.ConvertTo(m.ConsumptionUnit)
	if err != nil {
		return 0, apperror.NewValidation(err.Error()).WithDetail("material_id", m.ID)
	}
	return converted.Value, nil
}

// IsBelowMinimum reports whether stock has fallen under the reorder level.
func (m *Material) IsBelowMinimum() bool {
	return m.CurrentStock < m.MinStockLevel
}
