// Package warehouse provides the Warehouse catalog.
// Warehouses partition stock; they carry no algorithmic role themselves.
package warehouse

import (
	"context"
	"strings"

	"restostock/internal/core/apperror"
	"restostock/internal/core/entity"
)

// WarehouseType defines the storage class of a warehouse.
type WarehouseType string

const (
	TypeGeneral WarehouseType = "general"
	TypeCold    WarehouseType = "cold"
	TypeFreezer WarehouseType = "freezer"
	TypeDry     WarehouseType = "dry"
	TypeKitchen WarehouseType = "kitchen"
)

// Warehouse represents a storage location.
type Warehouse struct {
	entity.BaseEntity

	Name string        `db:"name" json:"name"`
	Type WarehouseType `db:"type" json:"type"`

	// Temperature bounds in °C, for cold and freezer rooms
	MinTemperature *float64 `db:"min_temperature" json:"minTemperature,omitempty"`
	MaxTemperature *float64 `db:"max_temperature" json:"maxTemperature,omitempty"`

	// Capacity in the warehouse's own unit of space (free-form)
	Capacity *float64 `db:"capacity" json:"capacity,omitempty"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// Validate implements entity.Validatable interface.
func (w *Warehouse) Validate(_ context.Context) error {
	if strings.TrimSpace(w.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if !isValidWarehouseType(w.Type) {
		return apperror.NewValidation("invalid warehouse type").
			WithDetail("field", "type").
			WithDetail("value", string(w.Type))
	}
	if w.MinTemperature != nil && w.MaxTemperature != nil && *w.MinTemperature > *w.MaxTemperature {
		return apperror.NewValidation("minTemperature must not exceed maxTemperature").
			WithDetail("field", "minTemperature")
	}
	if w.Capacity != nil && *w.Capacity < 0 {
		return apperror.NewValidation("capacity cannot be negative").WithDetail("field", "capacity")
	}
	return nil
}

func isValidWarehouseType(t WarehouseType) bool {
	switch t {
	case TypeGeneral, TypeCold, TypeFreezer, TypeDry, TypeKitchen:
		return true
	}
	return false
}
