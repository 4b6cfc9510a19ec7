package dto

import (
	"restostock/internal/core/types"
	"restostock/internal/domain/catalogs/material"
	"restostock/internal/domain/catalogs/warehouse"
)

// CreateMaterialRequest is the request body for creating a material.
type CreateMaterialRequest struct {
	Code               string          `json:"code"`
	Name               string          `json:"name" binding:"required"`
	Category           string          `json:"category"`
	PurchaseUnit       types.Unit      `json:"purchaseUnit"`
	ConsumptionUnit    types.Unit      `json:"consumptionUnit" binding:"required"`
	MinStockLevel      types.Quantity  `json:"minStockLevel"`
	MaxStockLevel      *types.Quantity `json:"maxStockLevel"`
	AverageCost        types.Money     `json:"averageCost"`
	DefaultWarehouseID string          `json:"defaultWarehouseId"`
}

// ToInput converts the request to the service input.
func (r *CreateMaterialRequest) ToInput() (material.CreateInput, error) {
	whID, err := ParseOptionalID("defaultWarehouseId", r.DefaultWarehouseID)
	if err != nil {
		return material.CreateInput{}, err
	}
	return material.CreateInput{
		Code:               r.Code,
		Name:               r.Name,
		Category:           r.Category,
		PurchaseUnit:       r.PurchaseUnit,
		ConsumptionUnit:    r.ConsumptionUnit,
		MinStockLevel:      r.MinStockLevel,
		MaxStockLevel:      r.MaxStockLevel,
		AverageCost:        r.AverageCost,
		DefaultWarehouseID: whID,
	}, nil
}

// MaterialResponse adds derived flags to the material.
type MaterialResponse struct {
	*material.Material
	BelowMinimum bool `json:"belowMinimum"`
}

func FromMaterial(m *material.Material) MaterialResponse {
	return MaterialResponse{Material: m, BelowMinimum: m.IsBelowMinimum()}
}

// CreateWarehouseRequest is the request body for creating a warehouse.
type CreateWarehouseRequest struct {
	Name           string                  `json:"name" binding:"required"`
	Type           warehouse.WarehouseType `json:"type"`
	MinTemperature *float64                `json:"minTemperature"`
	MaxTemperature *float64                `json:"maxTemperature"`
	Capacity       *float64                `json:"capacity"`
}

func (r *CreateWarehouseRequest) ToInput() warehouse.CreateInput {
	t := r.Type
	if t == "" {
		t = warehouse.TypeGeneral
	}
	return warehouse.CreateInput{
		Name:           r.Name,
		Type:           t,
		MinTemperature: r.MinTemperature,
		MaxTemperature: r.MaxTemperature,
		Capacity:       r.Capacity,
	}
}

// CatalogQuery holds list parameters shared by catalogs.
type CatalogQuery struct {
	PageQuery
	Search          string `form:"search"`
	IncludeInactive bool   `form:"includeInactive"`
}
