package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"restostock/internal/core/entity"
	"restostock/internal/core/types"
	"restostock/internal/domain/catalogs/material"
	"restostock/internal/domain/documents/stockcount"
)

func TestExtractDBColumns_Embedded(t *testing.T) {
	cols := ExtractDBColumns[material.Material]()

	for _, expected := range []string{"id", "created_at", "updated_at", "code", "name", "current_stock", "average_cost"} {
		assert.Contains(t, cols, expected)
	}

	countCols := ExtractDBColumns[stockcount.StockCount]()
	assert.Contains(t, countCols, "version")
	assert.Contains(t, countCols, "count_number")
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	m := material.Material{
		BaseEntity:   entity.NewBaseEntity(now),
		Code:         "DOM",
		Name:         "Domates",
		CurrentStock: types.NewQuantity(5),
		IsActive:     true,
	}

	data := StructToMap(&m)

	assert.Equal(t, m.ID, data["id"])
	assert.Equal(t, "DOM", data["code"])
	assert.Equal(t, types.NewQuantity(5), data["current_stock"])
	assert.Equal(t, true, data["is_active"])
	assert.Nil(t, StructToMap(42))
}

func TestPick(t *testing.T) {
	data := map[string]any{"id": 1, "name": "x", "extra": true}
	assert.Equal(t, map[string]any{"id": 1, "name": "x"}, Pick(data, []string{"id", "name", "missing"}))
}
