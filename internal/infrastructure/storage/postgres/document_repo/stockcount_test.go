package document_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restostock/internal/core/id"
	"restostock/internal/domain/documents/stockcount"
)

func TestStockCountColumns(t *testing.T) {
	for _, col := range []string{"id", "version", "count_number", "cutoff", "completed_at"} {
		assert.Contains(t, countColumns, col)
	}
	assert.Contains(t, itemColumns, "is_manually_added")
	assert.Contains(t, adjustmentColumns, "movement_id")
}

func TestStockCountListQuery(t *testing.T) {
	repo := NewStockCountRepo(nil)
	warehouseID := id.New()
	status := stockcount.StatusInProgress

	sql, args, err := repo.listQuery(stockcount.ListFilter{WarehouseID: &warehouseID, Status: &status}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM stock_counts WHERE warehouse_id = $1 AND status = $2")
	assert.Equal(t, []any{warehouseID.String(), "IN_PROGRESS"}, args)
}
