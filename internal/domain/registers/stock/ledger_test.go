package stock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"restostock/internal/core/id"
	"restostock/internal/core/types"
)

func mv(materialID id.ID, seq int64, date time.Time, qty int64) Movement {
	return Movement{ID: id.New(), Seq: seq, MaterialID: materialID, Date: date, Quantity: types.NewQuantity(qty)}
}

func TestFold(t *testing.T) {
	m := id.New()
	d := func(day, hour int) time.Time { return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC) }

	ledger := []Movement{
		mv(m, 3, d(3, 9), -200),
		mv(m, 1, d(1, 9), 1000),
		mv(m, 2, d(2, 9), 500),
		mv(m, 4, d(3, 9), 50),
	}

	tests := []struct {
		name   string
		cutoff time.Time
		want   int64
	}{
		{"before everything", d(1, 0), 0},
		{"cutoff is exclusive", d(1, 9), 0},
		{"first day", d(1, 10), 1000},
		{"second day", d(2, 23), 1500},
		{"same instant movements both excluded", d(3, 9), 1500},
		{"all", d(4, 0), 1350},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, types.NewQuantity(tt.want), Fold(ledger, tt.cutoff))
		})
	}
}

func TestFold_DoesNotReorderInput(t *testing.T) {
	m := id.New()
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ledger := []Movement{mv(m, 2, day.Add(time.Hour), 1), mv(m, 1, day, 2)}

	Fold(ledger, day.Add(48*time.Hour))

	assert.Equal(t, int64(2), ledger[0].Seq)
}

func TestSortLedger_TieBreaksOnSeq(t *testing.T) {
	m := id.New()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ledger := []Movement{mv(m, 7, at, 1), mv(m, 3, at, 1), mv(m, 5, at, 1), mv(m, 1, at.Add(-time.Minute), 1)}

	SortLedger(ledger)

	seqs := make([]int64, 0, len(ledger))
	for _, l := range ledger {
		seqs = append(seqs, l.Seq)
	}
	assert.Equal(t, []int64{1, 3, 5, 7}, seqs)
}

func TestFoldByMaterial_SkipsZeroBalances(t *testing.T) {
	a, b := id.New(), id.New()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ledger := []Movement{
		mv(a, 1, at, 10),
		mv(b, 2, at, 5),
		mv(b, 3, at.Add(time.Minute), -5),
	}

	lines := FoldByMaterial(ledger, at.Add(time.Hour))

	assert.Equal(t, []ExpectedLine{{MaterialID: a, Quantity: types.NewQuantity(10)}}, lines)
}

func TestMaterialStock_Recompute(t *testing.T) {
	row := MaterialStock{CurrentStock: types.NewQuantity(10), ReservedStock: types.NewQuantity(4)}
	row.Recompute()
	assert.Equal(t, types.NewQuantity(6), row.AvailableStock)
}
