package memory

import (
	"context"
	"time"

	"restostock/internal/core/numerator"
)

// Numerator implements numerator.Generator on the store's sequences.
// Every strategy behaves as strict: the counter changes inside the caller's
// transaction and is rolled back with it.
type Numerator struct{ s *Store }

var _ numerator.Generator = (*Numerator)(nil)

func (n *Numerator) GetNextNumber(ctx context.Context, cfg numerator.Config, _ *numerator.Options, period time.Time) (string, error) {
	var next int64
	err := n.s.with(ctx, func(st *state) error {
		key := numerator.SequenceKey(cfg, period)
		st.sequences[key]++
		next = st.sequences[key]
		return nil
	})
	if err != nil {
		return "", err
	}
	return numerator.Format(cfg, period, next), nil
}

// SetNextNumber overwrites the stored sequence value.
func (n *Numerator) SetNextNumber(ctx context.Context, cfg numerator.Config, period time.Time, value int64) error {
	return n.s.with(ctx, func(st *state) error {
		st.sequences[numerator.SequenceKey(cfg, period)] = value
		return nil
	})
}
