package numerator

import (
	"context"
	"time"
)

// Generator generates sequential document numbers.
// Implementations must be collision-free across processes, so the counter
// lives in the store (postgres) or behind a lock (memory), never in a handler.
type Generator interface {
	// GetNextNumber generates the next document number.
	// Pattern: PREFIX-YEAR-NNN (e.g. SAY-2024-001)
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber sets the stored sequence value (for migration purposes).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
