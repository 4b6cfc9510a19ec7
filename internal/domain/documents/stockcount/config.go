package stockcount

import (
	"time"

	"restostock/internal/core/numerator"
)

const (
	// NumberPrefix starts every count number (SAY-2024-001).
	NumberPrefix = "SAY"

	// NumeratorStrategy is strict: count numbers come from a transactional
	// sequence so concurrent creation never collides.
	NumeratorStrategy = numerator.StrategyStrict
)

// Config holds workflow settings.
type Config struct {
	Numbering numerator.Config

	// Location is used to combine CountDate and CountTime into the cutoff.
	Location *time.Location
}

// DefaultConfig returns SAY-YYYY-NNN numbering in UTC.
func DefaultConfig() Config {
	cfg := numerator.DefaultConfig(NumberPrefix)
	cfg.PadWidth = 3
	return Config{
		Numbering: cfg,
		Location:  time.UTC,
	}
}
