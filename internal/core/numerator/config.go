// Package numerator provides domain contracts for document auto-numbering.
package numerator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict increments the stored sequence for every number.
	// Guarantees sequential numbers without gaps.
	StrategyStrict Strategy = iota

	// StrategyCached allocates ranges of numbers in memory.
	// Faster, but may produce gaps if the process restarts.
	StrategyCached
)

// Options configuration for number generation.
type Options struct {
	Strategy Strategy
	// RangeSize is the number of values to allocate at once in Cached strategy.
	// Default is 50.
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{
		Strategy: StrategyStrict,
	}
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g. "SAY")
	Prefix string

	// IncludeYear adds year to the number
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	// ResetPeriod: "year", "month", "day", "never"
	ResetPeriod string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// SequenceKey returns the storage key of the sequence that serves cfg in period.
func SequenceKey(cfg Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "day":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01_02"))
	case "month":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

// Format renders the number, e.g. SAY-2024-001.
func Format(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// Parse extracts the numeric part from a formatted number.
// Returns -1 if parsing fails.
func Parse(formatted string) int64 {
	idx := strings.LastIndex(formatted, "-")
	if idx < 0 || idx == len(formatted)-1 {
		return -1
	}
	n, err := strconv.ParseInt(formatted[idx+1:], 10, 64)
	if err != nil {
		return -1
	}
	return n
}
