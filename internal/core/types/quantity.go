// Package types provides the value types shared by stock accounting:
// fixed-point quantities, money and units of measure.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Quantity is a fixed-point quantity with 4 decimal places (scale = 1e4),
// always expressed in a material's consumption base unit.
// Stored as BIGINT (scaled integer) in the database.
type Quantity int64

const (
	QuantityScale  int64 = 10_000
	quantityDigits int32 = 4
)

// Epsilon is the tolerance used when comparing stock figures (0.01 base units).
const Epsilon Quantity = 100

// ErrQuantityOutOfRange is returned when a value does not fit the scaled int64.
var ErrQuantityOutOfRange = errors.New("quantity out of range")

var (
	maxScaled = decimal.NewFromInt(math.MaxInt64)
	minScaled = decimal.NewFromInt(math.MinInt64)
)

func NewQuantityFromFloat64(v float64) Quantity {
	return Quantity(math.Round(v * float64(QuantityScale)))
}

// NewQuantity returns a whole number of base units.
func NewQuantity(units int64) Quantity { return Quantity(units * QuantityScale) }

// NewQuantityFromDecimal rounds d to 4 fractional digits.
func NewQuantityFromDecimal(d decimal.Decimal) Quantity {
	return Quantity(d.Shift(quantityDigits).Round(0).IntPart())
}

// QuantityFromDecimal is NewQuantityFromDecimal with a range check.
func QuantityFromDecimal(d decimal.Decimal) (Quantity, error) {
	scaled := d.Shift(quantityDigits).Round(0)
	if scaled.GreaterThan(maxScaled) || scaled.LessThan(minScaled) {
		return 0, fmt.Errorf("%w: %s", ErrQuantityOutOfRange, d.String())
	}
	return Quantity(scaled.IntPart()), nil
}

func (q Quantity) Int64Scaled() int64 { return int64(q) }

func (q Quantity) Float64() float64 { return float64(q) / float64(QuantityScale) }

// Decimal converts q into an exact decimal value.
func (q Quantity) Decimal() decimal.Decimal { return decimal.New(int64(q), -quantityDigits) }

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

func (q Quantity) Neg() Quantity { return -q }

func (q Quantity) Abs() Quantity {
	if q < 0 {
		return -q
	}
	return q
}

// Within reports whether |q - other| < eps.
func (q Quantity) Within(other, eps Quantity) bool {
	return (q - other).Abs() < eps
}

// String returns a decimal string with 4 fractional digits.
func (q Quantity) String() string {
	v := q.Abs()
	intPart := int64(v) / QuantityScale
	frac := int64(v) % QuantityScale
	if q < 0 {
		return fmt.Sprintf("-%d.%04d", intPart, frac)
	}
	return fmt.Sprintf("%d.%04d", intPart, frac)
}

// MarshalJSON encodes Quantity as JSON number (not string), preserving 4 digits.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts either a JSON number or string.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	s := string(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	parsed, err := ParseQuantity(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// ParseQuantity parses a decimal string such as "12.5" or "-0.25".
// Digits beyond the fourth fractional place are truncated.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	if strings.ContainsAny(s, "eE") {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("parse quantity: %w", err)
		}
		return QuantityFromDecimal(d.Truncate(quantityDigits))
	}

	sign := int64(1)
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	intStr, fracStr, _ := strings.Cut(s, ".")
	if intStr == "" {
		intStr = "0"
	}
	intPart, err := strconv.ParseUint(intStr, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %s", ErrQuantityOutOfRange, s)
		}
		return 0, fmt.Errorf("parse quantity integer part: %w", err)
	}

	if len(fracStr) > 4 {
		fracStr = fracStr[:4]
	}
	fracStr += strings.Repeat("0", 4-len(fracStr))
	frac, err := strconv.ParseUint(fracStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse quantity fractional part: %w", err)
	}

	if intPart > (math.MaxInt64-frac)/uint64(QuantityScale) {
		return 0, fmt.Errorf("%w: %s", ErrQuantityOutOfRange, s)
	}
	return Quantity(sign * int64(intPart*uint64(QuantityScale)+frac)), nil
}
