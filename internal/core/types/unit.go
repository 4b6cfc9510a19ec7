package types

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is a unit of measure code.
type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitPiece      Unit = "pcs"
)

// Dimension groups units that convert into each other.
type Dimension string

const (
	DimensionMass   Dimension = "mass"
	DimensionVolume Dimension = "volume"
	DimensionCount  Dimension = "count"
)

type unitDef struct {
	dimension Dimension
	base      Unit
	factor    int64 // base units per one unit
}

// conversions is the single conversion-factor table.
var conversions = map[Unit]unitDef{
	UnitGram:       {DimensionMass, UnitGram, 1},
	UnitKilogram:   {DimensionMass, UnitGram, 1000},
	UnitMilliliter: {DimensionVolume, UnitMilliliter, 1},
	UnitLiter:      {DimensionVolume, UnitMilliliter, 1000},
	UnitPiece:      {DimensionCount, UnitPiece, 1},
}

// ParseUnit normalizes and validates a unit code.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	switch u {
	case "gr", "gram":
		u = UnitGram
	case "lt", "liter":
		u = UnitLiter
	case "pc", "piece", "adet":
		u = UnitPiece
	}
	if _, ok := conversions[u]; !ok {
		return "", fmt.Errorf("unknown unit %q", s)
	}
	return u, nil
}

// IsValid reports whether u is in the conversion table.
func (u Unit) IsValid() bool {
	_, ok := conversions[u]
	return ok
}

// Dimension returns the physical dimension of u.
func (u Unit) Dimension() Dimension {
	return conversions[u].dimension
}

// Base returns the base unit of u's dimension.
func (u Unit) Base() Unit {
	return conversions[u].base
}

// Measure is a quantity tagged with its unit.
type Measure struct {
	Value Quantity `json:"value"`
	Unit  Unit     `json:"unit"`
}

// NewMeasure creates a Measure.
func NewMeasure(v Quantity, u Unit) Measure {
	return Measure{Value: v, Unit: u}
}

// ToBase converts m into its dimension's base unit.
func (m Measure) ToBase() (Measure, error) {
	def, ok := conversions[m.Unit]
	if !ok {
		return Measure{}, fmt.Errorf("unknown unit %q", m.Unit)
	}
	limit := Quantity(math.MaxInt64 / def.factor)
	if m.Value > limit || m.Value < -limit {
		return Measure{}, fmt.Errorf("%w: %s", ErrQuantityOutOfRange, m)
	}
	return Measure{Value: m.Value * Quantity(def.factor), Unit: def.base}, nil
}

// ConvertTo converts m into target. Units must share a dimension.
func (m Measure) ConvertTo(target Unit) (Measure, error) {
	from, ok := conversions[m.Unit]
	if !ok {
		return Measure{}, fmt.Errorf("unknown unit %q", m.Unit)
	}
	to, ok := conversions[target]
	if !ok {
		return Measure{}, fmt.Errorf("unknown unit %q", target)
	}
	if from.dimension != to.dimension {
		return Measure{}, fmt.Errorf("cannot convert %s (%s) to %s (%s)", m.Unit, from.dimension, target, to.dimension)
	}
	if from.factor == to.factor {
		return Measure{Value: m.Value, Unit: target}, nil
	}
	v := m.Value.Decimal().
		Mul(decimal.NewFromInt(from.factor)).
		Div(decimal.NewFromInt(to.factor))
	q, err := QuantityFromDecimal(v)
	if err != nil {
		return Measure{}, err
	}
	return Measure{Value: q, Unit: target}, nil
}

func (m Measure) String() string {
	return fmt.Sprintf("%s %s", m.Value, m.Unit)
}
