package number

import (
	"github.com/shopspring/decimal"
)

// ScaleDigits digits of the fixed point scale
const ScaleDigits = 8

// Scale 10^8, the mantissa of every rate, factor and index
var Scale = NewUint(100_000_000)

// Truncate x / Scale, rounds toward zero and drops the remainder silently
func Truncate(x Uint) Uint {
	z, _ := x.Div(Scale)
	return z
}

// MulTruncate truncate(a * b), multiplies first and truncates once
func MulTruncate(a, b Uint) (Uint, error) {
	return MulDiv(a, b, Scale)
}

// Scaled human readable value of a mantissa, 150000000 => 1.5
func Scaled(x Uint) decimal.Decimal {
	return x.Decimal(-ScaleDigits)
}

// FromScaled parse a human readable rate into a mantissa, "0.05" => 5000000
func FromScaled(v string) (Uint, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return Zero, ErrInvalid
	}

	return FromDecimal(d, ScaleDigits)
}

// Decimal parse decimal string, zero on error
func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}
