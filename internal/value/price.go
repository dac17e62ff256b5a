package value

// Price is a fixed-precision signed value: a 64-bit scaled integer plus the
// number of decimal places it is scaled by. Grounded on the teacher's
// scaled-integer idiom (model.Price / adapter.Decimal{Integer, Scale}),
// generalized with parsing, rounding, and precision-aware arithmetic.
//
//go:generate codable -file price.go
type Price struct {
	raw       int64
	precision uint8
}

// ZeroPrice is the additive identity at precision 0.
var ZeroPrice = Price{}

// NewPriceFromString parses the displayed decimal form of a price, e.g.
// "1.2345" at precision 4.
func NewPriceFromString(s string) (Price, error) {
	raw, precision, err := parseScaledString(s)
	if err != nil {
		return Price{}, err
	}
	return Price{raw: raw, precision: precision}, nil
}

// NewPriceFromFloat builds a Price at the given precision, rounding
// half-to-even.
func NewPriceFromFloat(v float64, precision uint8) (Price, error) {
	if precision > MaxPrecision {
		return Price{}, ErrPrecisionTooHigh
	}
	return Price{raw: roundHalfEven(v, precision), precision: precision}, nil
}

// NewPriceRaw builds a Price directly from a scaled integer and precision,
// for callers that already hold the scaled representation (e.g. decoding).
func NewPriceRaw(raw int64, precision uint8) (Price, error) {
	if precision > MaxPrecision {
		return Price{}, ErrPrecisionTooHigh
	}
	return Price{raw: raw, precision: precision}, nil
}

// Raw returns the underlying scaled integer.
func (p Price) Raw() int64 { return p.raw }

// Precision returns the number of decimal places.
func (p Price) Precision() uint8 { return p.precision }

// IsZero reports whether the price is zero, regardless of precision.
func (p Price) IsZero() bool { return p.raw == 0 }

// Float64 returns the price as a float64, for display or inexact
// comparisons only — never use this in further fixed-precision arithmetic.
func (p Price) Float64() float64 {
	return float64(p.raw) / float64(scaleFactor(p.precision))
}

// String renders the price in its displayed decimal form, following the
// teacher's digit-shifting format routine.
func (p Price) String() string {
	return string(appendScaledInt(nil, p.raw, p.precision))
}

// maxPrecision returns the higher of two precisions, as arithmetic between
// two Price values returns the max-precision result per the spec.
func maxPrecision(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

// Add returns p + other, at the higher of the two precisions.
func (p Price) Add(other Price) (Price, error) {
	prec := maxPrecision(p.precision, other.precision)
	a, err := rescale(p.raw, p.precision, prec)
	if err != nil {
		return Price{}, err
	}
	b, err := rescale(other.raw, other.precision, prec)
	if err != nil {
		return Price{}, err
	}
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return Price{}, ErrOverflow
	}
	return Price{raw: sum, precision: prec}, nil
}

// Sub returns p - other, at the higher of the two precisions.
func (p Price) Sub(other Price) (Price, error) {
	return p.Add(other.Neg())
}

// Neg returns -p.
func (p Price) Neg() Price {
	return Price{raw: -p.raw, precision: p.precision}
}

// Cmp compares p and other at matched precision: -1, 0, or 1.
func (p Price) Cmp(other Price) int {
	prec := maxPrecision(p.precision, other.precision)
	a, _ := rescale(p.raw, p.precision, prec)
	b, _ := rescale(other.raw, other.precision, prec)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports whether p and other compare equal at matched precision.
func (p Price) Equal(other Price) bool {
	return p.Cmp(other) == 0
}

// LessThan reports whether p < other.
func (p Price) LessThan(other Price) bool { return p.Cmp(other) < 0 }

// GreaterThan reports whether p > other.
func (p Price) GreaterThan(other Price) bool { return p.Cmp(other) > 0 }

// MulQuantity multiplies a Price by a Quantity, returning the general
// Decimal the spec calls for when mixing the two fixed-precision types.
func (p Price) MulQuantity(q Quantity) Decimal {
	return p.ToDecimal().Mul(q.ToDecimal())
}

// ToDecimal converts the price to the general Decimal type.
func (p Price) ToDecimal() Decimal {
	return decimalFromScaled(p.raw, p.precision)
}

// NewPriceFromDecimal builds a Price at the given precision from a general
// Decimal, rounding half-to-even. Used where a computation (PnL, weighted
// averages) is carried in Decimal and must be reported back at a fixed
// precision.
func NewPriceFromDecimal(d Decimal, precision uint8) (Price, error) {
	f, _ := d.Float64()
	return NewPriceFromFloat(f, precision)
}
