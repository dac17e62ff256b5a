package value

// Quantity is a fixed-precision, non-negative value: a 64-bit scaled
// integer plus its decimal precision. Negative quantities are rejected at
// every construction and arithmetic boundary.
//
//go:generate codable -file quantity.go
type Quantity struct {
	raw       int64
	precision uint8
}

// ZeroQuantity is the additive identity at precision 0.
var ZeroQuantity = Quantity{}

// NewQuantityFromString parses the displayed decimal form of a quantity.
func NewQuantityFromString(s string) (Quantity, error) {
	raw, precision, err := parseScaledString(s)
	if err != nil {
		return Quantity{}, err
	}
	if raw < 0 {
		return Quantity{}, ErrNegativeQuantity
	}
	return Quantity{raw: raw, precision: precision}, nil
}

// NewQuantityFromFloat builds a Quantity at the given precision, rounding
// half-to-even.
func NewQuantityFromFloat(v float64, precision uint8) (Quantity, error) {
	if precision > MaxPrecision {
		return Quantity{}, ErrPrecisionTooHigh
	}
	raw := roundHalfEven(v, precision)
	if raw < 0 {
		return Quantity{}, ErrNegativeQuantity
	}
	return Quantity{raw: raw, precision: precision}, nil
}

// NewQuantityRaw builds a Quantity directly from a scaled integer and
// precision.
func NewQuantityRaw(raw int64, precision uint8) (Quantity, error) {
	if precision > MaxPrecision {
		return Quantity{}, ErrPrecisionTooHigh
	}
	if raw < 0 {
		return Quantity{}, ErrNegativeQuantity
	}
	return Quantity{raw: raw, precision: precision}, nil
}

// Raw returns the underlying scaled integer.
func (q Quantity) Raw() int64 { return q.raw }

// Precision returns the number of decimal places.
func (q Quantity) Precision() uint8 { return q.precision }

// IsZero reports whether the quantity is zero.
func (q Quantity) IsZero() bool { return q.raw == 0 }

// Float64 returns the quantity as a float64, for display only.
func (q Quantity) Float64() float64 {
	return float64(q.raw) / float64(scaleFactor(q.precision))
}

// String renders the quantity in its displayed decimal form.
func (q Quantity) String() string {
	return string(appendScaledInt(nil, q.raw, q.precision))
}

// Add returns q + other, at the higher of the two precisions.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	prec := maxPrecision(q.precision, other.precision)
	a, err := rescale(q.raw, q.precision, prec)
	if err != nil {
		return Quantity{}, err
	}
	b, err := rescale(other.raw, other.precision, prec)
	if err != nil {
		return Quantity{}, err
	}
	sum := a + b
	if sum < a {
		return Quantity{}, ErrOverflow
	}
	return Quantity{raw: sum, precision: prec}, nil
}

// Sub returns q - other, at the higher of the two precisions. Errors if the
// result would be negative.
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	prec := maxPrecision(q.precision, other.precision)
	a, err := rescale(q.raw, q.precision, prec)
	if err != nil {
		return Quantity{}, err
	}
	b, err := rescale(other.raw, other.precision, prec)
	if err != nil {
		return Quantity{}, err
	}
	if b > a {
		return Quantity{}, ErrNegativeQuantity
	}
	return Quantity{raw: a - b, precision: prec}, nil
}

// Cmp compares q and other at matched precision: -1, 0, or 1.
func (q Quantity) Cmp(other Quantity) int {
	prec := maxPrecision(q.precision, other.precision)
	a, _ := rescale(q.raw, q.precision, prec)
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

// Equal reports whether q and other compare equal at matched precision.
func (q Quantity) Equal(other Quantity) bool { return q.Cmp(other) == 0 }

// LessThan reports whether q < other.
func (q Quantity) LessThan(other Quantity) bool { return q.Cmp(other) < 0 }

// GreaterThan reports whether q > other.
func (q Quantity) GreaterThan(other Quantity) bool { return q.Cmp(other) > 0 }

// ToDecimal converts the quantity to the general Decimal type.
func (q Quantity) ToDecimal() Decimal {
	return decimalFromScaled(q.raw, q.precision)
}

// NewQuantityFromDecimal builds a Quantity at the given precision from a
// general Decimal, rounding half-to-even and taking the absolute value
// (callers track sign separately, e.g. position.Side).
func NewQuantityFromDecimal(d Decimal, precision uint8) (Quantity, error) {
	f, _ := d.Float64()
	if f < 0 {
		f = -f
	}
	return NewQuantityFromFloat(f, precision)
}
