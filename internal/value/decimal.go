// Package value holds the immutable, hashable value primitives the rest of
// the core is built on: fixed-precision Price and Quantity, the general
// Decimal/Money pair, Currency, and the aggregate identifier types.
package value

import (
	"math/big"

	"github.com/yanun0323/decimal"
)

// MaxPrecision is the hard ceiling for Price and Quantity precision, per the
// numeric limits in the external interfaces section: price and quantity
// precision must each be <= 9 decimal places.
const MaxPrecision = 9

// Decimal is the unscaled-rational result of mixing a Price with a Quantity,
// or of any computation whose precision is not statically fixed. It wraps
// the teacher's actual decimal dependency rather than hand-rolling a
// rational type.
type Decimal = decimal.Decimal

// decimalFromScaled converts a scaled integer + precision pair (the
// internal representation of Price and Quantity) into the general Decimal
// type, used when the two are mixed together.
func decimalFromScaled(raw int64, precision uint8) Decimal {
	return decimal.NewFromBigInt(big.NewInt(raw), -int(precision))
}

// ZeroDecimal is the additive identity of Decimal.
var ZeroDecimal = decimal.NewFromInt(0)

// OneDecimal is the multiplicative identity of Decimal.
var OneDecimal = decimal.NewFromInt(1)

// DecimalSign returns -1, 0, or 1 according to the sign of d. Position
// accounting needs this to tell an opening fill from a closing one without
// assuming Decimal exposes a dedicated Sign method.
func DecimalSign(d Decimal) int {
	return d.Cmp(ZeroDecimal)
}

// DecimalAbs returns the absolute value of d.
func DecimalAbs(d Decimal) Decimal {
	if DecimalSign(d) < 0 {
		return d.Neg()
	}
	return d
}

// Currency identifies the denomination of a Money amount.
type Currency struct {
	Code      string
	Precision uint8
}

// String returns the currency code.
func (c Currency) String() string {
	return c.Code
}

// IsZero reports whether c is the zero Currency value.
func (c Currency) IsZero() bool {
	return c.Code == ""
}

// Money pairs a decimal amount with its currency. Cross-currency arithmetic
// is forbidden: Add/Sub return ErrCurrencyMismatch when the currencies
// differ.
type Money struct {
	Amount   Decimal
	Currency Currency
}

// NewMoney constructs a Money value from a float, rounded to the currency's
// precision.
func NewMoney(amount float64, ccy Currency) Money {
	d := decimal.NewFromFloat(amount).Round(int(ccy.Precision))
	return Money{Amount: d, Currency: ccy}
}

// Add returns m + other. Both operands must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other. Both operands must share a currency.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// String formats the amount with its currency code.
func (m Money) String() string {
	return m.Amount.StringFixed(int(m.Currency.Precision)) + " " + m.Currency.Code
}
