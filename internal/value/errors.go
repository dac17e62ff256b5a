package value

import "errors"

var (
	ErrPrecisionTooHigh  = errors.New("value: precision exceeds maximum")
	ErrNegativeQuantity  = errors.New("value: quantity cannot be negative")
	ErrOverflow          = errors.New("value: arithmetic overflow")
	ErrCurrencyMismatch  = errors.New("value: currency mismatch")
	ErrInvalidDecimal    = errors.New("value: invalid decimal string")
	ErrInvalidInstrument = errors.New("value: invalid instrument id format")
)
