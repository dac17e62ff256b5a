package bar

import "errors"

var (
	// ErrNonPositiveStep is returned by every constructor when step <= 0.
	ErrNonPositiveStep = errors.New("bar: step must be positive")
	// ErrOutOfOrder is returned when a tick's ts_event precedes the
	// builder's last observed ts_event; the tick is dropped, not applied.
	ErrOutOfOrder = errors.New("bar: tick out of order")
)
