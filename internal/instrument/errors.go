package instrument

import "errors"

// ErrNotFound is returned when an InstrumentId has not been registered.
var ErrNotFound = errors.New("instrument: not found")
