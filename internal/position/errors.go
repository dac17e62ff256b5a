package position

import "errors"

var (
	// ErrDuplicateExecution is returned when a fill's ExecutionId has
	// already been applied to this position.
	ErrDuplicateExecution = errors.New("position: duplicate execution id")
	// ErrClosed is returned when a fill is applied to a position that has
	// already returned to FLAT.
	ErrClosed = errors.New("position: position is closed")
	// ErrInstrumentMismatch is returned when a fill's instrument does not
	// match the position it is being applied to.
	ErrInstrumentMismatch = errors.New("position: instrument mismatch")
)
