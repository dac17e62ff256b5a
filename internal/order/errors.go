package order

import "errors"

// ErrValidation is wrapped by construction-time enum validation failures
// (unknown side, type or time in force). A missing GTD expire time and an
// oversized display quantity wrap ErrMissingExpireTime and
// ErrInvalidDisplayQty instead.
var ErrValidation = errors.New("order: validation failed")

var (
	// ErrInvalidTransition is returned when an event cannot legally be
	// applied from the order's current status.
	ErrInvalidTransition = errors.New("order: invalid state transition")
	// ErrDuplicateExecution is returned when a Filled event's ExecutionId
	// has already been applied to this order.
	ErrDuplicateExecution = errors.New("order: duplicate execution id")
	// ErrOverFill is returned when a fill would push filled_qty above
	// quantity.
	ErrOverFill = errors.New("order: fill exceeds remaining quantity")
	// ErrQuantityBelowFilled is returned when an Updated event's quantity
	// would drop below the already-filled quantity.
	ErrQuantityBelowFilled = errors.New("order: updated quantity below filled quantity")
	// ErrMissingExpireTime is returned when a GTD order has no expire time,
	// or an Expired event arrives before it.
	ErrMissingExpireTime = errors.New("order: GTD order missing or unreached expire time")
	// ErrInvalidDisplayQty is returned when display_qty exceeds quantity.
	ErrInvalidDisplayQty = errors.New("order: display quantity exceeds order quantity")
	// ErrUnknownEvent is returned when Apply is given an event kind this
	// order does not recognize.
	ErrUnknownEvent = errors.New("order: unknown event kind")
)
