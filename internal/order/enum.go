package order

// Side describes order direction. Follows the teacher's _beg/_end sentinel
// idiom for enum validity checks (internal/adapter/enum, internal/model/enum).
type Side uint8

const (
	_sideBeg Side = iota
	SideBuy
	SideSell
	_sideEnd
)

// IsAvailable reports whether the side is a known, non-sentinel value.
func (s Side) IsAvailable() bool { return s > _sideBeg && s < _sideEnd }

// Type is the order type: Market, Limit, StopMarket, StopLimit, ...
type Type uint8

const (
	_typeBeg Type = iota
	TypeMarket
	TypeLimit
	TypeStopMarket
	TypeStopLimit
	_typeEnd
)

// IsAvailable reports whether the type is a known, non-sentinel value.
func (t Type) IsAvailable() bool { return t > _typeBeg && t < _typeEnd }

// HasTrigger reports whether this order type carries a trigger price
// before it activates (stop orders).
func (t Type) HasTrigger() bool {
	return t == TypeStopMarket || t == TypeStopLimit
}

// HasLimitPrice reports whether this order type carries a resting limit
// price.
func (t Type) HasLimitPrice() bool {
	return t == TypeLimit || t == TypeStopLimit
}

// TimeInForce describes how long an order remains active.
type TimeInForce uint8

const (
	_tifBeg TimeInForce = iota
	TimeInForceGTC
	TimeInForceIOC
	TimeInForceFOK
	TimeInForceGTD
	_tifEnd
)

// IsAvailable reports whether the time-in-force is a known, non-sentinel
// value.
func (tif TimeInForce) IsAvailable() bool { return tif > _tifBeg && tif < _tifEnd }

// Status is the order's finite-state-machine state.
type Status uint8

const (
	_statusBeg Status = iota
	StatusInitialized
	StatusDenied
	StatusSubmitted
	StatusRejected
	StatusAccepted
	StatusPendingUpdate
	StatusPendingCancel
	StatusTriggered
	StatusCanceled
	StatusExpired
	StatusPartiallyFilled
	StatusFilled
	_statusEnd
)

// IsAvailable reports whether the status is a known, non-sentinel value.
func (s Status) IsAvailable() bool { return s > _statusBeg && s < _statusEnd }

// IsTerminal reports whether no further events can legally be applied.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDenied, StatusRejected, StatusCanceled, StatusExpired, StatusFilled:
		return true
	default:
		return false
	}
}

// ContingencyType governs how an order reacts to its siblings in the same
// order list.
type ContingencyType uint8

const (
	ContingencyNone ContingencyType = iota
	ContingencyOTO
	ContingencyOCO
	ContingencyOUO
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

func (s Status) String() string {
	switch s {
	case StatusInitialized:
		return "INITIALIZED"
	case StatusDenied:
		return "DENIED"
	case StatusSubmitted:
		return "SUBMITTED"
	case StatusRejected:
		return "REJECTED"
	case StatusAccepted:
		return "ACCEPTED"
	case StatusPendingUpdate:
		return "PENDING_UPDATE"
	case StatusPendingCancel:
		return "PENDING_CANCEL"
	case StatusTriggered:
		return "TRIGGERED"
	case StatusCanceled:
		return "CANCELED"
	case StatusExpired:
		return "EXPIRED"
	case StatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case StatusFilled:
		return "FILLED"
	default:
		return "UNKNOWN"
	}
}
