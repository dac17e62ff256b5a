package order

// transitions encodes the finite-state machine table from spec.md §4.3.
// Each entry maps (current status, event kind) to the resulting status.
// Two special cases are NOT encoded here because they depend on event
// payload, not just event kind, and are handled directly in Apply:
//   - Filled always resolves to PARTIALLY_FILLED or FILLED depending on
//     whether the fill completes the order.
//   - Accepted arriving while PENDING_UPDATE or PENDING_CANCEL is a
//     rollback to the status recorded when the order entered the pending
//     state, not a flat transition to ACCEPTED.
var transitions = map[Status]map[EventKind]Status{
	StatusInitialized: {
		EventDenied:    StatusDenied,
		EventSubmitted: StatusSubmitted,
	},
	StatusSubmitted: {
		EventRejected:     StatusRejected,
		EventAccepted:     StatusAccepted,
		EventPendingCancel: StatusPendingCancel,
		EventCanceled:     StatusCanceled,
	},
	StatusAccepted: {
		EventPendingUpdate: StatusPendingUpdate,
		EventUpdated:        StatusAccepted,
		EventPendingCancel:  StatusPendingCancel,
		EventCanceled:       StatusCanceled,
		EventTriggered:      StatusTriggered,
		EventExpired:        StatusExpired,
	},
	StatusPendingUpdate: {
		EventUpdated:       StatusAccepted,
		EventPendingCancel: StatusPendingCancel,
		EventCanceled:      StatusCanceled,
		EventTriggered:     StatusTriggered,
		EventExpired:       StatusExpired,
	},
	StatusPendingCancel: {
		EventCanceled: StatusCanceled,
		EventExpired:  StatusExpired,
	},
	StatusTriggered: {
		EventPendingUpdate: StatusPendingUpdate,
		EventUpdated:        StatusTriggered,
		EventPendingCancel:  StatusPendingCancel,
		EventCanceled:       StatusCanceled,
		EventExpired:        StatusExpired,
	},
	StatusPartiallyFilled: {
		EventPendingUpdate: StatusPendingUpdate,
		EventUpdated:        StatusPartiallyFilled,
		EventPendingCancel:  StatusPendingCancel,
		EventCanceled:       StatusCanceled,
		EventExpired:        StatusExpired,
	},
}

// fillableFrom lists the statuses from which a Filled event is legal. Every
// non-terminal status except INITIALIZED can receive a fill; the table in
// spec.md §4.3 lists Filled as a legal transition from SUBMITTED, ACCEPTED,
// PENDING_UPDATE, PENDING_CANCEL, TRIGGERED, and PARTIALLY_FILLED.
func fillableFrom(s Status) bool {
	switch s {
	case StatusSubmitted, StatusAccepted, StatusPendingUpdate, StatusPendingCancel, StatusTriggered, StatusPartiallyFilled:
		return true
	default:
		return false
	}
}

// pendingRollbackFrom reports whether Accepted arriving in this status is a
// rollback rather than a flat transition.
func pendingRollbackFrom(s Status) bool {
	return s == StatusPendingUpdate || s == StatusPendingCancel
}
