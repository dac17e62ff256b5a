package order

import "main/internal/value"

// EventKind tags the concrete type of an OrderEvent.
type EventKind uint8

const (
	_eventKindBeg EventKind = iota
	EventInitialized
	EventDenied
	EventSubmitted
	EventAccepted
	EventRejected
	EventPendingUpdate
	EventPendingCancel
	EventUpdated
	EventTriggered
	EventCanceled
	EventExpired
	EventFilled
	_eventKindEnd
)

// IsAvailable reports whether the event kind is a known, non-sentinel
// value.
func (k EventKind) IsAvailable() bool { return k > _eventKindBeg && k < _eventKindEnd }

// Header carries the fields every OrderEvent shares: an identity, a pair of
// timestamps, and a reference to the order it affects.
type Header struct {
	EventId       value.EventId
	ClientOrderId value.ClientOrderId
	InstrumentId  value.InstrumentId
	TsEvent       int64
	TsInit        int64
}

// Event is the OrderEvent sum type. Modeled as a tagged sum (Design Note in
// spec.md §9: "avoid class hierarchies") — a shared interface surface plus
// one concrete struct per event kind, rather than a type hierarchy.
type Event interface {
	Kind() EventKind
	Head() Header
}

// Initialized is the event that constructs an order in INITIALIZED.
type Initialized struct {
	Header
	TraderId      value.TraderId
	StrategyId    value.StrategyId
	Side          Side
	Type          Type
	Quantity      value.Quantity
	Price         value.Price // zero if the order type has no limit price
	TriggerPrice  value.Price // zero if the order type has no trigger
	TimeInForce   TimeInForce
	ExpireTimeNs  int64 // required iff TimeInForce == GTD
	IsReduceOnly  bool
	DisplayQty    value.Quantity // zero if not an iceberg order
	PositionId    value.PositionId
	OrderListId   value.OrderListId
	ParentOrderId value.ClientOrderId
	Contingency   ContingencyType
	ContingencyIds []value.ClientOrderId
	Tags          map[string]string
}

func (e Initialized) Kind() EventKind { return EventInitialized }
func (e Initialized) Head() Header    { return e.Header }

// Denied records that the order was denied pre-submission (terminal, never
// reaches the venue).
type Denied struct {
	Header
	Reason string
}

func (e Denied) Kind() EventKind { return EventDenied }
func (e Denied) Head() Header    { return e.Header }

// Submitted records that the order was sent to the venue.
type Submitted struct {
	Header
}

func (e Submitted) Kind() EventKind { return EventSubmitted }
func (e Submitted) Head() Header    { return e.Header }

// Accepted records venue acceptance, optionally attaching the venue-
// assigned VenueOrderId for the first time.
type Accepted struct {
	Header
	VenueOrderId value.VenueOrderId
}

func (e Accepted) Kind() EventKind { return EventAccepted }
func (e Accepted) Head() Header    { return e.Header }

// Rejected records venue rejection (terminal).
type Rejected struct {
	Header
	Reason string
}

func (e Rejected) Kind() EventKind { return EventRejected }
func (e Rejected) Head() Header    { return e.Header }

// PendingUpdate records that an amendment request was sent to the venue.
type PendingUpdate struct {
	Header
}

func (e PendingUpdate) Kind() EventKind { return EventPendingUpdate }
func (e PendingUpdate) Head() Header    { return e.Header }

// PendingCancel records that a cancel request was sent to the venue.
type PendingCancel struct {
	Header
}

func (e PendingCancel) Kind() EventKind { return EventPendingCancel }
func (e PendingCancel) Head() Header    { return e.Header }

// Updated records a venue-confirmed amendment. For StopLimit orders, which
// field it rewrites depends on whether the order has triggered yet: pre-
// trigger it rewrites TriggerPrice, post-trigger it rewrites Price (Open
// Question in spec.md §9, resolved in DESIGN.md).
type Updated struct {
	Header
	Quantity     value.Quantity // zero if unchanged
	Price        value.Price    // zero if unchanged
	TriggerPrice value.Price    // zero if unchanged
	VenueOrderId value.VenueOrderId
}

func (e Updated) Kind() EventKind { return EventUpdated }
func (e Updated) Head() Header    { return e.Header }

// Triggered records that a stop order's trigger condition fired.
type Triggered struct {
	Header
}

func (e Triggered) Kind() EventKind { return EventTriggered }
func (e Triggered) Head() Header    { return e.Header }

// Canceled records venue-confirmed cancellation (terminal).
type Canceled struct {
	Header
}

func (e Canceled) Kind() EventKind { return EventCanceled }
func (e Canceled) Head() Header    { return e.Header }

// Expired records that a GTD order's expire_time was reached (terminal).
type Expired struct {
	Header
}

func (e Expired) Kind() EventKind { return EventExpired }
func (e Expired) Head() Header    { return e.Header }

// Filled records a single fill. ExecutionId must be unique within the
// order.
type Filled struct {
	Header
	VenueOrderId value.VenueOrderId
	ExecutionId  value.ExecutionId
	PositionId   value.PositionId
	Side         Side
	LastQty      value.Quantity
	LastPx       value.Price
	Commission   value.Money
	Liquidity    string // "MAKER" or "TAKER", informational
}

func (e Filled) Kind() EventKind { return EventFilled }
func (e Filled) Head() Header    { return e.Header }
