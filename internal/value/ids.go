package value

import "strings"

// TraderId identifies the trader a strategy is acting on behalf of.
type TraderId string

// StrategyId identifies the strategy instance that generated an order.
type StrategyId string

// ClientOrderId is the identifier the trading core assigns to an order at
// creation; it never changes over the order's lifetime.
type ClientOrderId string

// VenueOrderId is the identifier a venue assigns once it accepts an order.
// It is attached no earlier than the Accepted event.
type VenueOrderId string

// PositionId identifies a position aggregate.
type PositionId string

// ExecutionId identifies a single fill. Unique within the order and
// position that recorded it.
type ExecutionId string

// OrderListId groups sibling orders submitted as a batch (OCO/OTO/OUO).
type OrderListId string

// InstrumentId identifies a tradable instrument as "{symbol}.{venue}", per
// the external interfaces identifier format.
type InstrumentId struct {
	Symbol string
	Venue  string
}

// NewInstrumentId constructs an InstrumentId from its parts.
func NewInstrumentId(symbol, venue string) InstrumentId {
	return InstrumentId{Symbol: symbol, Venue: venue}
}

// ParseInstrumentId parses the "{symbol}.{venue}" form.
func ParseInstrumentId(s string) (InstrumentId, error) {
	idx := strings.LastIndexByte(s, '.')
	if idx <= 0 || idx == len(s)-1 {
		return InstrumentId{}, ErrInvalidInstrument
	}
	return InstrumentId{Symbol: s[:idx], Venue: s[idx+1:]}, nil
}

// String renders the "{symbol}.{venue}" form.
func (id InstrumentId) String() string {
	return id.Symbol + "." + id.Venue
}

// IsZero reports whether id is the zero InstrumentId.
func (id InstrumentId) IsZero() bool {
	return id.Symbol == "" && id.Venue == ""
}
