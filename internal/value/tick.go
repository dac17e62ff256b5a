package value

// AggressorSide identifies which side crossed the spread in a trade, per
// the glossary. Kept distinct from any order-side enum further up the
// stack: a trade's aggressor and an order's side answer different
// questions even though both are binary.
type AggressorSide uint8

const (
	_aggressorBeg AggressorSide = iota
	AggressorBuy
	AggressorSell
	_aggressorEnd
)

// IsAvailable reports whether the aggressor side is a known, non-sentinel
// value.
func (a AggressorSide) IsAvailable() bool { return a > _aggressorBeg && a < _aggressorEnd }

func (a AggressorSide) String() string {
	switch a {
	case AggressorBuy:
		return "BUY"
	case AggressorSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// QuoteTick carries a top-of-book bid/ask update.
type QuoteTick struct {
	InstrumentId InstrumentId
	BidPrice     Price
	AskPrice     Price
	BidSize      Quantity
	AskSize      Quantity
	TsEvent      int64
	TsInit       int64
}

// TradeTick carries a single executed trade.
type TradeTick struct {
	InstrumentId  InstrumentId
	Price         Price
	Size          Quantity
	AggressorSide AggressorSide
	TsEvent       int64
	TsInit        int64
}
