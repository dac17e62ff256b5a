package book

import (
	"main/internal/value"

	"github.com/yanun0323/logs"
)

// L1Book is the top-of-book variant: exactly one bid level and one ask
// level, driven by quote and trade ticks rather than deltas. Add is
// unsupported; `ApplyDelta` always fails with ErrUnsupported, per
// spec.md §4.5.
type L1Book struct {
	InstrumentId value.InstrumentId

	bidPrice value.Price
	bidSize  value.Quantity
	askPrice value.Price
	askSize  value.Quantity
	hasBid   bool
	hasAsk   bool

	lastUpdateId uint64
}

// NewL1Book creates an empty TBBO book for an instrument.
func NewL1Book(instrumentId value.InstrumentId) *L1Book {
	return &L1Book{InstrumentId: instrumentId}
}

// UpdateQuote sets both sides directly from a QuoteTick.
func (b *L1Book) UpdateQuote(tick value.QuoteTick) {
	b.bidPrice, b.bidSize = tick.BidPrice, tick.BidSize
	b.askPrice, b.askSize = tick.AskPrice, tick.AskSize
	b.hasBid, b.hasAsk = true, true
}

// UpdateTrade updates one side by the trade's aggressor: a SELL aggressor
// updates the bid to the trade price/size (the trade lifted the bid); a
// BUY aggressor updates the ask. If the book ends up crossed, the
// untouched side is forced to match the touched side's price — the trade
// is treated as having consumed the opposing quote.
func (b *L1Book) UpdateTrade(tick value.TradeTick) {
	switch tick.AggressorSide {
	case value.AggressorSell:
		b.bidPrice, b.bidSize = tick.Price, tick.Size
		b.hasBid = true
	case value.AggressorBuy:
		b.askPrice, b.askSize = tick.Price, tick.Size
		b.hasAsk = true
	default:
		return
	}

	if !b.hasBid || !b.hasAsk {
		return
	}
	if b.bidPrice.LessThan(b.askPrice) {
		return
	}

	logs.Infof("l1 book %s crossed (bid=%s ask=%s), resolving against aggressor %s",
		b.InstrumentId, b.bidPrice, b.askPrice, tick.AggressorSide)
	switch tick.AggressorSide {
	case value.AggressorSell:
		b.askPrice, b.askSize = b.bidPrice, b.bidSize
	case value.AggressorBuy:
		b.bidPrice, b.bidSize = b.askPrice, b.askSize
	}
}

// BestBid returns the current bid, or ErrEmptyBook before any update.
func (b *L1Book) BestBid() (value.Price, value.Quantity, error) {
	if !b.hasBid {
		return value.ZeroPrice, value.ZeroQuantity, ErrEmptyBook
	}
	return b.bidPrice, b.bidSize, nil
}

// BestAsk returns the current ask, or ErrEmptyBook before any update.
func (b *L1Book) BestAsk() (value.Price, value.Quantity, error) {
	if !b.hasAsk {
		return value.ZeroPrice, value.ZeroQuantity, ErrEmptyBook
	}
	return b.askPrice, b.askSize, nil
}

// Spread returns ask - bid.
func (b *L1Book) Spread() (value.Price, error) {
	if !b.hasBid || !b.hasAsk {
		return value.ZeroPrice, ErrEmptyBook
	}
	return b.askPrice.Sub(b.bidPrice)
}

// ApplyDelta always fails: L1 books are driven by ticks, not deltas.
func (b *L1Book) ApplyDelta(d Delta) error {
	return ErrUnsupported
}

// ApplySnapshot seeds both sides from a snapshot's best level on each
// side, ignoring update_id ordering the way update_tick does (snapshots
// are a resync point, not a sequenced delta).
func (b *L1Book) ApplySnapshot(s Snapshot) error {
	if len(s.Bids) > 0 {
		b.bidPrice, b.bidSize = s.Bids[0].Price, s.Bids[0].Size
		b.hasBid = true
	}
	if len(s.Asks) > 0 {
		b.askPrice, b.askSize = s.Asks[0].Price, s.Asks[0].Size
		b.hasAsk = true
	}
	b.lastUpdateId = s.UpdateId
	return nil
}

// CheckIntegrity verifies the book is not crossed.
func (b *L1Book) CheckIntegrity() error {
	if b.hasBid && b.hasAsk && !b.bidPrice.LessThan(b.askPrice) {
		return ErrCrossedBook
	}
	return nil
}
