package book

import (
	"main/internal/value"

	"github.com/yanun0323/errors"
)

// L2Book is the market-by-price variant: each price level aggregates the
// combined size of every resting order at that price, ordered bids
// descending and asks ascending. Top-of-book is the head of each slice.
type L2Book struct {
	InstrumentId value.InstrumentId

	bids []Level
	asks []Level

	lastUpdateId uint64
}

// NewL2Book creates an empty MBP book for an instrument.
func NewL2Book(instrumentId value.InstrumentId) *L2Book {
	return &L2Book{InstrumentId: instrumentId}
}

func (b *L2Book) levels(side Side) *[]Level {
	if side == Bid {
		return &b.bids
	}
	return &b.asks
}

// findLevel returns the index of the level at price, or -1.
func findLevel(levels []Level, price value.Price) int {
	for i := range levels {
		if levels[i].Price.Equal(price) {
			return i
		}
	}
	return -1
}

// insertLevel inserts a new level keeping bids descending, asks ascending.
func insertLevel(levels []Level, lvl Level, side Side) []Level {
	idx := len(levels)
	for i, existing := range levels {
		if side == Bid && lvl.Price.GreaterThan(existing.Price) {
			idx = i
			break
		}
		if side == Ask && lvl.Price.LessThan(existing.Price) {
			idx = i
			break
		}
	}
	levels = append(levels, Level{})
	copy(levels[idx+1:], levels[idx:])
	levels[idx] = lvl
	return levels
}

// ApplyDelta adds to, replaces, or removes size at a price level. Deltas
// with update_id <= the last applied are idempotently dropped, per
// spec.md §4.5.
func (b *L2Book) ApplyDelta(d Delta) error {
	if d.UpdateId != 0 && d.UpdateId <= b.lastUpdateId {
		return nil
	}
	if !d.Action.IsAvailable() || !d.Side.IsAvailable() {
		return errors.Wrap(ErrUnsupported, "invalid delta action or side")
	}

	levels := b.levels(d.Side)
	idx := findLevel(*levels, d.Price)

	switch d.Action {
	case Add:
		if idx < 0 {
			*levels = insertLevel(*levels, Level{Price: d.Price, Size: d.Size}, d.Side)
		} else {
			sum, err := (*levels)[idx].Size.Add(d.Size)
			if err != nil {
				return errors.Wrap(err, "aggregating level size")
			}
			(*levels)[idx].Size = sum
		}
	case Update:
		if idx < 0 {
			*levels = insertLevel(*levels, Level{Price: d.Price, Size: d.Size}, d.Side)
		} else if d.Size.IsZero() {
			*levels = append((*levels)[:idx], (*levels)[idx+1:]...)
		} else {
			(*levels)[idx].Size = d.Size
		}
	case Delete:
		if idx < 0 {
			return nil
		}
		remaining, err := (*levels)[idx].Size.Sub(d.Size)
		if err != nil || remaining.IsZero() {
			*levels = append((*levels)[:idx], (*levels)[idx+1:]...)
		} else {
			(*levels)[idx].Size = remaining
		}
	}

	if d.UpdateId != 0 {
		b.lastUpdateId = d.UpdateId
	}
	return nil
}

// ApplySnapshot replaces the book wholesale.
func (b *L2Book) ApplySnapshot(s Snapshot) error {
	b.bids = append([]Level(nil), s.Bids...)
	b.asks = append([]Level(nil), s.Asks...)
	b.lastUpdateId = s.UpdateId
	return nil
}

// BestBid returns the head of the bid side.
func (b *L2Book) BestBid() (value.Price, value.Quantity, error) {
	if len(b.bids) == 0 {
		return value.ZeroPrice, value.ZeroQuantity, ErrEmptyBook
	}
	return b.bids[0].Price, b.bids[0].Size, nil
}

// BestAsk returns the head of the ask side.
func (b *L2Book) BestAsk() (value.Price, value.Quantity, error) {
	if len(b.asks) == 0 {
		return value.ZeroPrice, value.ZeroQuantity, ErrEmptyBook
	}
	return b.asks[0].Price, b.asks[0].Size, nil
}

// Spread returns best_ask - best_bid.
func (b *L2Book) Spread() (value.Price, error) {
	bid, _, err := b.BestBid()
	if err != nil {
		return value.ZeroPrice, err
	}
	ask, _, err := b.BestAsk()
	if err != nil {
		return value.ZeroPrice, err
	}
	return ask.Sub(bid)
}

// CheckIntegrity verifies the book is not crossed and every level carries
// positive size.
func (b *L2Book) CheckIntegrity() error {
	for _, lvl := range b.bids {
		if lvl.Size.IsZero() {
			return errors.Wrap(ErrCrossedBook, "empty bid level retained")
		}
	}
	for _, lvl := range b.asks {
		if lvl.Size.IsZero() {
			return errors.Wrap(ErrCrossedBook, "empty ask level retained")
		}
	}
	if len(b.bids) == 0 || len(b.asks) == 0 {
		return nil
	}
	if !b.bids[0].Price.LessThan(b.asks[0].Price) {
		return ErrCrossedBook
	}
	return nil
}

// Bids returns the current bid levels, best first.
func (b *L2Book) Bids() []Level { return b.bids }

// Asks returns the current ask levels, best first.
func (b *L2Book) Asks() []Level { return b.asks }
