package book

import (
	"main/internal/value"

	"github.com/yanun0323/errors"
)

// L3Book is the market-by-order variant: every resting order is tracked
// individually, FIFO within its price level, per spec.md §4.5. Level.Size
// is always the sum of its Orders' sizes.
type L3Book struct {
	InstrumentId value.InstrumentId

	bids []Level
	asks []Level

	byId map[string]orderLocation

	lastUpdateId uint64
}

type orderLocation struct {
	side  Side
	price value.Price
}

// NewL3Book creates an empty MBO book for an instrument.
func NewL3Book(instrumentId value.InstrumentId) *L3Book {
	return &L3Book{InstrumentId: instrumentId, byId: make(map[string]orderLocation)}
}

func (b *L3Book) levels(side Side) *[]Level {
	if side == Bid {
		return &b.bids
	}
	return &b.asks
}

// ApplyDelta adds, modifies, or cancels a single resting order, identified
// by OrderId. Deltas with update_id <= the last applied are dropped.
func (b *L3Book) ApplyDelta(d Delta) error {
	if d.UpdateId != 0 && d.UpdateId <= b.lastUpdateId {
		return nil
	}
	if !d.Action.IsAvailable() || !d.Side.IsAvailable() {
		return errors.Wrap(ErrUnsupported, "invalid delta action or side")
	}

	switch d.Action {
	case Add:
		if err := b.addOrder(d); err != nil {
			return err
		}
	case Update:
		if err := b.modifyOrder(d); err != nil {
			return err
		}
	case Delete:
		if err := b.cancelOrder(d); err != nil {
			return err
		}
	}

	if d.UpdateId != 0 {
		b.lastUpdateId = d.UpdateId
	}
	return nil
}

func (b *L3Book) addOrder(d Delta) error {
	if _, exists := b.byId[d.OrderId]; exists {
		return errors.Wrap(ErrUnsupported, "order id already resting")
	}

	levels := b.levels(d.Side)
	idx := findLevel(*levels, d.Price)
	ord := Order{Id: d.OrderId, Side: d.Side, Price: d.Price, Size: d.Size}
	if idx < 0 {
		*levels = insertLevel(*levels, Level{Price: d.Price, Size: d.Size, Orders: []Order{ord}}, d.Side)
	} else {
		sum, err := (*levels)[idx].Size.Add(d.Size)
		if err != nil {
			return errors.Wrap(err, "aggregating level size")
		}
		(*levels)[idx].Size = sum
		(*levels)[idx].Orders = append((*levels)[idx].Orders, ord) // FIFO: new orders join the back
	}
	b.byId[d.OrderId] = orderLocation{side: d.Side, price: d.Price}
	return nil
}

// modifyOrder changes a resting order's size in place, preserving its FIFO
// position — a size decrease keeps queue priority; spec.md treats any size
// increase as losing priority, so it is re-queued at the back.
func (b *L3Book) modifyOrder(d Delta) error {
	loc, ok := b.byId[d.OrderId]
	if !ok {
		return ErrOrderNotFound
	}
	levels := b.levels(loc.side)
	lvlIdx := findLevel(*levels, loc.price)
	if lvlIdx < 0 {
		return ErrOrderNotFound
	}
	orders := (*levels)[lvlIdx].Orders
	ordIdx := -1
	for i, o := range orders {
		if o.Id == d.OrderId {
			ordIdx = i
			break
		}
	}
	if ordIdx < 0 {
		return ErrOrderNotFound
	}

	old := orders[ordIdx].Size
	losesPriority := d.Size.GreaterThan(old)

	newLevelSize, err := (*levels)[lvlIdx].Size.Sub(old)
	if err != nil {
		return errors.Wrap(err, "removing stale order size")
	}
	newLevelSize, err = newLevelSize.Add(d.Size)
	if err != nil {
		return errors.Wrap(err, "applying modified order size")
	}
	(*levels)[lvlIdx].Size = newLevelSize

	if losesPriority {
		orders = append(orders[:ordIdx], orders[ordIdx+1:]...)
		orders = append(orders, Order{Id: d.OrderId, Side: loc.side, Price: loc.price, Size: d.Size})
	} else {
		orders[ordIdx].Size = d.Size
	}
	(*levels)[lvlIdx].Orders = orders
	return nil
}

func (b *L3Book) cancelOrder(d Delta) error {
	loc, ok := b.byId[d.OrderId]
	if !ok {
		return ErrOrderNotFound
	}
	levels := b.levels(loc.side)
	lvlIdx := findLevel(*levels, loc.price)
	if lvlIdx < 0 {
		return ErrOrderNotFound
	}
	orders := (*levels)[lvlIdx].Orders
	ordIdx := -1
	for i, o := range orders {
		if o.Id == d.OrderId {
			ordIdx = i
			break
		}
	}
	if ordIdx < 0 {
		return ErrOrderNotFound
	}

	remaining, err := (*levels)[lvlIdx].Size.Sub(orders[ordIdx].Size)
	orders = append(orders[:ordIdx], orders[ordIdx+1:]...)
	delete(b.byId, d.OrderId)

	if err != nil || len(orders) == 0 {
		*levels = append((*levels)[:lvlIdx], (*levels)[lvlIdx+1:]...)
	} else {
		(*levels)[lvlIdx].Size = remaining
		(*levels)[lvlIdx].Orders = orders
	}
	return nil
}

// ApplySnapshot replaces the book wholesale and rebuilds the order index.
func (b *L3Book) ApplySnapshot(s Snapshot) error {
	b.bids = append([]Level(nil), s.Bids...)
	b.asks = append([]Level(nil), s.Asks...)
	b.byId = make(map[string]orderLocation)
	for _, lvl := range b.bids {
		for _, o := range lvl.Orders {
			b.byId[o.Id] = orderLocation{side: Bid, price: lvl.Price}
		}
	}
	for _, lvl := range b.asks {
		for _, o := range lvl.Orders {
			b.byId[o.Id] = orderLocation{side: Ask, price: lvl.Price}
		}
	}
	b.lastUpdateId = s.UpdateId
	return nil
}

// BestBid returns the head of the bid side.
func (b *L3Book) BestBid() (value.Price, value.Quantity, error) {
	if len(b.bids) == 0 {
		return value.ZeroPrice, value.ZeroQuantity, ErrEmptyBook
	}
	return b.bids[0].Price, b.bids[0].Size, nil
}

// BestAsk returns the head of the ask side.
func (b *L3Book) BestAsk() (value.Price, value.Quantity, error) {
	if len(b.asks) == 0 {
		return value.ZeroPrice, value.ZeroQuantity, ErrEmptyBook
	}
	return b.asks[0].Price, b.asks[0].Size, nil
}

// Spread returns best_ask - best_bid.
func (b *L3Book) Spread() (value.Price, error) {
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

// CheckIntegrity verifies the book is not crossed and every level's size
// equals the sum of its resting orders.
func (b *L3Book) CheckIntegrity() error {
	for _, lvl := range append(append([]Level{}, b.bids...), b.asks...) {
		sum := value.ZeroQuantity
		for _, o := range lvl.Orders {
			next, err := sum.Add(o.Size)
			if err != nil {
				return errors.Wrap(err, "summing resting order sizes")
			}
			sum = next
		}
		if !sum.Equal(lvl.Size) {
			return errors.Wrap(ErrCrossedBook, "level size disagrees with resting orders")
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
func (b *L3Book) Bids() []Level { return b.bids }

// Asks returns the current ask levels, best first.
func (b *L3Book) Asks() []Level { return b.asks }
