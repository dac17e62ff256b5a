// Package engine owns the registries the rest of the core refers to only
// by id, per spec.md §9's cycle-avoidance design note: instruments,
// resting orders, open positions, per-instrument books, and per-instrument
// bar aggregators. Grounded on the teacher's internal/bus.Queue single-
// consumer run loop (internal/bus/queue.go) — the engine plays the same
// "one thread drives everything" role the teacher's queue runner played,
// generalized from a generic pub/sub event queue to typed routers for
// ticks, order events, and fills.
package engine

import (
	stderrors "errors"

	"main/internal/book"
	"main/internal/clock"
	"main/internal/errors"
	"main/internal/instrument"
	"main/internal/order"
	"main/internal/position"
	"main/internal/value"
)

// TradeBarAggregator is the subset of a bar aggregator's surface the
// engine needs to fan trade ticks out to. TickBarAggregator,
// VolumeBarAggregator, ValueBarAggregator, and TimeBarAggregator all
// satisfy it.
type TradeBarAggregator interface {
	HandleTrade(tick value.TradeTick) error
}

// QuoteBarAggregator is the additional surface TickBarAggregator and
// TimeBarAggregator satisfy; VolumeBarAggregator and ValueBarAggregator do
// not, since a quote tick carries no traded size.
type QuoteBarAggregator interface {
	HandleQuote(tick value.QuoteTick) error
}

// BookKind selects which order-book fidelity level to instantiate for an
// instrument.
type BookKind uint8

const (
	_bookKindBeg BookKind = iota
	BookL1
	BookL2
	BookL3
	_bookKindEnd
)

// IsAvailable reports whether the book kind is a known, non-sentinel
// value.
func (k BookKind) IsAvailable() bool { return k > _bookKindBeg && k < _bookKindEnd }

// Engine wires the Order, Position, book, and bar modules together for one
// trading session. Per spec.md §5, the engine is single-threaded-
// cooperative: every method here must be called from the one logical
// engine thread.
type Engine struct {
	clk clock.Clock

	instruments *instrument.Registry
	positions   *position.Registry
	orders      map[value.ClientOrderId]*order.Order
	books       map[value.InstrumentId]book.Book

	tradeFeeds map[value.InstrumentId][]TradeBarAggregator
	quoteFeeds map[value.InstrumentId][]QuoteBarAggregator

	onOrderEvent  func(*order.Order, order.Event)
	onPositionChange func(*position.Position)
}

// New creates an engine for one trading session under the given OMS type.
func New(clk clock.Clock, oms position.OmsType) *Engine {
	return &Engine{
		clk:         clk,
		instruments: instrument.NewRegistry(),
		positions:   position.NewRegistry(oms),
		orders:      make(map[value.ClientOrderId]*order.Order),
		books:       make(map[value.InstrumentId]book.Book),
		tradeFeeds:  make(map[value.InstrumentId][]TradeBarAggregator),
		quoteFeeds:  make(map[value.InstrumentId][]QuoteBarAggregator),
	}
}

// Clock returns the engine's clock, for callers that schedule their own
// timers (e.g. constructing a TimeBarAggregator against it).
func (e *Engine) Clock() clock.Clock { return e.clk }

// OnOrderEvent registers the subscriber callback invoked after every
// successfully applied order event, per spec.md §6's on_event(event)
// contract.
func (e *Engine) OnOrderEvent(fn func(*order.Order, order.Event)) { e.onOrderEvent = fn }

// OnPositionChange registers the subscriber callback invoked after every
// position open/apply.
func (e *Engine) OnPositionChange(fn func(*position.Position)) { e.onPositionChange = fn }

// RegisterInstrument adds an instrument to the engine's catalog. Per
// spec.md §6, instruments must be registered before any tick referencing
// them arrives.
func (e *Engine) RegisterInstrument(inst instrument.Instrument) error {
	return e.instruments.Add(inst)
}

// Instrument looks up a registered instrument.
func (e *Engine) Instrument(id value.InstrumentId) (instrument.Instrument, error) {
	return e.instruments.MustGet(id)
}

// Positions returns the engine's position registry.
func (e *Engine) Positions() *position.Registry { return e.positions }

// RegisterBook creates and attaches a book of the given fidelity for an
// instrument, replacing any existing book for it.
func (e *Engine) RegisterBook(instrumentId value.InstrumentId, kind BookKind) (book.Book, error) {
	var b book.Book
	switch kind {
	case BookL1:
		b = book.NewL1Book(instrumentId)
	case BookL2:
		b = book.NewL2Book(instrumentId)
	case BookL3:
		b = book.NewL3Book(instrumentId)
	default:
		return nil, ErrUnsupportedBookKind
	}
	e.books[instrumentId] = b
	return b, nil
}

// Book returns the registered book for an instrument, if any.
func (e *Engine) Book(instrumentId value.InstrumentId) (book.Book, bool) {
	b, ok := e.books[instrumentId]
	return b, ok
}

// ApplyBookDelta routes a delta to the instrument's registered book.
func (e *Engine) ApplyBookDelta(instrumentId value.InstrumentId, d book.Delta) error {
	b, ok := e.books[instrumentId]
	if !ok {
		return ErrBookNotFound
	}
	return b.ApplyDelta(d)
}

// ApplyBookSnapshot routes a snapshot to the instrument's registered book.
func (e *Engine) ApplyBookSnapshot(instrumentId value.InstrumentId, s book.Snapshot) error {
	b, ok := e.books[instrumentId]
	if !ok {
		return ErrBookNotFound
	}
	return b.ApplySnapshot(s)
}

// RegisterBarAggregator attaches a trade-driven bar aggregator to an
// instrument's tick feed; if it also accepts quote ticks, it is fanned out
// those too.
func (e *Engine) RegisterBarAggregator(instrumentId value.InstrumentId, agg TradeBarAggregator) {
	e.tradeFeeds[instrumentId] = append(e.tradeFeeds[instrumentId], agg)
	if qa, ok := agg.(QuoteBarAggregator); ok {
		e.quoteFeeds[instrumentId] = append(e.quoteFeeds[instrumentId], qa)
	}
}

// HandleQuoteTick routes a quote tick to the instrument's L1 book (if
// registered) and every quote-accepting bar aggregator registered for it.
func (e *Engine) HandleQuoteTick(tick value.QuoteTick) error {
	if _, err := e.instruments.MustGet(tick.InstrumentId); err != nil {
		return err
	}
	if b, ok := e.books[tick.InstrumentId]; ok {
		if l1, ok := b.(*book.L1Book); ok {
			l1.UpdateQuote(tick)
		}
	}
	var errs []error
	for _, agg := range e.quoteFeeds[tick.InstrumentId] {
		// Each aggregator accepts or drops independently on its own
		// ts_last; one aggregator's drop must not starve its siblings.
		if err := agg.HandleQuote(tick); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// HandleTradeTick routes a trade tick to the instrument's L1 book (if
// registered) and every bar aggregator registered for it.
func (e *Engine) HandleTradeTick(tick value.TradeTick) error {
	if _, err := e.instruments.MustGet(tick.InstrumentId); err != nil {
		return err
	}
	if b, ok := e.books[tick.InstrumentId]; ok {
		if l1, ok := b.(*book.L1Book); ok {
			l1.UpdateTrade(tick)
		}
	}
	var errs []error
	for _, agg := range e.tradeFeeds[tick.InstrumentId] {
		// Each aggregator accepts or drops independently on its own
		// ts_last; one aggregator's drop must not starve its siblings.
		if err := agg.HandleTrade(tick); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// InitOrder constructs a new order from an Initialized event and registers
// it under its ClientOrderId. It is an error to reuse a ClientOrderId
// still tracked by the engine.
func (e *Engine) InitOrder(init order.Initialized) (*order.Order, error) {
	if _, exists := e.orders[init.ClientOrderId]; exists {
		return nil, ErrDuplicateOrder
	}
	o, err := order.FromInit(init)
	if err != nil {
		return nil, errors.Wrap(err, "init order")
	}
	e.orders[init.ClientOrderId] = o
	if e.onOrderEvent != nil {
		e.onOrderEvent(o, init)
	}
	return o, nil
}

// Order looks up a tracked order by its ClientOrderId.
func (e *Engine) Order(id value.ClientOrderId) (*order.Order, bool) {
	o, ok := e.orders[id]
	return o, ok
}

// ApplyOrderEvent applies event to the order identified by id, notifies
// the order-event subscriber, folds any resulting fill into the order's
// position, and resolves contingency effects on its siblings.
func (e *Engine) ApplyOrderEvent(id value.ClientOrderId, event order.Event) error {
	o, ok := e.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	if err := o.Apply(event); err != nil {
		return errors.Wrap(err, "apply order event")
	}
	if e.onOrderEvent != nil {
		e.onOrderEvent(o, event)
	}
	if fill, ok := event.(order.Filled); ok {
		if err := e.applyFillToPosition(o, fill); err != nil {
			return errors.Wrap(err, "fold fill into position")
		}
	}
	e.resolveContingency(o, event)
	return nil
}

// applyFillToPosition folds a fill into the order's position, opening a
// new one in the registry if none exists yet for its
// (instrument, position) key, and removing it once it returns to FLAT.
func (e *Engine) applyFillToPosition(o *order.Order, fill order.Filled) error {
	inst, err := e.instruments.MustGet(o.InstrumentId)
	if err != nil {
		return err
	}

	positionId := fill.PositionId
	if positionId == "" && o.PositionId != nil {
		positionId = *o.PositionId
	}

	p, exists := e.positions.Get(o.InstrumentId, positionId)
	if !exists {
		p, err = position.Open(inst, fill)
		if err != nil {
			return err
		}
		if err := e.positions.Put(p); err != nil {
			return err
		}
	} else {
		if err := p.Apply(fill); err != nil {
			return err
		}
	}

	if e.onPositionChange != nil {
		e.onPositionChange(p)
	}
	if p.Side == position.Flat {
		e.positions.Remove(o.InstrumentId, positionId)
	}
	return nil
}
