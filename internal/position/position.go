// Package position implements the Position aggregate: a fold of an order's
// Filled events into signed net quantity, weighted-average open/close
// prices, and realized/unrealized PnL. Grounded on the teacher's
// internal/state/position.go (PositionReducer.ApplyFill, a signed
// net-quantity accumulator keyed by symbol) and internal/state/snapshot.go
// (Snapshot / SnapshotWithMeta), generalized from the teacher's
// single-currency net-quantity reducer to the full accounting the spec
// calls for: avg_px_open/avg_px_close, realized points/return/pnl,
// per-currency commissions, and inverse-instrument PnL.
package position

import (
	"main/internal/instrument"
	"main/internal/order"
	"main/internal/value"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Side describes which direction a position is presently held in.
type Side uint8

const (
	_sideBeg Side = iota
	Long
	Short
	Flat
	_sideEnd
)

// IsAvailable reports whether the side is a known, non-sentinel value.
func (s Side) IsAvailable() bool { return s > _sideBeg && s < _sideEnd }

func (s Side) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	case Flat:
		return "FLAT"
	default:
		return "UNKNOWN"
	}
}

// sideFromNetQty maps the sign of net_qty to a Side, per spec.md §8
// invariant 3: net_qty > 0 => LONG, < 0 => SHORT, = 0 => FLAT.
func sideFromNetQty(netQty value.Decimal) Side {
	switch value.DecimalSign(netQty) {
	case 1:
		return Long
	case -1:
		return Short
	default:
		return Flat
	}
}

// Position folds fills for a single (instrument_id, position_id) into a
// signed net position with realized/unrealized PnL accounting.
type Position struct {
	InstrumentId value.InstrumentId
	PositionId   value.PositionId
	Instrument   instrument.Instrument

	Side   Side
	NetQty value.Decimal  // signed, in size units
	Qty    value.Quantity // |NetQty| at the instrument's size precision

	PeakQty value.Quantity
	Entry   order.Side // the side of the fill that opened this position

	AvgPxOpen  value.Price
	AvgPxClose value.Price

	RealizedPoints value.Price
	RealizedReturn float64
	RealizedPnl    value.Money
	Commissions    map[value.Currency]value.Money

	ExecutionIds []value.ExecutionId

	TsOpened   int64
	TsLast     int64
	TsClosed   int64
	DurationNs int64

	// openedQty/closedQty track the opening/closing quantity of the
	// *current leg* only; they reset to zero whenever a fill flips the
	// position, so avg_px_open/avg_px_close are weighted means over the
	// live leg rather than the position's entire lifetime.
	openedQty value.Decimal
	closedQty value.Decimal
}

// Open seeds a new Position from the fill that establishes it.
func Open(inst instrument.Instrument, fill order.Filled) (*Position, error) {
	if fill.Header.InstrumentId != inst.ID {
		return nil, errors.Wrap(ErrInstrumentMismatch, "opening fill instrument does not match")
	}

	p := &Position{
		InstrumentId: inst.ID,
		PositionId:   fill.PositionId,
		Instrument:   inst,
		Entry:        fill.Side,
		Commissions:  make(map[value.Currency]value.Money),
		RealizedPnl:  value.Money{Currency: inst.CostCurrency()},
		TsOpened:     fill.Header.TsEvent,
	}

	delta := signedQty(fill.Side, fill.LastQty)
	p.NetQty = delta
	p.openedQty = value.DecimalAbs(delta)
	p.AvgPxOpen = fill.LastPx
	p.Side = sideFromNetQty(p.NetQty)

	qty, err := value.NewQuantityFromDecimal(p.NetQty, inst.SizePrecision)
	if err != nil {
		return nil, errors.Wrap(err, "deriving opening quantity")
	}
	p.Qty = qty
	p.PeakQty = qty
	p.TsLast = fill.Header.TsEvent
	p.ExecutionIds = append(p.ExecutionIds, fill.ExecutionId)
	p.applyCommission(fill.Commission)
	return p, nil
}

// signedQty returns qty signed by side: positive for BUY, negative for
// SELL, matching the convention that a BUY fill always increases net_qty.
func signedQty(side order.Side, qty value.Quantity) value.Decimal {
	d := qty.ToDecimal()
	if side == order.SideSell {
		return d.Neg()
	}
	return d
}

// Apply folds a single fill into the position: rejects a duplicate
// execution_id, splits the fill into its closing and opening portions
// (a fill may do both at once, on a flip), realizes PnL on the closing
// portion, and recomputes every denormalized field.
func (p *Position) Apply(fill order.Filled) error {
	if p.Side == Flat {
		return errors.Wrap(ErrClosed, "position is already flat")
	}
	if fill.Header.InstrumentId != p.InstrumentId {
		return errors.Wrap(ErrInstrumentMismatch, "fill instrument does not match position")
	}
	for _, id := range p.ExecutionIds {
		if id == fill.ExecutionId {
			return ErrDuplicateExecution
		}
	}

	delta := signedQty(fill.Side, fill.LastQty)
	openAbs := value.DecimalAbs(p.NetQty)
	deltaAbs := value.DecimalAbs(delta)

	sameDirection := value.DecimalSign(p.NetQty) == 0 || value.DecimalSign(p.NetQty) == value.DecimalSign(delta)

	var closingQty, openingQty value.Decimal
	switch {
	case sameDirection:
		openingQty = deltaAbs
	case deltaAbs.Cmp(openAbs) <= 0:
		closingQty = deltaAbs
	default:
		closingQty = openAbs
		openingQty = deltaAbs.Sub(openAbs)
	}

	closingSide := p.Side // the leg being closed is the position's side before this fill
	flips := value.DecimalSign(closingQty) > 0 && closingQty.Cmp(openAbs) == 0 && value.DecimalSign(openingQty) > 0

	if value.DecimalSign(closingQty) > 0 {
		p.realizeClose(closingSide, fill.LastPx, closingQty)
	}
	if flips {
		// The prior leg fully closed; the new leg starts a fresh basis.
		p.openedQty = value.ZeroDecimal
		p.closedQty = value.ZeroDecimal
		p.Entry = fill.Side
	}
	if value.DecimalSign(openingQty) > 0 {
		p.openLeg(fill.LastPx, openingQty)
	}

	p.NetQty = p.NetQty.Add(delta)
	p.Side = sideFromNetQty(p.NetQty)
	qty, err := value.NewQuantityFromDecimal(p.NetQty, p.Instrument.SizePrecision)
	if err != nil {
		return errors.Wrap(err, "deriving quantity after fill")
	}
	p.Qty = qty
	if qty.GreaterThan(p.PeakQty) {
		p.PeakQty = qty
	}

	p.TsLast = fill.Header.TsEvent
	p.ExecutionIds = append(p.ExecutionIds, fill.ExecutionId)
	p.applyCommission(fill.Commission)

	if p.Side == Flat {
		p.TsClosed = fill.Header.TsEvent
		p.DurationNs = p.TsClosed - p.TsOpened
		logs.Infof("position %s closed: realized_pnl=%s", p.PositionId, p.RealizedPnl.String())
	}
	return nil
}

// openLeg recomputes avg_px_open as the weighted mean over all opening
// quantity in the current leg.
func (p *Position) openLeg(px value.Price, qty value.Decimal) {
	prevQty := p.openedQty
	newQty := prevQty.Add(qty)
	prevNotional := p.AvgPxOpen.ToDecimal().Mul(prevQty)
	newNotional := px.ToDecimal().Mul(qty)
	avg, err := value.NewPriceFromDecimal(prevNotional.Add(newNotional).Div(newQty), p.Instrument.PricePrecision)
	if err == nil {
		p.AvgPxOpen = avg
	}
	p.openedQty = newQty
}

// realizeClose recomputes avg_px_close as the weighted mean over all closed
// quantity in the current leg, then realizes PnL on the closing portion at
// the (pre-fill) avg_px_open basis.
func (p *Position) realizeClose(closingSide Side, px value.Price, qty value.Decimal) {
	prevQty := p.closedQty
	newQty := prevQty.Add(qty)
	prevNotional := p.AvgPxClose.ToDecimal().Mul(prevQty)
	newNotional := px.ToDecimal().Mul(qty)
	avg, err := value.NewPriceFromDecimal(prevNotional.Add(newNotional).Div(newQty), p.Instrument.PricePrecision)
	if err == nil {
		p.AvgPxClose = avg
	}
	p.closedQty = newQty

	closeQty, err := value.NewQuantityFromDecimal(qty, p.Instrument.SizePrecision)
	if err != nil {
		return
	}
	points := calculatePoints(p.AvgPxOpen, px, closingSide)
	p.RealizedPoints = points
	if !p.AvgPxOpen.IsZero() {
		p.RealizedReturn = points.Float64() / p.AvgPxOpen.Float64()
	}

	pnl := calculatePnl(p.Instrument, p.AvgPxOpen, px, closeQty, closingSide)
	if realized, err := p.RealizedPnl.Add(pnl); err == nil {
		p.RealizedPnl = realized
	}
}

// applyCommission records a commission per its own currency, and — per
// spec.md §4.4 — subtracts it from realized_pnl only when it shares the
// instrument's cost currency.
func (p *Position) applyCommission(commission value.Money) {
	if commission.Currency.IsZero() {
		return
	}
	if existing, ok := p.Commissions[commission.Currency]; ok {
		if sum, err := existing.Add(commission); err == nil {
			p.Commissions[commission.Currency] = sum
		}
	} else {
		p.Commissions[commission.Currency] = commission
	}

	if commission.Currency == p.Instrument.CostCurrency() {
		if net, err := p.RealizedPnl.Sub(commission); err == nil {
			p.RealizedPnl = net
		}
	}
}

// UnrealizedPnl values the open quantity at last, using the position's
// current direction.
func (p *Position) UnrealizedPnl(last value.Price) value.Money {
	if p.Side == Flat {
		return value.Money{Currency: p.Instrument.CostCurrency()}
	}
	return calculatePnl(p.Instrument, p.AvgPxOpen, last, p.Qty, p.Side)
}

// TotalPnl returns realized_pnl + unrealized_pnl(last).
func (p *Position) TotalPnl(last value.Price) value.Money {
	unrealized := p.UnrealizedPnl(last)
	total, err := p.RealizedPnl.Add(unrealized)
	if err != nil {
		return unrealized
	}
	return total
}

// NotionalValue returns qty * multiplier * last (or qty * multiplier / last
// for inverse instruments, in base currency).
func (p *Position) NotionalValue(last value.Price) value.Decimal {
	notional := p.Qty.ToDecimal().Mul(p.Instrument.Multiplier)
	if p.Instrument.IsInverse {
		if last.IsZero() {
			return value.ZeroDecimal
		}
		return notional.Div(last.ToDecimal())
	}
	return notional.Mul(last.ToDecimal())
}

// calculatePoints returns the raw price difference, signed by the closing
// leg's side: close-minus-open for a LONG leg, open-minus-close for SHORT.
func calculatePoints(openPx, closePx value.Price, side Side) value.Price {
	var diff value.Price
	var err error
	if side == Long {
		diff, err = closePx.Sub(openPx)
	} else {
		diff, err = openPx.Sub(closePx)
	}
	if err != nil {
		return value.ZeroPrice
	}
	return diff
}

// calculatePnl implements spec.md §4.4's PnL formulas for both inverse and
// non-inverse instruments.
func calculatePnl(inst instrument.Instrument, openPx, closePx value.Price, qty value.Quantity, side Side) value.Money {
	ccy := inst.CostCurrency()
	if inst.IsInverse {
		if openPx.IsZero() || closePx.IsZero() {
			return value.Money{Currency: ccy}
		}
		invOpen := value.OneDecimal.Div(openPx.ToDecimal())
		invClose := value.OneDecimal.Div(closePx.ToDecimal())
		var diff value.Decimal
		if side == Long {
			diff = invOpen.Sub(invClose)
		} else {
			diff = invClose.Sub(invOpen)
		}
		amount := qty.ToDecimal().Mul(inst.Multiplier).Mul(diff)
		return value.Money{Amount: amount, Currency: ccy}
	}

	points := calculatePoints(openPx, closePx, side)
	amount := qty.ToDecimal().Mul(inst.Multiplier).Mul(points.ToDecimal())
	return value.Money{Amount: amount, Currency: ccy}
}
