// Package bar implements the four bar aggregators of spec.md §4.6: tick,
// volume, value, and time bars, all built on a shared BarBuilder that
// accumulates OHLCV. Grounded on the teacher's running-accumulator shape
// (internal/obs.LatencyStats, which folds samples into count/sum/min/max
// without buffering them) and internal/clock's Timer contract for the
// time-driven variant. Like the rest of the core, builders are not
// synchronized: the engine thread is the only caller.
package bar

import (
	"main/internal/value"

	"github.com/yanun0323/logs"
)

// Bar is a completed OHLCV interval.
type Bar struct {
	Open    value.Price
	High    value.Price
	Low     value.Price
	Close   value.Price
	Volume  value.Quantity
	Count   int
	TsEvent int64
	TsInit  int64
}

// Handler receives each bar a aggregator closes.
type Handler func(Bar)

// BarBuilder accumulates OHLCV within the current, not-yet-closed bar.
type BarBuilder struct {
	open  value.Price
	high  value.Price
	low   value.Price
	close value.Price

	volume value.Quantity
	count  int

	hasData     bool
	partialSeen bool

	tsLast int64
}

// NewBarBuilder creates an empty builder.
func NewBarBuilder() *BarBuilder {
	return &BarBuilder{}
}

// Update folds a (price, size, ts_event) sample into the current bar.
// Updates with ts_event < the last observed ts_event are rejected and
// dropped, per spec.md §4.6's monotonic-time contract.
func (b *BarBuilder) Update(price value.Price, size value.Quantity, tsEvent int64) error {
	if b.hasData && tsEvent < b.tsLast {
		logs.Errorf("bar update dropped: ts_event %d is behind last observed %d", tsEvent, b.tsLast)
		return ErrOutOfOrder
	}

	if !b.hasData {
		b.open, b.high, b.low, b.close = price, price, price, price
		b.hasData = true
	} else {
		if price.GreaterThan(b.high) {
			b.high = price
		}
		if price.LessThan(b.low) {
			b.low = price
		}
		b.close = price
	}

	sum, err := b.volume.Add(size)
	if err != nil {
		return err
	}
	b.volume = sum
	b.count++
	b.tsLast = tsEvent
	return nil
}

// Bar materializes the builder's current state as a closed Bar.
func (b *BarBuilder) Bar(tsEvent, tsInit int64) Bar {
	return Bar{
		Open:    b.open,
		High:    b.high,
		Low:     b.low,
		Close:   b.close,
		Volume:  b.volume,
		Count:   b.count,
		TsEvent: tsEvent,
		TsInit:  tsInit,
	}
}

// HasData reports whether the builder has observed at least one update (or
// a seeded partial). Reset does not clear it: once set, it stays true.
func (b *BarBuilder) HasData() bool { return b.hasData }

// Count returns the number of updates folded into the current bar.
func (b *BarBuilder) Count() int { return b.count }

// Volume returns the current bar's accumulated size.
func (b *BarBuilder) Volume() value.Quantity { return b.volume }

// Close returns the current bar's running close price.
func (b *BarBuilder) Close() value.Price { return b.close }

// TsLast returns the ts_event of the most recent accepted update.
func (b *BarBuilder) TsLast() int64 { return b.tsLast }

// Reset rolls open/high/low to the prior close (carry-forward, so a gap in
// activity still produces a gapless price series) and zeroes volume and
// count. Intended to run immediately after a bar closes.
func (b *BarBuilder) Reset() {
	b.open, b.high, b.low = b.close, b.close, b.close
	b.volume = value.ZeroQuantity
	b.count = 0
}

// SetPartial seeds the builder's initial OHLCV from a previously-observed
// partial bar, e.g. on catalog replay. A no-op after the first call or
// after any Update.
func (b *BarBuilder) SetPartial(partial Bar) {
	if b.partialSeen || b.hasData {
		return
	}
	b.partialSeen = true
	b.open, b.high, b.low, b.close = partial.Open, partial.High, partial.Low, partial.Close
	b.volume = partial.Volume
	b.count = partial.Count
	b.tsLast = partial.TsEvent
	b.hasData = true
}
