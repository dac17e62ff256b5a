package bar

import "main/internal/value"

// VolumeBarAggregator closes a bar once accumulated volume reaches `step`.
// An update that would overflow the threshold is split: the exact
// remainder is consumed into the closing bar, and the residual size is
// recursed into the next bar at the same price and ts_event.
type VolumeBarAggregator struct {
	step    value.Quantity
	builder *BarBuilder
	handler Handler
}

// NewVolumeBarAggregator creates a volume-threshold aggregator. step must
// be a positive quantity.
func NewVolumeBarAggregator(step value.Quantity, handler Handler) (*VolumeBarAggregator, error) {
	if step.IsZero() {
		return nil, ErrNonPositiveStep
	}
	return &VolumeBarAggregator{step: step, builder: NewBarBuilder(), handler: handler}, nil
}

// HandleTrade applies a trade, splitting and closing bars as the volume
// threshold is crossed.
func (a *VolumeBarAggregator) HandleTrade(tick value.TradeTick) error {
	return a.apply(tick.Price, tick.Size, tick.TsEvent)
}

func (a *VolumeBarAggregator) apply(price value.Price, size value.Quantity, tsEvent int64) error {
	if size.IsZero() {
		return a.builder.Update(price, size, tsEvent)
	}

	remainingCapacity, err := a.step.Sub(a.builder.Volume())
	if err != nil {
		// Volume already at or past step (shouldn't happen: we close on
		// reaching step), treat as no remaining capacity.
		remainingCapacity = value.ZeroQuantity
	}

	if size.LessThan(remainingCapacity) || size.Equal(remainingCapacity) {
		if err := a.builder.Update(price, size, tsEvent); err != nil {
			return err
		}
		if a.builder.Volume().Equal(a.step) {
			a.closeAndReset(tsEvent)
		}
		return nil
	}

	// size > remainingCapacity: consume exactly remainingCapacity now,
	// close, then recurse with the residual at the same price/ts_event.
	if !remainingCapacity.IsZero() {
		if err := a.builder.Update(price, remainingCapacity, tsEvent); err != nil {
			return err
		}
	}
	a.closeAndReset(tsEvent)

	residual, err := size.Sub(remainingCapacity)
	if err != nil {
		return err
	}
	return a.apply(price, residual, tsEvent)
}

func (a *VolumeBarAggregator) closeAndReset(tsEvent int64) {
	bar := a.builder.Bar(tsEvent, tsEvent)
	a.builder.Reset()
	if a.handler != nil {
		a.handler(bar)
	}
}
