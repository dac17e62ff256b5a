package bar

import "main/internal/value"

// ValueBarAggregator closes a bar once accumulated notional value
// (price · size) reaches `step`. An update that would overflow the
// threshold is split the same way VolumeBarAggregator splits: the residual
// size is computed proportionally from the unconsumed fraction of the
// update's value, per spec.md §4.6.
type ValueBarAggregator struct {
	step       value.Decimal
	builder    *BarBuilder
	cumulative value.Decimal
	handler    Handler
}

// NewValueBarAggregator creates a value-threshold aggregator. step must be
// positive.
func NewValueBarAggregator(step value.Decimal, handler Handler) (*ValueBarAggregator, error) {
	if value.DecimalSign(step) <= 0 {
		return nil, ErrNonPositiveStep
	}
	return &ValueBarAggregator{step: step, builder: NewBarBuilder(), cumulative: value.ZeroDecimal, handler: handler}, nil
}

// HandleTrade applies a trade, splitting and closing bars as the
// cumulative-value threshold is crossed.
func (a *ValueBarAggregator) HandleTrade(tick value.TradeTick) error {
	return a.apply(tick.Price, tick.Size, tick.TsEvent)
}

func (a *ValueBarAggregator) apply(price value.Price, size value.Quantity, tsEvent int64) error {
	if size.IsZero() {
		return a.builder.Update(price, size, tsEvent)
	}

	valueUpdate := price.MulQuantity(size)
	remainingValue := a.step.Sub(a.cumulative)

	if valueUpdate.Cmp(remainingValue) <= 0 {
		if err := a.builder.Update(price, size, tsEvent); err != nil {
			return err
		}
		a.cumulative = a.cumulative.Add(valueUpdate)
		if a.cumulative.Cmp(a.step) >= 0 {
			a.closeAndReset(tsEvent)
		}
		return nil
	}

	// valueUpdate > remainingValue: consume the fraction of size whose
	// value exactly fills remainingValue, close, recurse with the residual.
	consumedSize, err := value.NewQuantityFromDecimal(
		size.ToDecimal().Mul(remainingValue).Div(valueUpdate),
		size.Precision(),
	)
	if err != nil {
		return err
	}

	if !consumedSize.IsZero() {
		if err := a.builder.Update(price, consumedSize, tsEvent); err != nil {
			return err
		}
	}
	a.closeAndReset(tsEvent)

	residual, err := size.Sub(consumedSize)
	if err != nil {
		return err
	}
	return a.apply(price, residual, tsEvent)
}

func (a *ValueBarAggregator) closeAndReset(tsEvent int64) {
	bar := a.builder.Bar(tsEvent, tsEvent)
	a.builder.Reset()
	a.cumulative = value.ZeroDecimal
	if a.handler != nil {
		a.handler(bar)
	}
}
