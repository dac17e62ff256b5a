package bar

import "main/internal/value"

// TickBarAggregator closes a bar every `step` updates.
type TickBarAggregator struct {
	step    int
	builder *BarBuilder
	handler Handler
}

// NewTickBarAggregator creates a tick-count aggregator.
func NewTickBarAggregator(step int, handler Handler) (*TickBarAggregator, error) {
	if step <= 0 {
		return nil, ErrNonPositiveStep
	}
	return &TickBarAggregator{step: step, builder: NewBarBuilder(), handler: handler}, nil
}

// HandleTrade applies a trade and closes a bar once step updates have
// accumulated.
func (a *TickBarAggregator) HandleTrade(tick value.TradeTick) error {
	return a.handleUpdate(tick.Price, tick.Size, tick.TsEvent)
}

// HandleQuote applies a quote midpoint update (size is the smaller of
// bid/ask size, matching the teacher's conservative-liquidity convention).
func (a *TickBarAggregator) HandleQuote(tick value.QuoteTick) error {
	size := tick.BidSize
	if tick.AskSize.LessThan(size) {
		size = tick.AskSize
	}
	mid, err := midpoint(tick.BidPrice, tick.AskPrice)
	if err != nil {
		return err
	}
	return a.handleUpdate(mid, size, tick.TsEvent)
}

func (a *TickBarAggregator) handleUpdate(price value.Price, size value.Quantity, tsEvent int64) error {
	if err := a.builder.Update(price, size, tsEvent); err != nil {
		return err
	}
	if a.builder.Count() == a.step {
		bar := a.builder.Bar(tsEvent, tsEvent)
		a.builder.Reset()
		if a.handler != nil {
			a.handler(bar)
		}
	}
	return nil
}

func midpoint(bid, ask value.Price) (value.Price, error) {
	sum, err := bid.Add(ask)
	if err != nil {
		return value.ZeroPrice, err
	}
	two := value.OneDecimal.Add(value.OneDecimal)
	half := sum.ToDecimal().Div(two)
	return value.NewPriceFromDecimal(half, maxPrecision(bid.Precision(), ask.Precision()))
}

func maxPrecision(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}
