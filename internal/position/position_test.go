package position

import (
	"errors"
	"testing"

	"main/internal/instrument"
	"main/internal/order"
	"main/internal/value"
)

func testInstrument(t *testing.T) instrument.Instrument {
	t.Helper()
	usd := value.Currency{Code: "USD", Precision: 2}
	one, err := value.NewQuantityFromString("1")
	if err != nil {
		t.Fatalf("NewQuantityFromString: %v", err)
	}
	return instrument.Instrument{
		ID:             value.NewInstrumentId("BTCUSDT", "BINANCE"),
		PricePrecision: 2,
		SizePrecision:  2,
		Multiplier:     one.ToDecimal(),
		QuoteCurrency:  usd,
	}
}

func px(t *testing.T, s string) value.Price {
	t.Helper()
	p, err := value.NewPriceFromString(s)
	if err != nil {
		t.Fatalf("NewPriceFromString(%q): %v", s, err)
	}
	return p
}

func qty(t *testing.T, s string) value.Quantity {
	t.Helper()
	q, err := value.NewQuantityFromString(s)
	if err != nil {
		t.Fatalf("NewQuantityFromString(%q): %v", s, err)
	}
	return q
}

func fill(t *testing.T, inst instrument.Instrument, executionId value.ExecutionId, side order.Side, lastQty, lastPx string, ts int64) order.Filled {
	t.Helper()
	return order.Filled{
		Header: order.Header{
			ClientOrderId: "O-1",
			InstrumentId:  inst.ID,
			TsEvent:       ts,
		},
		ExecutionId: executionId,
		PositionId:  "P-1",
		Side:        side,
		LastQty:     qty(t, lastQty),
		LastPx:      px(t, lastPx),
	}
}

// Position flip: open LONG with fill qty=5@10.00, then apply SELL
// qty=8@12.00. Expect realized_pnl = 5*(12-10)*multiplier, side=SHORT,
// net_qty=-3, avg_px_open=12.00, avg_px_close=12.00.
func TestPositionFlip(t *testing.T) {
	inst := testInstrument(t)
	open := fill(t, inst, "E-1", order.SideBuy, "5", "10.00", 1)
	p, err := Open(inst, open)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if p.Side != Long {
		t.Fatalf("side after open = %v, want LONG", p.Side)
	}

	flip := fill(t, inst, "E-2", order.SideSell, "8", "12.00", 2)
	if err := p.Apply(flip); err != nil {
		t.Fatalf("Apply flip: %v", err)
	}

	if p.Side != Short {
		t.Fatalf("side after flip = %v, want SHORT", p.Side)
	}
	wantNetQty := "-3"
	if got := p.NetQty.String(); got != wantNetQty {
		t.Fatalf("net_qty = %s, want %s", got, wantNetQty)
	}
	if want := px(t, "12.00"); !p.AvgPxOpen.Equal(want) {
		t.Fatalf("avg_px_open = %v, want %v", p.AvgPxOpen, want)
	}
	if want := px(t, "12.00"); !p.AvgPxClose.Equal(want) {
		t.Fatalf("avg_px_close = %v, want %v", p.AvgPxClose, want)
	}
	if want := qty(t, "3"); !p.Qty.Equal(want) {
		t.Fatalf("qty = %v, want %v", p.Qty, want)
	}

	pnlFloat, _ := p.RealizedPnl.Amount.Float64()
	if pnlFloat < 9.99 || pnlFloat > 10.01 {
		t.Fatalf("realized_pnl = %v, want ~10.00", pnlFloat)
	}
}

func TestPositionDuplicateExecutionRejected(t *testing.T) {
	inst := testInstrument(t)
	open := fill(t, inst, "E-1", order.SideBuy, "5", "10.00", 1)
	p, err := Open(inst, open)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := p.Apply(open); err != ErrDuplicateExecution {
		t.Fatalf("duplicate fill err = %v, want ErrDuplicateExecution", err)
	}
}

func TestPositionClosesToFlat(t *testing.T) {
	inst := testInstrument(t)
	open := fill(t, inst, "E-1", order.SideBuy, "5", "10.00", 1)
	p, err := Open(inst, open)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	closeFill := fill(t, inst, "E-2", order.SideSell, "5", "11.00", 2)
	if err := p.Apply(closeFill); err != nil {
		t.Fatalf("Apply close: %v", err)
	}
	if p.Side != Flat {
		t.Fatalf("side after full close = %v, want FLAT", p.Side)
	}
	if p.TsClosed != 2 {
		t.Fatalf("ts_closed = %d, want 2", p.TsClosed)
	}
	if p.DurationNs != 1 {
		t.Fatalf("duration_ns = %d, want 1", p.DurationNs)
	}

	if err := p.Apply(fill(t, inst, "E-3", order.SideBuy, "1", "11.00", 3)); !errors.Is(err, ErrClosed) {
		t.Fatalf("fill on closed position err = %v, want ErrClosed", err)
	}
}

func TestPositionAddingSameDirection(t *testing.T) {
	inst := testInstrument(t)
	open := fill(t, inst, "E-1", order.SideBuy, "5", "10.00", 1)
	p, err := Open(inst, open)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	add := fill(t, inst, "E-2", order.SideBuy, "5", "20.00", 2)
	if err := p.Apply(add); err != nil {
		t.Fatalf("Apply add: %v", err)
	}
	if want := px(t, "15.00"); !p.AvgPxOpen.Equal(want) {
		t.Fatalf("avg_px_open = %v, want %v", p.AvgPxOpen, want)
	}
	if want := qty(t, "10"); !p.Qty.Equal(want) {
		t.Fatalf("qty = %v, want %v", p.Qty, want)
	}
	if want := qty(t, "10"); !p.PeakQty.Equal(want) {
		t.Fatalf("peak_qty = %v, want %v", p.PeakQty, want)
	}
}

func TestPositionInstrumentMismatchRejected(t *testing.T) {
	inst := testInstrument(t)
	open := fill(t, inst, "E-1", order.SideBuy, "5", "10.00", 1)
	p, err := Open(inst, open)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	bad := fill(t, inst, "E-2", order.SideSell, "1", "1.00", 2)
	bad.Header.InstrumentId = value.NewInstrumentId("ETHUSDT", "BINANCE")
	if err := p.Apply(bad); err == nil {
		t.Fatal("expected instrument mismatch to be rejected")
	}
}
