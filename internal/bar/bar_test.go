package bar

import (
	"testing"

	"main/internal/clock"
	"main/internal/value"
)

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

func TestBarBuilderCarriesForwardOnReset(t *testing.T) {
	b := NewBarBuilder()
	if err := b.Update(px(t, "10.00"), qty(t, "1"), 1); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := b.Update(px(t, "12.00"), qty(t, "1"), 2); err != nil {
		t.Fatalf("Update: %v", err)
	}
	b.Reset()
	if want := px(t, "12.00"); !b.Close().Equal(want) {
		t.Fatalf("close after reset = %v, want %v", b.Close(), want)
	}
	if !b.Volume().IsZero() {
		t.Fatalf("volume after reset = %v, want 0", b.Volume())
	}
	bar := b.Bar(3, 3)
	if !bar.Open.Equal(px(t, "12.00")) || !bar.High.Equal(px(t, "12.00")) || !bar.Low.Equal(px(t, "12.00")) {
		t.Fatalf("carried-forward bar OHLC = %+v, want all 12.00", bar)
	}
}

func TestBarBuilderRejectsOutOfOrder(t *testing.T) {
	b := NewBarBuilder()
	if err := b.Update(px(t, "10.00"), qty(t, "1"), 10); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := b.Update(px(t, "11.00"), qty(t, "1"), 5); err != ErrOutOfOrder {
		t.Fatalf("out-of-order Update err = %v, want ErrOutOfOrder", err)
	}
}

func TestTickBarAggregatorClosesOnStep(t *testing.T) {
	var bars []Bar
	agg, err := NewTickBarAggregator(3, func(b Bar) { bars = append(bars, b) })
	if err != nil {
		t.Fatalf("NewTickBarAggregator: %v", err)
	}
	prices := []string{"10.00", "11.00", "9.00", "12.00"}
	for i, p := range prices {
		if err := agg.HandleTrade(value.TradeTick{Price: px(t, p), Size: qty(t, "1"), TsEvent: int64(i + 1)}); err != nil {
			t.Fatalf("HandleTrade: %v", err)
		}
	}
	if len(bars) != 1 {
		t.Fatalf("len(bars) = %d, want 1", len(bars))
	}
	if !bars[0].High.Equal(px(t, "11.00")) || !bars[0].Low.Equal(px(t, "9.00")) {
		t.Fatalf("bar = %+v, want high=11.00 low=9.00", bars[0])
	}
	if bars[0].Count != 3 {
		t.Fatalf("count = %d, want 3", bars[0].Count)
	}
}

// Volume bar split: step=100. Apply (p=1.0,size=60) then (p=1.1,size=80).
// Expect one bar closed with volume=100 including 40 of the second update
// at price 1.1; builder carries residual 40 at 1.1.
func TestVolumeBarSplit(t *testing.T) {
	var bars []Bar
	step := qty(t, "100")
	agg, err := NewVolumeBarAggregator(step, func(b Bar) { bars = append(bars, b) })
	if err != nil {
		t.Fatalf("NewVolumeBarAggregator: %v", err)
	}
	if err := agg.HandleTrade(value.TradeTick{Price: px(t, "1.0"), Size: qty(t, "60"), TsEvent: 1}); err != nil {
		t.Fatalf("HandleTrade: %v", err)
	}
	if err := agg.HandleTrade(value.TradeTick{Price: px(t, "1.1"), Size: qty(t, "80"), TsEvent: 2}); err != nil {
		t.Fatalf("HandleTrade: %v", err)
	}

	if len(bars) != 1 {
		t.Fatalf("len(bars) = %d, want 1", len(bars))
	}
	if want := qty(t, "100"); !bars[0].Volume.Equal(want) {
		t.Fatalf("bar volume = %v, want %v", bars[0].Volume, want)
	}
	if !bars[0].Close.Equal(px(t, "1.1")) {
		t.Fatalf("bar close = %v, want 1.1", bars[0].Close)
	}
	if want := qty(t, "40"); !agg.builder.Volume().Equal(want) {
		t.Fatalf("residual volume = %v, want %v", agg.builder.Volume(), want)
	}
	if !agg.builder.Close().Equal(px(t, "1.1")) {
		t.Fatalf("residual price = %v, want 1.1", agg.builder.Close())
	}
}

func TestValueBarSplit(t *testing.T) {
	var bars []Bar
	threshold, err := value.NewPriceFromString("100")
	if err != nil {
		t.Fatalf("NewPriceFromString: %v", err)
	}
	agg, err := NewValueBarAggregator(threshold.ToDecimal(), func(b Bar) { bars = append(bars, b) })
	if err != nil {
		t.Fatalf("NewValueBarAggregator: %v", err)
	}
	// value = price*size: 10*5=50, then 10*10=100 -> total 150, crosses 100
	// after consuming 50 of the second update's value (size=5 of it).
	if err := agg.HandleTrade(value.TradeTick{Price: px(t, "10"), Size: qty(t, "5"), TsEvent: 1}); err != nil {
		t.Fatalf("HandleTrade: %v", err)
	}
	if err := agg.HandleTrade(value.TradeTick{Price: px(t, "10"), Size: qty(t, "10"), TsEvent: 2}); err != nil {
		t.Fatalf("HandleTrade: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("len(bars) = %d, want 1", len(bars))
	}
	if want := qty(t, "10"); !bars[0].Volume.Equal(want) {
		t.Fatalf("bar volume = %v, want %v", bars[0].Volume, want)
	}
}

// Time bar gap: minute bars, step=1. Update at 00:00:30, then advance clock
// to 00:02:15. Expect two bars: one for 00:00-00:01 with OHLCV from the
// tick; one for 00:01-00:02 with open=high=low=close=prior close, volume=0.
func TestTimeBarGap(t *testing.T) {
	clk := clock.NewTestClock(0)
	var bars []Bar
	agg, err := NewTimeBarAggregator(clk, Minute, 1, "minute-bar", func(b Bar) { bars = append(bars, b) })
	if err != nil {
		t.Fatalf("NewTimeBarAggregator: %v", err)
	}

	thirtySeconds := int64(30 * 1e9)
	if err := agg.HandleTrade(value.TradeTick{Price: px(t, "5.00"), Size: qty(t, "2"), TsEvent: thirtySeconds}); err != nil {
		t.Fatalf("HandleTrade: %v", err)
	}

	twoFifteen := int64(135 * 1e9)
	clk.AdvanceTimeTo(twoFifteen)

	if len(bars) != 2 {
		t.Fatalf("len(bars) = %d, want 2", len(bars))
	}
	if !bars[0].Close.Equal(px(t, "5.00")) || bars[0].Volume.IsZero() {
		t.Fatalf("bar[0] = %+v, want OHLCV from the tick", bars[0])
	}
	if !bars[1].Open.Equal(px(t, "5.00")) || !bars[1].High.Equal(px(t, "5.00")) ||
		!bars[1].Low.Equal(px(t, "5.00")) || !bars[1].Close.Equal(px(t, "5.00")) {
		t.Fatalf("bar[1] OHLC = %+v, want all carried-forward at 5.00", bars[1])
	}
	if !bars[1].Volume.IsZero() {
		t.Fatalf("bar[1] volume = %v, want 0", bars[1].Volume)
	}
}

// A tick landing more than one boundary past next_close_ns makes
// applyUpdate's straddle loop close those boundaries directly via closeAt,
// bypassing the clock's own timer. closeAt must re-arm that timer to the
// new schedule; otherwise a later AdvanceTimeTo still fires the clock's
// stale timer and replays an already-closed boundary.
func TestTimeBarStraddleResyncsClockTimer(t *testing.T) {
	clk := clock.NewTestClock(0)
	var bars []Bar
	agg, err := NewTimeBarAggregator(clk, Minute, 1, "minute-bar-resync", func(b Bar) { bars = append(bars, b) })
	if err != nil {
		t.Fatalf("NewTimeBarAggregator: %v", err)
	}

	twoAndAHalfMinutes := int64(150 * 1e9)
	if err := agg.HandleTrade(value.TradeTick{Price: px(t, "5.00"), Size: qty(t, "2"), TsEvent: twoAndAHalfMinutes}); err != nil {
		t.Fatalf("HandleTrade: %v", err)
	}

	clk.AdvanceTimeTo(int64(200 * 1e9))

	if len(bars) != 3 {
		t.Fatalf("len(bars) = %d, want 3 (no replay of a stale clock timer): %+v", len(bars), bars)
	}
	for i, want := range []int64{60 * 1e9, 120 * 1e9, 180 * 1e9} {
		if bars[i].TsEvent != want {
			t.Fatalf("bars[%d].TsEvent = %d, want %d", i, bars[i].TsEvent, want)
		}
	}
	for i := 1; i < len(bars); i++ {
		if bars[i].TsEvent <= bars[i-1].TsEvent {
			t.Fatalf("ts_event not strictly increasing: bars[%d]=%d bars[%d]=%d", i-1, bars[i-1].TsEvent, i, bars[i].TsEvent)
		}
	}
}

func TestBarBuilderSetPartialOnlyOnce(t *testing.T) {
	b := NewBarBuilder()
	b.SetPartial(Bar{Open: px(t, "1.00"), High: px(t, "2.00"), Low: px(t, "1.00"), Close: px(t, "1.50"), Volume: qty(t, "5")})
	b.SetPartial(Bar{Open: px(t, "9.00"), High: px(t, "9.00"), Low: px(t, "9.00"), Close: px(t, "9.00"), Volume: qty(t, "1")})
	if !b.Close().Equal(px(t, "1.50")) {
		t.Fatalf("close = %v, want 1.50 (second SetPartial should be a no-op)", b.Close())
	}
}
