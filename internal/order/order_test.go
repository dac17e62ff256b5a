package order

import (
	"testing"

	"main/internal/value"
)

func mustQty(t *testing.T, s string) value.Quantity {
	t.Helper()
	q, err := value.NewQuantityFromString(s)
	if err != nil {
		t.Fatalf("NewQuantityFromString(%q): %v", s, err)
	}
	return q
}

func mustPx(t *testing.T, s string) value.Price {
	t.Helper()
	p, err := value.NewPriceFromString(s)
	if err != nil {
		t.Fatalf("NewPriceFromString(%q): %v", s, err)
	}
	return p
}

func newLimitBuy(t *testing.T, qty, px string) *Order {
	t.Helper()
	init := Initialized{
		Header: Header{
			ClientOrderId: "O-1",
			InstrumentId:  value.NewInstrumentId("BTCUSDT", "BINANCE"),
			TsEvent:       1,
		},
		TraderId:    "TRADER-1",
		StrategyId:  "STRAT-1",
		Side:        SideBuy,
		Type:        TypeLimit,
		Quantity:    mustQty(t, qty),
		Price:       mustPx(t, px),
		TimeInForce: TimeInForceGTC,
	}
	o, err := FromInit(init)
	if err != nil {
		t.Fatalf("FromInit: %v", err)
	}
	return o
}

func head(ts int64) Header {
	return Header{ClientOrderId: "O-1", InstrumentId: value.NewInstrumentId("BTCUSDT", "BINANCE"), TsEvent: ts}
}

// Limit buy qty=10@100.00: Submitted -> Accepted -> Filled(4@100.10) ->
// Filled(6@100.20). Expect FILLED, filled_qty=10, avg_px=100.16,
// slippage=+0.16.
func TestOrderFSM_FullFillWeightedAvg(t *testing.T) {
	o := newLimitBuy(t, "10", "100.00")

	if err := o.Apply(Submitted{Header: head(2)}); err != nil {
		t.Fatalf("Submitted: %v", err)
	}
	if o.Status != StatusSubmitted {
		t.Fatalf("status after Submitted = %v, want SUBMITTED", o.Status)
	}

	if err := o.Apply(Accepted{Header: head(3), VenueOrderId: "V-1"}); err != nil {
		t.Fatalf("Accepted: %v", err)
	}
	if o.Status != StatusAccepted {
		t.Fatalf("status after Accepted = %v, want ACCEPTED", o.Status)
	}

	fill1 := Filled{
		Header:      head(4),
		ExecutionId: "E-1",
		Side:        SideBuy,
		LastQty:     mustQty(t, "4"),
		LastPx:      mustPx(t, "100.10"),
	}
	if err := o.Apply(fill1); err != nil {
		t.Fatalf("Filled#1: %v", err)
	}
	if o.Status != StatusPartiallyFilled {
		t.Fatalf("status after first fill = %v, want PARTIALLY_FILLED", o.Status)
	}

	fill2 := Filled{
		Header:      head(5),
		ExecutionId: "E-2",
		Side:        SideBuy,
		LastQty:     mustQty(t, "6"),
		LastPx:      mustPx(t, "100.20"),
	}
	if err := o.Apply(fill2); err != nil {
		t.Fatalf("Filled#2: %v", err)
	}

	if o.Status != StatusFilled {
		t.Fatalf("status = %v, want FILLED", o.Status)
	}
	if want := mustQty(t, "10"); !o.FilledQty.Equal(want) {
		t.Fatalf("filled_qty = %v, want %v", o.FilledQty, want)
	}
	if want := mustPx(t, "100.16"); !o.AvgPx.Equal(want) {
		t.Fatalf("avg_px = %v, want %v", o.AvgPx, want)
	}
	if want := mustPx(t, "0.16"); !o.Slippage.Equal(want) {
		t.Fatalf("slippage = %v, want %v", o.Slippage, want)
	}
	if !o.LeavesQty().IsZero() {
		t.Fatalf("leaves_qty = %v, want 0", o.LeavesQty())
	}
}

func TestOrderFSM_DuplicateExecutionRejected(t *testing.T) {
	o := newLimitBuy(t, "10", "100.00")
	_ = o.Apply(Submitted{Header: head(2)})
	_ = o.Apply(Accepted{Header: head(3)})

	fill := Filled{
		Header:      head(4),
		ExecutionId: "E-1",
		Side:        SideBuy,
		LastQty:     mustQty(t, "4"),
		LastPx:      mustPx(t, "100.10"),
	}
	if err := o.Apply(fill); err != nil {
		t.Fatalf("first Filled: %v", err)
	}
	if err := o.Apply(fill); err != ErrDuplicateExecution {
		t.Fatalf("duplicate Filled err = %v, want ErrDuplicateExecution", err)
	}
	if want := mustQty(t, "4"); !o.FilledQty.Equal(want) {
		t.Fatalf("filled_qty after rejected duplicate = %v, want %v", o.FilledQty, want)
	}
}

func TestOrderFSM_OverFillRejected(t *testing.T) {
	o := newLimitBuy(t, "10", "100.00")
	_ = o.Apply(Submitted{Header: head(2)})
	_ = o.Apply(Accepted{Header: head(3)})

	fill := Filled{
		Header:      head(4),
		ExecutionId: "E-1",
		Side:        SideBuy,
		LastQty:     mustQty(t, "11"),
		LastPx:      mustPx(t, "100.10"),
	}
	if err := o.Apply(fill); err == nil {
		t.Fatal("expected overfill to be rejected")
	}
	if o.FilledQty.GreaterThan(o.Quantity) {
		t.Fatalf("filled_qty %v must never exceed quantity %v", o.FilledQty, o.Quantity)
	}
}

func TestOrderFSM_InvalidTransitionRejected(t *testing.T) {
	o := newLimitBuy(t, "10", "100.00")
	// Cannot Accept before Submitted.
	if err := o.Apply(Accepted{Header: head(2)}); err == nil {
		t.Fatal("expected Accepted from INITIALIZED to be rejected")
	}
	if o.Status != StatusInitialized {
		t.Fatalf("status changed on rejected transition: %v", o.Status)
	}
}

func TestOrderFSM_PendingCancelRollback(t *testing.T) {
	o := newLimitBuy(t, "10", "100.00")
	_ = o.Apply(Submitted{Header: head(2)})
	_ = o.Apply(Accepted{Header: head(3), VenueOrderId: "V-1"})

	if err := o.Apply(PendingCancel{Header: head(4)}); err != nil {
		t.Fatalf("PendingCancel: %v", err)
	}
	if o.Status != StatusPendingCancel {
		t.Fatalf("status after PendingCancel = %v, want PENDING_CANCEL", o.Status)
	}

	// A venue reject-of-cancel arrives as Accepted, which should restore
	// the prior ACCEPTED status rather than flatly becoming ACCEPTED from
	// an unlisted transition.
	if err := o.Apply(Accepted{Header: head(5)}); err != nil {
		t.Fatalf("rollback Accepted: %v", err)
	}
	if o.Status != StatusAccepted {
		t.Fatalf("status after rollback = %v, want ACCEPTED", o.Status)
	}
}

func TestOrderFSM_GTDRequiresExpireTime(t *testing.T) {
	init := Initialized{
		Header:      Header{ClientOrderId: "O-2", TsEvent: 1},
		TraderId:    "TRADER-1",
		StrategyId:  "STRAT-1",
		Side:        SideBuy,
		Type:        TypeLimit,
		Quantity:    mustQty(t, "1"),
		Price:       mustPx(t, "1"),
		TimeInForce: TimeInForceGTD,
	}
	if _, err := FromInit(init); err == nil {
		t.Fatal("expected GTD order with no expire_time to be rejected")
	}
}

func TestOrderFSM_CancelTerminal(t *testing.T) {
	o := newLimitBuy(t, "10", "100.00")
	_ = o.Apply(Submitted{Header: head(2)})
	_ = o.Apply(Accepted{Header: head(3)})
	if err := o.Apply(Canceled{Header: head(4)}); err != nil {
		t.Fatalf("Canceled: %v", err)
	}
	if !o.Status.IsTerminal() {
		t.Fatalf("status %v should be terminal", o.Status)
	}
	if err := o.Apply(Submitted{Header: head(5)}); err == nil {
		t.Fatal("expected no events to apply after a terminal status")
	}
}
