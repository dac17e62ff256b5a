package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"main/internal/instrument"
	"main/internal/order"
	"main/internal/position"
	"main/internal/value"
)

func testInstrument(t *testing.T) instrument.Instrument {
	t.Helper()
	one, err := value.NewQuantityFromString("1")
	require.NoError(t, err)
	return instrument.Instrument{
		ID:             value.NewInstrumentId("BTCUSDT", "BINANCE"),
		PricePrecision: 2,
		SizePrecision:  2,
		Multiplier:     one.ToDecimal(),
		QuoteCurrency:  value.Currency{Code: "USD", Precision: 2},
	}
}

func px(t *testing.T, s string) value.Price {
	t.Helper()
	p, err := value.NewPriceFromString(s)
	require.NoError(t, err)
	return p
}

func qty(t *testing.T, s string) value.Quantity {
	t.Helper()
	q, err := value.NewQuantityFromString(s)
	require.NoError(t, err)
	return q
}

func initOrder(id value.ClientOrderId, inst instrument.Instrument) order.Initialized {
	return order.Initialized{
		Header:      order.Header{ClientOrderId: id, InstrumentId: inst.ID, TsEvent: 1},
		Side:        order.SideBuy,
		Type:        order.TypeLimit,
		Quantity:    value.Quantity{},
		TimeInForce: order.TimeInForceGTC,
	}
}

func TestEngineInitOrderRejectsDuplicate(t *testing.T) {
	e := New(nil, position.NETTING)
	inst := testInstrument(t)
	require.NoError(t, e.RegisterInstrument(inst))

	init := initOrder("O-1", inst)
	init.Quantity = qty(t, "10")
	_, err := e.InitOrder(init)
	require.NoError(t, err)

	_, err = e.InitOrder(init)
	require.ErrorIs(t, err, ErrDuplicateOrder)
}

func TestEngineApplyOrderEventFillsOpenPosition(t *testing.T) {
	e := New(nil, position.NETTING)
	inst := testInstrument(t)
	require.NoError(t, e.RegisterInstrument(inst))

	init := initOrder("O-1", inst)
	init.Quantity = qty(t, "10")
	o, err := e.InitOrder(init)
	require.NoError(t, err)

	submit := order.Submitted{Header: order.Header{ClientOrderId: o.ClientOrderId, InstrumentId: inst.ID, TsEvent: 2}}
	require.NoError(t, e.ApplyOrderEvent(o.ClientOrderId, submit))
	accept := order.Accepted{Header: order.Header{ClientOrderId: o.ClientOrderId, InstrumentId: inst.ID, TsEvent: 3}}
	require.NoError(t, e.ApplyOrderEvent(o.ClientOrderId, accept))

	fill := order.Filled{
		Header:      order.Header{ClientOrderId: o.ClientOrderId, InstrumentId: inst.ID, TsEvent: 4},
		ExecutionId: "E-1",
		PositionId:  "P-1",
		Side:        order.SideBuy,
		LastQty:     qty(t, "10"),
		LastPx:      px(t, "100.00"),
	}
	require.NoError(t, e.ApplyOrderEvent(o.ClientOrderId, fill))

	p, ok := e.Positions().Get(inst.ID, "P-1")
	require.True(t, ok, "position not found after fill")
	require.Equal(t, position.Long, p.Side)
	require.True(t, p.Qty.Equal(qty(t, "10")))
	require.Equal(t, order.StatusFilled, o.Status)
}

func TestEngineOcoFillCancelsSibling(t *testing.T) {
	e := New(nil, position.NETTING)
	inst := testInstrument(t)
	require.NoError(t, e.RegisterInstrument(inst))

	primary := initOrder("O-1", inst)
	primary.Quantity = qty(t, "10")
	primary.Contingency = order.ContingencyOCO
	primary.ContingencyIds = []value.ClientOrderId{"O-2"}
	o1, err := e.InitOrder(primary)
	require.NoError(t, err)

	sibling := initOrder("O-2", inst)
	sibling.Quantity = qty(t, "10")
	sibling.Contingency = order.ContingencyOCO
	sibling.ContingencyIds = []value.ClientOrderId{"O-1"}
	o2, err := e.InitOrder(sibling)
	require.NoError(t, err)

	for _, o := range []*order.Order{o1, o2} {
		require.NoError(t, e.ApplyOrderEvent(o.ClientOrderId, order.Submitted{Header: order.Header{ClientOrderId: o.ClientOrderId, InstrumentId: inst.ID, TsEvent: 2}}))
		require.NoError(t, e.ApplyOrderEvent(o.ClientOrderId, order.Accepted{Header: order.Header{ClientOrderId: o.ClientOrderId, InstrumentId: inst.ID, TsEvent: 3}}))
	}

	fill := order.Filled{
		Header:      order.Header{ClientOrderId: "O-1", InstrumentId: inst.ID, TsEvent: 4},
		ExecutionId: "E-1",
		PositionId:  "P-1",
		Side:        order.SideBuy,
		LastQty:     qty(t, "10"),
		LastPx:      px(t, "100.00"),
	}
	require.NoError(t, e.ApplyOrderEvent("O-1", fill))

	require.Equal(t, order.StatusCanceled, o2.Status)
}

func TestEngineBookLifecycle(t *testing.T) {
	e := New(nil, position.NETTING)
	inst := testInstrument(t)
	require.NoError(t, e.RegisterInstrument(inst))
	_, err := e.RegisterBook(inst.ID, BookL1)
	require.NoError(t, err)

	quote := value.QuoteTick{
		InstrumentId: inst.ID,
		BidPrice:     px(t, "99.00"),
		AskPrice:     px(t, "101.00"),
		BidSize:      qty(t, "1"),
		AskSize:      qty(t, "1"),
		TsEvent:      1,
	}
	require.NoError(t, e.HandleQuoteTick(quote))

	b, ok := e.Book(inst.ID)
	require.True(t, ok, "book not registered")
	bid, _, err := b.BestBid()
	require.NoError(t, err)
	require.True(t, bid.Equal(px(t, "99.00")))
}

func TestEngineHandleTradeTickUnregisteredInstrument(t *testing.T) {
	e := New(nil, position.NETTING)
	trade := value.TradeTick{InstrumentId: value.NewInstrumentId("NOPE", "X"), Price: px(t, "1"), Size: qty(t, "1")}
	require.Error(t, e.HandleTradeTick(trade))
}
