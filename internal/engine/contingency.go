package engine

import "main/internal/order"

// resolveContingency applies a just-applied event's contingency effect to
// an order's siblings, per spec.md §9's ContingencyType (OTO/OCO/OUO),
// whose operational semantics the spec names but does not define; the
// choice made here is recorded in DESIGN.md. Effects are best-effort:
// a sibling whose current Status makes the effect illegal under the FSM
// (transitions.go) is silently skipped rather than erroring the triggering
// order's own event application.
func (e *Engine) resolveContingency(o *order.Order, event order.Event) {
	if o.Contingency == order.ContingencyNone || len(o.ContingencyIds) == 0 {
		return
	}

	switch o.Contingency {
	case order.ContingencyOCO:
		if o.Status.IsTerminal() {
			e.cancelSiblings(o, event)
		}
	case order.ContingencyOTO:
		if o.Status == order.StatusFilled {
			e.activateSiblings(o, event)
		}
	case order.ContingencyOUO:
		if _, ok := event.(order.Filled); ok {
			e.reduceSiblings(o, event.(order.Filled))
		}
	}
}

// cancelSiblings cancels every still-open sibling once one-cancels-the-
// other's triggering order reaches a terminal state. A sibling still in
// INITIALIZED (never submitted) has nothing to cancel at the venue and is
// skipped; Apply would reject EventCanceled from that status anyway.
func (e *Engine) cancelSiblings(o *order.Order, event order.Event) {
	head := event.Head()
	for _, sibId := range o.ContingencyIds {
		sib, ok := e.orders[sibId]
		if !ok || sib.Status.IsTerminal() {
			continue
		}
		ev := order.Canceled{Header: order.Header{
			ClientOrderId: sibId,
			InstrumentId:  sib.InstrumentId,
			TsEvent:       head.TsEvent,
			TsInit:        head.TsInit,
		}}
		if err := sib.Apply(ev); err != nil {
			continue
		}
		if e.onOrderEvent != nil {
			e.onOrderEvent(sib, ev)
		}
	}
}

// activateSiblings submits every INITIALIZED sibling once one-triggers-
// the-other's triggering order fills. A sibling already submitted (or
// past) is left alone.
func (e *Engine) activateSiblings(o *order.Order, event order.Event) {
	head := event.Head()
	for _, sibId := range o.ContingencyIds {
		sib, ok := e.orders[sibId]
		if !ok || sib.Status != order.StatusInitialized {
			continue
		}
		ev := order.Submitted{Header: order.Header{
			ClientOrderId: sibId,
			InstrumentId:  sib.InstrumentId,
			TsEvent:       head.TsEvent,
			TsInit:        head.TsInit,
		}}
		if err := sib.Apply(ev); err != nil {
			continue
		}
		if e.onOrderEvent != nil {
			e.onOrderEvent(sib, ev)
		}
	}
}

// reduceSiblings shrinks every sibling's remaining quantity by the fill
// size on every fill of a one-updates-the-other order, clamped so a
// sibling is never reduced below its own filled quantity. A sibling not
// yet accepted, or already terminal, cannot legally receive Updated and is
// skipped.
func (e *Engine) reduceSiblings(o *order.Order, fill order.Filled) {
	head := fill.Header
	for _, sibId := range o.ContingencyIds {
		sib, ok := e.orders[sibId]
		if !ok || sib.Status.IsTerminal() {
			continue
		}
		newQty, err := sib.Quantity.Sub(fill.LastQty)
		if err != nil || newQty.LessThan(sib.FilledQty) {
			newQty = sib.FilledQty
		}
		ev := order.Updated{
			Header: order.Header{
				ClientOrderId: sibId,
				InstrumentId:  sib.InstrumentId,
				TsEvent:       head.TsEvent,
				TsInit:        head.TsInit,
			},
			Quantity: newQty,
		}
		if err := sib.Apply(ev); err != nil {
			continue
		}
		if e.onOrderEvent != nil {
			e.onOrderEvent(sib, ev)
		}
	}
}
