// Package order implements the Order aggregate: a tagged-sum OrderEvent
// stream folded through a shared finite-state machine, plus the
// denormalized fields (filled_qty, avg_px, leaves_qty, ...) that make the
// aggregate cheap to query. Grounded on internal/og/state_machine.go's
// shape (an Order struct plus a StateMachine exposing one Apply* method per
// event kind that returns a sentinel error on an illegal transition),
// generalized from the teacher's coarse ack-driven model to the spec's
// full per-event-kind FSM (see transitions.go) and OrderEvent sum type
// (see event.go).
package order

import (
	"main/internal/value"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Order is the order aggregate. It is an append-only event log (Events)
// plus denormalized fields kept in sync on every Apply call.
type Order struct {
	// Identity
	TraderId      value.TraderId
	StrategyId    value.StrategyId
	InstrumentId  value.InstrumentId
	ClientOrderId value.ClientOrderId
	VenueOrderId  *value.VenueOrderId
	PositionId    *value.PositionId

	// Classification
	Type         Type
	Side         Side
	TimeInForce  TimeInForce
	ExpireTimeNs int64
	IsReduceOnly bool
	Price        value.Price
	TriggerPrice value.Price
	IsTriggered  bool
	DisplayQty   value.Quantity

	// Lifecycle
	Status       Status
	Events       []Event
	ExecutionIds []value.ExecutionId
	Quantity     value.Quantity
	FilledQty    value.Quantity
	AvgPx        value.Price
	Slippage     value.Price
	TsLast       int64

	// Relationships
	OrderListId    value.OrderListId
	ParentOrderId  value.ClientOrderId
	ChildOrderIds  []value.ClientOrderId
	Contingency    ContingencyType
	ContingencyIds []value.ClientOrderId
	Tags           map[string]string

	rollback Status // status to restore when a pending state's Accepted arrives
}

// LeavesQty returns quantity - filled_qty.
func (o *Order) LeavesQty() value.Quantity {
	lq, err := o.Quantity.Sub(o.FilledQty)
	if err != nil {
		// filled_qty is maintained <= quantity by Apply; unreachable.
		return value.ZeroQuantity
	}
	return lq
}

// FromInit constructs a new Order in INITIALIZED from its Initialized
// event, and appends that event to the log.
func FromInit(init Initialized) (*Order, error) {
	if !init.Side.IsAvailable() {
		return nil, errors.Wrap(ErrValidation, "order side is not available")
	}
	if !init.Type.IsAvailable() {
		return nil, errors.Wrap(ErrValidation, "order type is not available")
	}
	if !init.TimeInForce.IsAvailable() {
		return nil, errors.Wrap(ErrValidation, "order time in force is not available")
	}
	if init.TimeInForce == TimeInForceGTD && init.ExpireTimeNs == 0 {
		return nil, errors.Wrap(ErrMissingExpireTime, "GTD order requires expire_time")
	}
	if !init.DisplayQty.IsZero() && init.DisplayQty.GreaterThan(init.Quantity) {
		return nil, errors.Wrap(ErrInvalidDisplayQty, "display_qty must not exceed quantity")
	}

	o := &Order{
		TraderId:       init.TraderId,
		StrategyId:     init.StrategyId,
		InstrumentId:   init.InstrumentId,
		ClientOrderId:  init.ClientOrderId,
		Type:           init.Type,
		Side:           init.Side,
		TimeInForce:    init.TimeInForce,
		ExpireTimeNs:   init.ExpireTimeNs,
		IsReduceOnly:   init.IsReduceOnly,
		Price:          init.Price,
		TriggerPrice:   init.TriggerPrice,
		DisplayQty:     init.DisplayQty,
		Status:         StatusInitialized,
		Quantity:       init.Quantity,
		OrderListId:    init.OrderListId,
		ParentOrderId:  init.ParentOrderId,
		Contingency:    init.Contingency,
		ContingencyIds: init.ContingencyIds,
		Tags:           init.Tags,
	}
	if init.PositionId != "" {
		pid := init.PositionId
		o.PositionId = &pid
	}
	o.TsLast = init.TsEvent
	o.Events = append(o.Events, init)
	return o, nil
}

// Apply appends event to the order's log and mutates its denormalized
// fields, enforcing the finite-state machine. It rejects transitions not
// in the table (ErrInvalidTransition) and duplicate execution ids on
// Filled (ErrDuplicateExecution).
func (o *Order) Apply(event Event) error {
	switch e := event.(type) {
	case Initialized:
		return errors.Wrap(ErrInvalidTransition, "cannot re-apply Initialized")
	case Denied:
		return o.transition(e, func() {})
	case Submitted:
		return o.transition(e, func() {})
	case Rejected:
		return o.transition(e, func() {})
	case Accepted:
		return o.applyAccepted(e)
	case PendingUpdate:
		return o.enterPending(e, StatusPendingUpdate)
	case PendingCancel:
		return o.enterPending(e, StatusPendingCancel)
	case Updated:
		return o.applyUpdated(e)
	case Triggered:
		return o.transition(e, func() { o.IsTriggered = true })
	case Canceled:
		return o.transition(e, func() {})
	case Expired:
		return o.applyExpired(e)
	case Filled:
		return o.applyFilled(e)
	default:
		return ErrUnknownEvent
	}
}

// transition is the common path for events whose resolution is a flat
// table lookup (transitions.go) with no payload-dependent branching beyond
// the caller-supplied side effect.
func (o *Order) transition(event Event, sideEffect func()) error {
	kind := event.Kind()
	next, ok := transitions[o.Status][kind]
	if !ok {
		logs.Errorf("order %s rejected: cannot apply %v from %v", o.ClientOrderId, kind, o.Status)
		return errors.Wrapf(ErrInvalidTransition, "cannot apply %v from %v", kind, o.Status)
	}
	sideEffect()
	o.Status = next
	o.TsLast = event.Head().TsEvent
	o.Events = append(o.Events, event)
	return nil
}

// enterPending transitions into PENDING_UPDATE or PENDING_CANCEL, recording
// the current status as the rollback target for a subsequent Accepted
// event.
func (o *Order) enterPending(event Event, target Status) error {
	kind := event.Kind()
	next, ok := transitions[o.Status][kind]
	if !ok {
		logs.Errorf("order %s rejected: cannot apply %v from %v", o.ClientOrderId, kind, o.Status)
		return errors.Wrapf(ErrInvalidTransition, "cannot apply %v from %v", kind, o.Status)
	}
	rollback := o.Status
	o.rollback = rollback
	o.Status = next
	_ = target // next already equals target per the transition table
	o.TsLast = event.Head().TsEvent
	o.Events = append(o.Events, event)
	return nil
}

// applyAccepted handles both the flat SUBMITTED -> ACCEPTED transition and
// the PENDING_UPDATE / PENDING_CANCEL -> rollback transition, per
// pendingRollbackFrom.
func (o *Order) applyAccepted(e Accepted) error {
	if pendingRollbackFrom(o.Status) {
		o.Status = o.rollback
		if e.VenueOrderId != "" {
			vid := e.VenueOrderId
			o.VenueOrderId = &vid
		}
		o.TsLast = e.Head().TsEvent
		o.Events = append(o.Events, e)
		return nil
	}
	return o.transition(e, func() {
		if e.VenueOrderId != "" {
			vid := e.VenueOrderId
			o.VenueOrderId = &vid
		}
	})
}

// applyUpdated handles the quantity/price/trigger rewrite rules. Quantity
// must not drop below filled_qty. For StopLimit orders, price rewrites the
// trigger pre-trigger and the limit price post-trigger.
func (o *Order) applyUpdated(e Updated) error {
	kind := e.Kind()
	next, ok := transitions[o.Status][kind]
	if !ok {
		logs.Errorf("order %s rejected: cannot apply %v from %v", o.ClientOrderId, kind, o.Status)
		return errors.Wrapf(ErrInvalidTransition, "cannot apply %v from %v", kind, o.Status)
	}
	if !e.Quantity.IsZero() {
		if e.Quantity.LessThan(o.FilledQty) {
			logs.Errorf("order %s rejected: updated quantity %s below filled quantity %s", o.ClientOrderId, e.Quantity, o.FilledQty)
			return errors.Wrap(ErrQuantityBelowFilled, "updated quantity below filled quantity")
		}
		o.Quantity = e.Quantity
	}
	if o.Type == TypeStopLimit {
		if !o.IsTriggered {
			if !e.TriggerPrice.IsZero() {
				o.TriggerPrice = e.TriggerPrice
			} else if !e.Price.IsZero() {
				o.TriggerPrice = e.Price
			}
		} else if !e.Price.IsZero() {
			o.Price = e.Price
		}
	} else {
		if !e.Price.IsZero() {
			o.Price = e.Price
		}
		if !e.TriggerPrice.IsZero() {
			o.TriggerPrice = e.TriggerPrice
		}
	}
	if e.VenueOrderId != "" {
		vid := e.VenueOrderId
		o.VenueOrderId = &vid
	}
	o.Status = next
	o.TsLast = e.Head().TsEvent
	o.Events = append(o.Events, e)
	return nil
}

// applyExpired enforces that Expired requires GTD time-in-force and that
// now has reached expire_time.
func (o *Order) applyExpired(e Expired) error {
	if o.TimeInForce != TimeInForceGTD {
		logs.Errorf("order %s rejected: Expired requires GTD time in force, got %v", o.ClientOrderId, o.TimeInForce)
		return errors.Wrap(ErrMissingExpireTime, "Expired requires GTD time in force")
	}
	if o.ExpireTimeNs == 0 || e.Head().TsEvent < o.ExpireTimeNs {
		logs.Errorf("order %s rejected: expire_time %d not yet reached at %d", o.ClientOrderId, o.ExpireTimeNs, e.Head().TsEvent)
		return errors.Wrap(ErrMissingExpireTime, "expire_time not yet reached")
	}
	return o.transition(e, func() {})
}

// applyFilled enforces unique execution ids, updates filled_qty and avg_px,
// computes slippage for passive orders, and resolves the terminal status.
func (o *Order) applyFilled(e Filled) error {
	if !fillableFrom(o.Status) {
		logs.Errorf("order %s rejected: cannot apply Filled from %v", o.ClientOrderId, o.Status)
		return errors.Wrapf(ErrInvalidTransition, "cannot apply Filled from %v", o.Status)
	}
	for _, id := range o.ExecutionIds {
		if id == e.ExecutionId {
			logs.Errorf("order %s rejected: duplicate execution id %s", o.ClientOrderId, e.ExecutionId)
			return ErrDuplicateExecution
		}
	}

	filledPrev := o.FilledQty
	newFilled, err := filledPrev.Add(e.LastQty)
	if err != nil {
		return errors.Wrap(err, "accumulating filled quantity")
	}
	if newFilled.GreaterThan(o.Quantity) {
		logs.Errorf("order %s rejected: fill %s exceeds remaining quantity (filled=%s quantity=%s)", o.ClientOrderId, e.LastQty, filledPrev, o.Quantity)
		return errors.Wrap(ErrOverFill, "fill exceeds remaining quantity")
	}

	o.AvgPx = weightedAvgPx(o.AvgPx, filledPrev, e.LastPx, e.LastQty)
	o.FilledQty = newFilled
	o.ExecutionIds = append(o.ExecutionIds, e.ExecutionId)
	o.TsLast = e.Head().TsEvent

	if o.Type.HasLimitPrice() && !o.Price.IsZero() {
		o.Slippage = slippageFor(o.Side, o.AvgPx, o.Price)
	}

	if o.FilledQty.Equal(o.Quantity) {
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartiallyFilled
	}
	o.Events = append(o.Events, e)
	return nil
}

// weightedAvgPx computes the quantity-weighted mean price of all fills:
// (avg_px*filled_prev + last_px*last_qty) / (filled_prev + last_qty).
func weightedAvgPx(avgPx value.Price, filledPrev value.Quantity, lastPx value.Price, lastQty value.Quantity) value.Price {
	newFilled, err := filledPrev.Add(lastQty)
	if err != nil || newFilled.IsZero() {
		return lastPx
	}
	prevNotional := avgPx.ToDecimal().Mul(filledPrev.ToDecimal())
	lastNotional := lastPx.ToDecimal().Mul(lastQty.ToDecimal())
	totalNotional := prevNotional.Add(lastNotional)
	avg := totalNotional.Div(newFilled.ToDecimal())
	f, _ := avg.Float64()
	precision := maxOf(avgPx.Precision(), lastPx.Precision())
	p, err := value.NewPriceFromFloat(f, precision)
	if err != nil {
		return lastPx
	}
	return p
}

// slippageFor computes avg_px - price, signed by side: a buy's slippage is
// positive when it paid more than its limit; a sell's slippage is positive
// when it received less than its limit.
func slippageFor(side Side, avgPx, limitPx value.Price) value.Price {
	diff, err := avgPx.Sub(limitPx)
	if err != nil {
		return value.ZeroPrice
	}
	if side == SideSell {
		return diff.Neg()
	}
	return diff
}

func maxOf(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}
