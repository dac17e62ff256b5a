package obs

import (
	"sync/atomic"
	"time"

	"main/internal/book"
	"main/internal/order"
	"main/internal/position"
)

const maxOrderStatus = int(order.StatusFilled)

// Metrics collects lightweight counters and latency stats for one trading
// session. Grounded on the teacher's internal/obs.Metrics (atomic counter
// array plus LatencyStats accumulators), retargeted from the teacher's
// EventType/RiskReason axes to order-status transitions, position
// lifecycle events, book integrity failures, and bars emitted (one
// session-wide count, not split by aggregator).
type Metrics struct {
	orderStatusCounts  [maxOrderStatus + 1]uint64
	positionsOpened    uint64
	positionsClosed    uint64
	positionsFlipped   uint64
	bookIntegrityFails uint64
	barsEmitted        uint64

	orderLatency  LatencyStats
	fillLatency   LatencyStats
	quoteToTrade  LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	OrderStatusCounts  map[order.Status]uint64
	PositionsOpened    uint64
	PositionsClosed    uint64
	PositionsFlipped   uint64
	BookIntegrityFails uint64
	BarsEmitted        uint64
	OrderLatency       LatencySnapshot
	FillLatency        LatencySnapshot
	QuoteToTrade       LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveOrderEvent increments the counter for an order's status after
// applying event, and — when tsRecv is available — tracks the event's
// processing latency.
func (m *Metrics) ObserveOrderEvent(o *order.Order, tsRecv int64) {
	if m == nil || o == nil {
		return
	}
	idx := int(o.Status)
	if idx >= 0 && idx < len(m.orderStatusCounts) {
		atomic.AddUint64(&m.orderStatusCounts[idx], 1)
	}
	if o.TsLast > 0 && tsRecv > 0 && tsRecv >= o.TsLast {
		m.orderLatency.Observe(time.Duration(tsRecv - o.TsLast))
	}
}

// ObserveFill records a fill's processing latency.
func (m *Metrics) ObserveFill(d time.Duration) {
	if m == nil {
		return
	}
	m.fillLatency.Observe(d)
}

// ObserveQuoteToTrade records the latency between a quote update and the
// trade that followed it, for market-impact diagnostics.
func (m *Metrics) ObserveQuoteToTrade(d time.Duration) {
	if m == nil {
		return
	}
	m.quoteToTrade.Observe(d)
}

// ObservePositionOpened increments the positions-opened counter.
func (m *Metrics) ObservePositionOpened() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.positionsOpened, 1)
}

// ObservePositionClosed increments the positions-closed counter, given the
// position that just returned to FLAT.
func (m *Metrics) ObservePositionClosed(p *position.Position) {
	if m == nil || p == nil {
		return
	}
	atomic.AddUint64(&m.positionsClosed, 1)
}

// ObservePositionFlipped increments the positions-flipped counter.
func (m *Metrics) ObservePositionFlipped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.positionsFlipped, 1)
}

// ObserveBookIntegrityFailure increments the book-integrity-failure
// counter; callers typically invoke this from a book.Book.CheckIntegrity
// error path.
func (m *Metrics) ObserveBookIntegrityFailure(_ book.Book) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.bookIntegrityFails, 1)
}

// ObserveBarEmitted increments the bars-emitted counter.
func (m *Metrics) ObserveBarEmitted() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.barsEmitted, 1)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	statusCounts := make(map[order.Status]uint64)
	for i := range m.orderStatusCounts {
		if v := atomic.LoadUint64(&m.orderStatusCounts[i]); v > 0 {
			statusCounts[order.Status(i)] = v
		}
	}
	return Snapshot{
		OrderStatusCounts:  statusCounts,
		PositionsOpened:    atomic.LoadUint64(&m.positionsOpened),
		PositionsClosed:    atomic.LoadUint64(&m.positionsClosed),
		PositionsFlipped:   atomic.LoadUint64(&m.positionsFlipped),
		BookIntegrityFails: atomic.LoadUint64(&m.bookIntegrityFails),
		BarsEmitted:        atomic.LoadUint64(&m.barsEmitted),
		OrderLatency:       m.orderLatency.Snapshot(),
		FillLatency:        m.fillLatency.Snapshot(),
		QuoteToTrade:       m.quoteToTrade.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
