package position

import "main/internal/value"

// Snapshot is a JSON-encodable point-in-time view of a Position, grounded
// on the teacher's internal/state/snapshot.go (Snapshot/SnapshotWithMeta
// pair used for mid-session recovery and test fixtures). Unlike the
// teacher, this package stops at the in-memory struct: writing it to disk
// is an external-catalog concern the core does not take on (persistence
// format is an explicit non-goal).
type Snapshot struct {
	InstrumentId value.InstrumentId
	PositionId   value.PositionId

	Side   string
	NetQty string
	Qty    string

	PeakQty string
	Entry   string

	AvgPxOpen  string
	AvgPxClose string

	RealizedPoints string
	RealizedReturn float64
	RealizedPnl    float64
	RealizedPnlCcy string

	Commissions map[string]float64

	ExecutionIds []string

	TsOpened   int64
	TsLast     int64
	TsClosed   int64
	DurationNs int64
}

// TakeSnapshot captures the position's current denormalized fields.
func (p *Position) TakeSnapshot() Snapshot {
	commissions := make(map[string]float64, len(p.Commissions))
	for ccy, m := range p.Commissions {
		f, _ := m.Amount.Float64()
		commissions[ccy.Code] = f
	}
	executionIds := make([]string, len(p.ExecutionIds))
	for i, id := range p.ExecutionIds {
		executionIds[i] = string(id)
	}
	pnl, _ := p.RealizedPnl.Amount.Float64()
	return Snapshot{
		InstrumentId:   p.InstrumentId,
		PositionId:     p.PositionId,
		Side:           p.Side.String(),
		NetQty:         p.NetQty.String(),
		Qty:            p.Qty.String(),
		PeakQty:        p.PeakQty.String(),
		Entry:          p.Entry.String(),
		AvgPxOpen:      p.AvgPxOpen.String(),
		AvgPxClose:     p.AvgPxClose.String(),
		RealizedPoints: p.RealizedPoints.String(),
		RealizedReturn: p.RealizedReturn,
		RealizedPnl:    pnl,
		RealizedPnlCcy: p.RealizedPnl.Currency.Code,
		Commissions:    commissions,
		ExecutionIds:   executionIds,
		TsOpened:       p.TsOpened,
		TsLast:         p.TsLast,
		TsClosed:       p.TsClosed,
		DurationNs:     p.DurationNs,
	}
}

// CompareSnapshots reports the field names that differ between two
// snapshots of the same position, for test assertions and drift detection
// during mid-session recovery.
func CompareSnapshots(a, b Snapshot) []string {
	var diffs []string
	if a.Side != b.Side {
		diffs = append(diffs, "Side")
	}
	if a.NetQty != b.NetQty {
		diffs = append(diffs, "NetQty")
	}
	if a.AvgPxOpen != b.AvgPxOpen {
		diffs = append(diffs, "AvgPxOpen")
	}
	if a.AvgPxClose != b.AvgPxClose {
		diffs = append(diffs, "AvgPxClose")
	}
	if a.RealizedPnl != b.RealizedPnl {
		diffs = append(diffs, "RealizedPnl")
	}
	if a.TsClosed != b.TsClosed {
		diffs = append(diffs, "TsClosed")
	}
	return diffs
}
