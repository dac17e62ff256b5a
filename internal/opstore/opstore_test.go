package opstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"main/internal/position"
	"main/internal/value"
)

// snapshotToRow mirrors Save's row construction without requiring a live
// database connection, so the field mapping between position.Snapshot and
// PositionSnapshotRow stays covered even though Save/Open/Latest need a
// real *gorm.DB and are exercised only by hand against Postgres.
func snapshotToRow(snap position.Snapshot) PositionSnapshotRow {
	return PositionSnapshotRow{
		InstrumentId:   snap.InstrumentId.String(),
		PositionId:     string(snap.PositionId),
		Side:           snap.Side,
		NetQty:         snap.NetQty,
		Qty:            snap.Qty,
		PeakQty:        snap.PeakQty,
		Entry:          snap.Entry,
		AvgPxOpen:      snap.AvgPxOpen,
		AvgPxClose:     snap.AvgPxClose,
		RealizedPoints: snap.RealizedPoints,
		RealizedReturn: snap.RealizedReturn,
		RealizedPnl:    snap.RealizedPnl,
		RealizedPnlCcy: snap.RealizedPnlCcy,
		TsOpened:       snap.TsOpened,
		TsLast:         snap.TsLast,
		TsClosed:       snap.TsClosed,
		DurationNs:     snap.DurationNs,
	}
}

func TestSnapshotToRowMapsAllFields(t *testing.T) {
	snap := position.Snapshot{
		InstrumentId:   value.NewInstrumentId("BTCUSDT", "BINANCE"),
		PositionId:     "P-1",
		Side:           "LONG",
		NetQty:         "10",
		Qty:            "10",
		PeakQty:        "10",
		Entry:          "100.00",
		AvgPxOpen:      "100.00",
		AvgPxClose:     "0",
		RealizedPoints: "0",
		RealizedReturn: 0,
		RealizedPnl:    0,
		RealizedPnlCcy: "USD",
		TsOpened:       1,
		TsLast:         2,
		TsClosed:       0,
		DurationNs:     0,
	}

	row := snapshotToRow(snap)

	require.Equal(t, snap.InstrumentId.String(), row.InstrumentId)
	require.Equal(t, string(snap.PositionId), row.PositionId)
	require.Equal(t, snap.Side, row.Side)
	require.Equal(t, snap.NetQty, row.NetQty)
	require.Equal(t, snap.Qty, row.Qty)
	require.Equal(t, snap.PeakQty, row.PeakQty)
	require.Equal(t, snap.Entry, row.Entry)
	require.Equal(t, snap.AvgPxOpen, row.AvgPxOpen)
	require.Equal(t, snap.AvgPxClose, row.AvgPxClose)
	require.Equal(t, snap.RealizedPoints, row.RealizedPoints)
	require.Equal(t, snap.RealizedReturn, row.RealizedReturn)
	require.Equal(t, snap.RealizedPnl, row.RealizedPnl)
	require.Equal(t, snap.RealizedPnlCcy, row.RealizedPnlCcy)
	require.Equal(t, snap.TsOpened, row.TsOpened)
	require.Equal(t, snap.TsLast, row.TsLast)
	require.Equal(t, snap.TsClosed, row.TsClosed)
	require.Equal(t, snap.DurationNs, row.DurationNs)
	require.True(t, row.RecordedAt.IsZero(), "RecordedAt should be left unset by the mapping helper")
}

func TestPositionSnapshotRowTableName(t *testing.T) {
	var row PositionSnapshotRow
	require.Equal(t, "position_snapshots", row.TableName())
}
