// Package opstore is an opt-in external sink for position snapshots,
// outside the trading core proper (spec.md §1 carves persistence out of
// the core's scope). Grounded on the teacher's pkg/conn.Client
// (gorm.io/gorm + gorm.io/driver/postgres Postgres wrapper): opstore wraps
// that client with one gorm model and a Save/Latest/Close Store, the way cmd/trader's
// optional `-snapshot-dsn` flag is expected to use it, rather than folding
// persistence into internal/position itself.
package opstore

import (
	"context"
	"time"

	"main/internal/position"
	"main/internal/value"

	"gorm.io/gorm"

	"main/pkg/conn"
)

// PositionSnapshotRow is the gorm model a position.Snapshot is written to
// and read back from.
type PositionSnapshotRow struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement"`
	InstrumentId   string `gorm:"index"`
	PositionId     string `gorm:"index"`
	Side           string
	NetQty         string
	Qty            string
	PeakQty        string
	Entry          string
	AvgPxOpen      string
	AvgPxClose     string
	RealizedPoints string
	RealizedReturn float64
	RealizedPnl    float64
	RealizedPnlCcy string
	TsOpened       int64
	TsLast         int64
	TsClosed       int64
	DurationNs     int64
	RecordedAt     time.Time `gorm:"index"`
}

func (PositionSnapshotRow) TableName() string { return "position_snapshots" }

// Store persists position.Snapshot values to Postgres via the teacher's
// generic conn.Client.
type Store struct {
	client *conn.Client
}

// Open connects to Postgres using opt and auto-migrates the snapshot
// table.
func Open(opt conn.Option) (*Store, error) {
	client, err := conn.New(opt)
	if err != nil {
		return nil, err
	}
	if err := client.DB().AutoMigrate(&PositionSnapshotRow{}); err != nil {
		return nil, err
	}
	return &Store{client: client}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.client.Close() }

// Save writes one snapshot as a new row. opstore never updates rows in
// place: every call to Save appends a new point-in-time record, so the
// table doubles as an append-only snapshot history.
func (s *Store) Save(ctx context.Context, snap position.Snapshot) error {
	row := PositionSnapshotRow{
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
		RecordedAt:     time.Now(),
	}
	return s.client.DB().WithContext(ctx).Create(&row).Error
}

// Latest returns the most recently recorded snapshot for a position, if
// any.
func (s *Store) Latest(ctx context.Context, instrumentId value.InstrumentId, positionId value.PositionId) (PositionSnapshotRow, bool, error) {
	var row PositionSnapshotRow
	err := s.client.DB().WithContext(ctx).
		Where("instrument_id = ? AND position_id = ?", instrumentId.String(), string(positionId)).
		Order("recorded_at DESC").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return PositionSnapshotRow{}, false, nil
	}
	if err != nil {
		return PositionSnapshotRow{}, false, err
	}
	return row, true, nil
}
