package psync_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planfab/aps-engine/internal/application/scheduling/psync"
	"github.com/planfab/aps-engine/internal/domain/order"
	"github.com/planfab/aps-engine/internal/domain/shared"
)

func day(d, h int) time.Time {
	return time.Date(2026, 8, d, h, 0, 0, 0, time.Local)
}

func corrected(nr, source string, typ order.WorkOrderType, machine string, start, end time.Time) order.CorrectedOrder {
	o := order.SplitOrder{
		WorkOrderNr:       nr,
		WorkOrderType:     typ,
		SourceWorkOrderNr: source,
		PlannedStart:      start,
		PlannedEnd:        end,
	}
	if typ == order.WorkOrderTypeFeeding {
		o.FeederCode = machine
	} else {
		o.MakerCode = machine
	}
	return order.CorrectedOrder{SplitOrder: o, OriginalStart: start, OriginalEnd: end}
}

func newSynchroniser() *psync.Synchroniser {
	return psync.NewSynchroniser(shared.NewMockClock(day(21, 12)))
}

func TestSynchroniser_PackersAlignToWidestWindow(t *testing.T) {
	// Arrange - three packers of one logical order with staggered windows
	s := newSynchroniser()
	orders := []order.CorrectedOrder{
		corrected("PK1", "M001", order.WorkOrderTypePacking, "C11", day(21, 8), day(21, 14)),
		corrected("PK2", "M001", order.WorkOrderTypePacking, "C12", day(21, 9), day(21, 16)),
		corrected("PK3", "M001", order.WorkOrderTypePacking, "C13", day(21, 7), day(21, 12)),
	}

	// Act
	synced := s.Run(orders)

	// Assert - all packers share the envelope [07:00, 16:00)
	require.Len(t, synced, 3)
	for _, so := range synced {
		assert.True(t, so.IsSynchronized)
		assert.Equal(t, day(21, 7), so.PlannedStart)
		assert.Equal(t, day(21, 16), so.PlannedEnd)
		assert.Equal(t, 3, so.TotalSyncMachines)
		assert.NotEmpty(t, so.SyncGroupID)
	}
	assert.Equal(t, synced[0].SyncGroupID, synced[1].SyncGroupID)
	assert.Equal(t, "SYNC_M001_20260821120000", synced[0].SyncGroupID)
}

func TestSynchroniser_SingletonUntouched(t *testing.T) {
	s := newSynchroniser()
	orders := []order.CorrectedOrder{
		corrected("PK1", "M001", order.WorkOrderTypePacking, "C11", day(21, 8), day(21, 14)),
	}

	synced := s.Run(orders)

	require.Len(t, synced, 1)
	assert.False(t, synced[0].IsSynchronized)
	assert.Empty(t, synced[0].SyncGroupID)
	assert.Equal(t, day(21, 8), synced[0].PlannedStart)
}

func TestSynchroniser_FeederKeepsOwnWindow(t *testing.T) {
	// Arrange - the feeder pre-charges before the packers start
	s := newSynchroniser()
	orders := []order.CorrectedOrder{
		corrected("FD1", "M001", order.WorkOrderTypeFeeding, "F01", day(21, 7), day(21, 15)),
		corrected("PK1", "M001", order.WorkOrderTypePacking, "C11", day(21, 8), day(21, 14)),
		corrected("PK2", "M001", order.WorkOrderTypePacking, "C12", day(21, 9), day(21, 16)),
	}

	// Act
	synced := s.Run(orders)

	// Assert
	require.Len(t, synced, 3)
	feeder := synced[0]
	require.True(t, feeder.IsFeeder())
	assert.Equal(t, day(21, 7), feeder.PlannedStart, "feeder window untouched")
	assert.Equal(t, day(21, 15), feeder.PlannedEnd)
	assert.True(t, feeder.IsSynchronized, "feeder still belongs to the sync group")
	require.NotEmpty(t, feeder.Warnings, "feeder ending after packer sync start is surfaced")

	for _, so := range synced[1:] {
		assert.Equal(t, day(21, 8), so.PlannedStart)
		assert.Equal(t, day(21, 16), so.PlannedEnd)
	}
}

func TestSynchroniser_FeederOnlyGroupUsesLatestStart(t *testing.T) {
	s := newSynchroniser()
	orders := []order.CorrectedOrder{
		corrected("FD1", "M001", order.WorkOrderTypeFeeding, "F01", day(21, 7), day(21, 12)),
		corrected("FD2", "M001", order.WorkOrderTypeFeeding, "F02", day(21, 9), day(21, 13)),
	}

	synced := s.Run(orders)

	require.Len(t, synced, 2)
	for _, so := range synced {
		assert.Equal(t, day(21, 9), so.PlannedStart, "latest start")
		assert.Equal(t, day(21, 13), so.PlannedEnd, "latest end")
	}
}

func TestSynchroniser_IndependentGroupsDoNotInteract(t *testing.T) {
	s := newSynchroniser()
	orders := []order.CorrectedOrder{
		corrected("PK1", "M001", order.WorkOrderTypePacking, "C11", day(21, 8), day(21, 14)),
		corrected("PK2", "M001", order.WorkOrderTypePacking, "C12", day(21, 9), day(21, 15)),
		corrected("PK3", "M002", order.WorkOrderTypePacking, "C13", day(22, 8), day(22, 12)),
		corrected("PK4", "M002", order.WorkOrderTypePacking, "C14", day(22, 9), day(22, 13)),
	}

	synced := s.Run(orders)

	require.Len(t, synced, 4)
	assert.NotEqual(t, synced[0].SyncGroupID, synced[2].SyncGroupID)
	assert.Equal(t, day(21, 8), synced[0].PlannedStart)
	assert.Equal(t, day(22, 8), synced[2].PlannedStart)
}
