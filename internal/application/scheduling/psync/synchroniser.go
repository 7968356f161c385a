// Package psync forces the machines executing one logical work order to
// start and finish together.
package psync

import (
	"fmt"
	"sort"

	"github.com/planfab/aps-engine/internal/domain/order"
	"github.com/planfab/aps-engine/internal/domain/shared"
)

// Synchroniser is the fifth pipeline stage. Orders sharing a source work
// order number form a sync group; every packer in a group is assigned
// the group's widest packer window. Feeder orders keep their own window
// because the splitter already guarantees feeder exclusivity; a feeder
// running into the packers' start is recorded as a residual conflict.
type Synchroniser struct {
	clock shared.Clock
}

// NewSynchroniser creates a synchroniser
func NewSynchroniser(clock shared.Clock) *Synchroniser {
	return &Synchroniser{clock: clock}
}

// Run synchronises the corrected orders group by group
func (s *Synchroniser) Run(orders []order.CorrectedOrder) []order.SyncedOrder {
	groups := make(map[string][]int)
	groupKeys := make([]string, 0)
	for i, o := range orders {
		key := o.SourceWorkOrderNr
		if _, seen := groups[key]; !seen {
			groupKeys = append(groupKeys, key)
		}
		groups[key] = append(groups[key], i)
	}
	sort.Strings(groupKeys)

	stamp := s.clock.Now().Format("20060102150405")
	synced := make([]order.SyncedOrder, len(orders))

	for _, key := range groupKeys {
		indexes := groups[key]
		if len(indexes) == 1 {
			synced[indexes[0]] = order.SyncedOrder{
				CorrectedOrder: orders[indexes[0]],
				IsSynchronized: false,
			}
			continue
		}
		s.syncGroup(key, stamp, indexes, orders, synced)
	}

	return synced
}

// syncGroup aligns one multi-machine group
func (s *Synchroniser) syncGroup(key, stamp string, indexes []int, orders []order.CorrectedOrder, synced []order.SyncedOrder) {
	var packers, feeders []int
	for _, i := range indexes {
		if orders[i].IsFeeder() {
			feeders = append(feeders, i)
		} else {
			packers = append(packers, i)
		}
	}

	var window shared.Interval
	if len(packers) > 0 {
		window = shared.NewInterval(orders[packers[0]].PlannedStart, orders[packers[0]].PlannedEnd)
		for _, i := range packers[1:] {
			if orders[i].PlannedStart.Before(window.Start) {
				window.Start = orders[i].PlannedStart
			}
			if orders[i].PlannedEnd.After(window.End) {
				window.End = orders[i].PlannedEnd
			}
		}
	} else {
		// Feeder-only group: latest start, latest end
		window = shared.NewInterval(orders[feeders[0]].PlannedStart, orders[feeders[0]].PlannedEnd)
		for _, i := range feeders[1:] {
			if orders[i].PlannedStart.After(window.Start) {
				window.Start = orders[i].PlannedStart
			}
			if orders[i].PlannedEnd.After(window.End) {
				window.End = orders[i].PlannedEnd
			}
		}
	}

	window = s.adjustForMaintenanceRotation(window)

	groupID := "SYNC_" + key + "_" + stamp
	for seq, i := range indexes {
		so := order.SyncedOrder{
			CorrectedOrder:    orders[i],
			SyncGroupID:       groupID,
			IsSynchronized:    true,
			SyncSequence:      seq + 1,
			TotalSyncMachines: len(indexes),
		}
		if so.IsFeeder() && len(packers) > 0 {
			// Feeder pre-charging may legitimately run into the packer
			// window; surface it without correcting
			if so.PlannedEnd.After(window.Start) {
				so.AddWarning(fmt.Sprintf("feeder %s window ends after packer sync start %s",
					so.FeederCode, window.Start.Format("2006-01-02 15:04")))
			}
		} else {
			so.PlannedStart = window.Start
			so.PlannedEnd = window.End
		}
		synced[i] = so
	}
}

// adjustForMaintenanceRotation is the hook for rotating-maintenance
// patterns across packer machines. The rotation table does not exist
// yet, so the window passes through unchanged.
// TODO: consume the rotation pattern once the maintenance table carries it.
func (s *Synchroniser) adjustForMaintenanceRotation(window shared.Interval) shared.Interval {
	return window
}
