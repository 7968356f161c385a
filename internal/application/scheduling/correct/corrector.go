// Package correct adjusts split-order times for machine-speed
// differences, maintenance windows, and shift calendars.
package correct

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/planfab/aps-engine/internal/domain/order"
	"github.com/planfab/aps-engine/internal/domain/refdata"
	"github.com/planfab/aps-engine/internal/domain/shared"
)

// Options tunes the corrector's three sub-steps
type Options struct {
	// SpeedToleranceMinutes is the minimum difference between the
	// computed and the original end before the end is replaced
	SpeedToleranceMinutes int

	// SetupMinutesDefault is used when the speed row carries no setup time
	SetupMinutesDefault int

	// ChangeoverMinutesDefault is used when the speed row carries no
	// changeover time
	ChangeoverMinutesDefault int

	// ShiftClampMaxHours is the duration above which an order may span
	// multiple shifts instead of being clamped
	ShiftClampMaxHours int
}

// DefaultOptions returns the production defaults
func DefaultOptions() Options {
	return Options{
		SpeedToleranceMinutes:    30,
		SetupMinutesDefault:      30,
		ChangeoverMinutesDefault: 15,
		ShiftClampMaxHours:       24,
	}
}

// Corrector is the fourth pipeline stage. Each sub-step is
// skip-on-missing-data: absent reference entries degrade that sub-step
// only, never the order or the run.
type Corrector struct {
	opts Options
}

// NewCorrector creates a corrector
func NewCorrector(opts Options) *Corrector {
	return &Corrector{opts: opts}
}

// Run corrects every order independently. Orders never interact, so the
// work is embarrassingly parallel; the sequential loop keeps output
// ordering deterministic.
func (c *Corrector) Run(orders []order.SplitOrder, snapshot *refdata.Snapshot) []order.CorrectedOrder {
	calendar := refdata.NewShiftCalendar(nil)
	if snapshot != nil {
		calendar = refdata.NewShiftCalendar(snapshot.Shifts())
	}

	corrected := make([]order.CorrectedOrder, 0, len(orders))
	for _, o := range orders {
		co := order.CorrectedOrder{
			SplitOrder:    o,
			OriginalStart: o.PlannedStart,
			OriginalEnd:   o.PlannedEnd,
		}
		if snapshot != nil {
			c.applySpeed(&co, snapshot)
			c.applyMaintenance(&co, snapshot)
		}
		c.applyShifts(&co, calendar)
		corrected = append(corrected, co)
	}
	return corrected
}

// applySpeed recomputes the order's end from machine speed and
// efficiency, replacing the planned end only when the difference exceeds
// the tolerance
func (c *Corrector) applySpeed(o *order.CorrectedOrder, snapshot *refdata.Snapshot) {
	machine := o.MachineCode()
	if machine == "" {
		return
	}
	row, found := snapshot.SpeedFor(machine, o.ArticleNr, o.PlannedStart)
	if !found {
		return
	}

	capacity := row.Speed.Mul(row.NormalizedEfficiency())
	if !capacity.IsPositive() {
		return
	}

	productionHours, _ := decimal.NewFromInt(o.FinalQuantity).Div(capacity).Float64()

	setup := row.SetupMinutes
	if setup == 0 {
		setup = c.opts.SetupMinutesDefault
	}
	changeover := row.ChangeoverMinutes
	if changeover == 0 {
		changeover = c.opts.ChangeoverMinutesDefault
	}
	totalSetup := time.Duration(setup+changeover) * time.Minute

	calculatedEnd := o.PlannedStart.
		Add(time.Duration(productionHours * float64(time.Hour))).
		Add(totalSetup)

	diff := calculatedEnd.Sub(o.PlannedEnd)
	if diff < 0 {
		diff = -diff
	}
	tolerance := time.Duration(c.opts.SpeedToleranceMinutes) * time.Minute
	if diff <= tolerance {
		return
	}

	o.SpeedAdjusted = true
	o.SpeedAdjustReason = fmt.Sprintf("machine %s capacity %s pcs/h", machine, capacity.Round(2))
	o.PlannedEnd = calculatedEnd
}

// applyMaintenance moves or compresses the order around active
// maintenance windows on its machine, in calendar order. Shifting past
// one window can collide with the next, so the pass restarts until no
// conflict remains.
func (c *Corrector) applyMaintenance(o *order.CorrectedOrder, snapshot *refdata.Snapshot) {
	windows := snapshot.MaintenanceFor(o.MachineCode())
	if len(windows) == 0 {
		return
	}

	var shifted time.Duration
	// Each resolution either moves the order forward or truncates it, so
	// the number of conflicts is bounded; the cap guards degenerate data
	for iter := 0; iter <= 2*len(windows); iter++ {
		conflict, found := firstConflict(windows, shared.NewInterval(o.PlannedStart, o.PlannedEnd))
		if !found {
			break
		}
		o.MaintenanceAdjusted = true
		o.MaintenanceConflicts++

		duration := o.PlannedEnd.Sub(o.PlannedStart)
		switch {
		case conflict.MaintenanceType.IsBlocking():
			shifted += conflict.EndTime.Sub(o.PlannedStart)
			o.PlannedStart = conflict.EndTime
			o.PlannedEnd = conflict.EndTime.Add(duration)

		case o.PlannedStart.Before(conflict.StartTime) && conflict.StartTime.Sub(o.PlannedStart) >= 2*time.Hour:
			// Minor maintenance with enough runway: truncate the order
			// to finish before the window
			o.PlannedEnd = conflict.StartTime

		default:
			shifted += conflict.EndTime.Sub(o.PlannedStart)
			o.PlannedStart = conflict.EndTime
			o.PlannedEnd = conflict.EndTime.Add(duration)
		}
	}

	if shifted > 0 {
		o.MaintenanceAdjustmentHours = decimal.NewFromFloat(shifted.Hours()).Round(2)
	}
}

// firstConflict returns the earliest active maintenance window strictly
// overlapping the interval
func firstConflict(windows []refdata.MaintenancePlan, interval shared.Interval) (refdata.MaintenancePlan, bool) {
	for _, w := range windows {
		if !w.PlanStatus.Active() {
			continue
		}
		if interval.Overlaps(shared.NewInterval(w.StartTime, w.EndTime)) {
			return w, true
		}
	}
	return refdata.MaintenancePlan{}, false
}

// applyShifts advances the order into a working shift and clamps its end
// to the shift boundary unless the order is long enough to span shifts
func (c *Corrector) applyShifts(o *order.CorrectedOrder, calendar *refdata.ShiftCalendar) {
	if calendar.Empty() {
		return
	}

	duration := o.PlannedEnd.Sub(o.PlannedStart)

	if _, _, inside := calendar.Containing(o.PlannedStart); !inside {
		next, found := calendar.NextStart(o.PlannedStart)
		if !found {
			return
		}
		o.PlannedStart = next
		o.PlannedEnd = next.Add(duration)
		o.ShiftCorrected = true
	}

	_, window, inside := calendar.Containing(o.PlannedStart)
	if !inside || !o.PlannedEnd.After(window.End) {
		return
	}

	if duration > time.Duration(c.opts.ShiftClampMaxHours)*time.Hour {
		o.CrossShiftAllowed = true
		return
	}

	o.PlannedEnd = window.End
	o.DurationAdjusted = true
}
