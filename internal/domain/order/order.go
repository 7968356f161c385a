package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// WorkOrderType distinguishes the two split-order variants
type WorkOrderType string

const (
	// WorkOrderTypePacking - one order per maker machine
	WorkOrderTypePacking WorkOrderType = "PACKING"

	// WorkOrderTypeFeeding - one order per feeder machine
	WorkOrderTypeFeeding WorkOrderType = "FEEDING"
)

// SplitOrder is the splitter's output: either a packer order (one maker,
// a share of the merged quantity) or a feeder order (one feeder,
// aggregating every packer order it feeds). Orders reference each other
// by work-order number, never by pointer.
type SplitOrder struct {
	WorkOrderNr   string
	WorkOrderType WorkOrderType

	// SourceWorkOrderNr is the merged plan's work order number. Orders
	// sharing it form one logical work order and are synchronised together.
	SourceWorkOrderNr string

	ArticleNr     string
	ProductCode   string
	MakerCode     string
	FeederCode    string
	QuantityTotal int64
	FinalQuantity int64
	PlannedStart  time.Time
	PlannedEnd    time.Time

	// Packer-only fields
	SplitSequence int
	TotalMakers   int
	InputPlanID   string // feeder order's work order number

	// Feeder-only fields
	AssociatedMakers       []string
	TobaccoConsumptionRate decimal.Decimal // pieces per hour

	// Splitter audit
	ScheduleAdjusted bool
	AdjustReason     string
	Warnings         []string
}

// IsPacker reports whether this is a packer order
func (o SplitOrder) IsPacker() bool { return o.WorkOrderType == WorkOrderTypePacking }

// IsFeeder reports whether this is a feeder order
func (o SplitOrder) IsFeeder() bool { return o.WorkOrderType == WorkOrderTypeFeeding }

// MachineCode returns the machine the order is assigned to
func (o SplitOrder) MachineCode() string {
	if o.IsFeeder() {
		return o.FeederCode
	}
	return o.MakerCode
}

// Duration returns the order's planned duration
func (o SplitOrder) Duration() time.Duration {
	return o.PlannedEnd.Sub(o.PlannedStart)
}

// AddWarning appends a non-fatal warning to the order
func (o *SplitOrder) AddWarning(w string) {
	o.Warnings = append(o.Warnings, w)
}

// String provides human-readable representation
func (o SplitOrder) String() string {
	return fmt.Sprintf("Order[%s, type=%s, machine=%s, qty=%d, %s - %s]",
		o.WorkOrderNr, o.WorkOrderType, o.MachineCode(), o.FinalQuantity,
		o.PlannedStart.Format("2006-01-02 15:04"), o.PlannedEnd.Format("2006-01-02 15:04"))
}

// CorrectedOrder is a SplitOrder whose times have been run through the
// time corrector, with an audit trail of every adjustment applied
type CorrectedOrder struct {
	SplitOrder

	SpeedAdjusted     bool
	SpeedAdjustReason string
	OriginalEnd       time.Time

	MaintenanceAdjusted        bool
	MaintenanceAdjustmentHours decimal.Decimal
	MaintenanceConflicts       int
	OriginalStart              time.Time

	ShiftCorrected    bool
	DurationAdjusted  bool
	CrossShiftAllowed bool
}

// SyncedOrder is a CorrectedOrder annotated by the parallel synchroniser
type SyncedOrder struct {
	CorrectedOrder

	SyncGroupID       string
	IsSynchronized    bool
	SyncSequence      int
	TotalSyncMachines int
}
