package order

import (
	"fmt"
	"time"
)

// MES wire-contract formats. All times are plant-local.
const (
	MesTimeFormat = "2006/01/02 15:04:05"
	MesDateFormat = "2006/01/02"
)

// MES quantity units
const (
	// UnitKilogram - 公斤, feeder (HWS) orders measure shredded tobacco by weight
	UnitKilogram = "公斤"

	// UnitBox - 箱, packer (HJB) orders measure finished product in boxes
	UnitBox = "箱"
)

// OrderTypeFallback flags an MES order whose plan id was generated from a
// random suffix because the sequence service was unavailable
const OrderTypeFallback = "FALLBACK"

// InputBatch links a packer (HJB) order to the feeder (HWS) order that
// supplies it
type InputBatch struct {
	InputPlanID string `json:"input_plan_id"`
}

// MesOrder is a work order in the exact wire shape the MES consumes.
// HWS orders carry no input batch; HJB orders reference their feeder's
// HWS plan id.
type MesOrder struct {
	PlanID         string      `json:"plan_id"`
	ProductionLine string      `json:"production_line"`
	MaterialCode   string      `json:"material_code"`
	Quantity       int64       `json:"quantity"`
	PlanStartTime  string      `json:"plan_start_time"`
	PlanEndTime    string      `json:"plan_end_time"`
	PlanDate       string      `json:"plan_date"`
	Unit           string      `json:"unit"`
	IsBackup       bool        `json:"is_backup"`
	InputBatch     *InputBatch `json:"input_batch,omitempty"`
	OrderType      string      `json:"order_type,omitempty"`

	// Provenance, not part of the wire shape
	Kind              MesKind   `json:"-"`
	SourceWorkOrderNr string    `json:"-"`
	PlannedStart      time.Time `json:"-"`
	PlannedEnd        time.Time `json:"-"`
}

// IsFeederOrder reports whether this is an HWS order
func (m MesOrder) IsFeederOrder() bool { return m.Kind == MesKindFeeder }

// IsPackerOrder reports whether this is an HJB order
func (m MesOrder) IsPackerOrder() bool { return m.Kind == MesKindPacker }

// String provides human-readable representation
func (m MesOrder) String() string {
	return fmt.Sprintf("MesOrder[%s, line=%s, material=%s, qty=%d]",
		m.PlanID, m.ProductionLine, m.MaterialCode, m.Quantity)
}

// ScheduleStatusCompleted marks a summary whose run finished scheduling
const ScheduleStatusCompleted = "COMPLETED"

// ScheduleSummary is the per-(maker, feeder) gantt-friendly rollup written
// alongside MES orders, one set per merged plan
type ScheduleSummary struct {
	WorkOrderNr    string    `json:"work_order_nr"`
	ArticleNr      string    `json:"article_nr"`
	FinalQuantity  int64     `json:"final_quantity"`
	QuantityTotal  int64     `json:"quantity_total"`
	MakerCode      string    `json:"maker_code"`
	FeederCode     string    `json:"feeder_code"`
	PlannedStart   time.Time `json:"planned_start"`
	PlannedEnd     time.Time `json:"planned_end"`
	TaskID         string    `json:"task_id"`
	ScheduleStatus string    `json:"schedule_status"`
}
