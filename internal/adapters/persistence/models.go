package persistence

import (
	"time"
)

// ScheduleTaskModel represents the schedule_tasks table. One row per
// pipeline run, written in the same transaction as the run's orders.
type ScheduleTaskModel struct {
	TaskID       string    `gorm:"column:task_id;primaryKey"`
	Status       string    `gorm:"column:status;not null"`
	OrderCount   int       `gorm:"column:order_count;not null;default:0"`
	SummaryCount int       `gorm:"column:summary_count;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

func (ScheduleTaskModel) TableName() string {
	return "schedule_tasks"
}

// MesOrderModel represents the mes_orders table
type MesOrderModel struct {
	PlanID            string             `gorm:"column:plan_id;primaryKey"`
	TaskID            string             `gorm:"column:task_id;not null;index"`
	Task              *ScheduleTaskModel `gorm:"foreignKey:TaskID;references:TaskID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Kind              string             `gorm:"column:kind;not null"` // WS or JB
	ProductionLine    string             `gorm:"column:production_line;not null"`
	MaterialCode      string             `gorm:"column:material_code;not null"`
	Quantity          int64              `gorm:"column:quantity;not null"`
	PlanStartTime     string             `gorm:"column:plan_start_time;not null"`
	PlanEndTime       string             `gorm:"column:plan_end_time;not null"`
	PlanDate          string             `gorm:"column:plan_date;not null"`
	Unit              string             `gorm:"column:unit;not null"`
	IsBackup          int                `gorm:"column:is_backup;not null;default:0"` // 0 or 1 (SQLite compatible)
	InputPlanID       string             `gorm:"column:input_plan_id"`
	OrderType         string             `gorm:"column:order_type"`
	SourceWorkOrderNr string             `gorm:"column:source_work_order_nr"`
	PlannedStart      time.Time          `gorm:"column:planned_start"`
	PlannedEnd        time.Time          `gorm:"column:planned_end"`
}

func (MesOrderModel) TableName() string {
	return "mes_orders"
}

// ScheduleSummaryModel represents the schedule_summaries table
type ScheduleSummaryModel struct {
	ID             int                `gorm:"column:id;primaryKey;autoIncrement"`
	TaskID         string             `gorm:"column:task_id;not null;index"`
	Task           *ScheduleTaskModel `gorm:"foreignKey:TaskID;references:TaskID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	WorkOrderNr    string             `gorm:"column:work_order_nr;not null"`
	ArticleNr      string             `gorm:"column:article_nr;not null"`
	FinalQuantity  int64              `gorm:"column:final_quantity;not null"`
	QuantityTotal  int64              `gorm:"column:quantity_total;not null"`
	MakerCode      string             `gorm:"column:maker_code;not null"`
	FeederCode     string             `gorm:"column:feeder_code;not null"`
	PlannedStart   time.Time          `gorm:"column:planned_start;not null"`
	PlannedEnd     time.Time          `gorm:"column:planned_end;not null"`
	ScheduleStatus string             `gorm:"column:schedule_status;not null"`
}

func (ScheduleSummaryModel) TableName() string {
	return "schedule_summaries"
}

// SequenceCounterModel represents the sequence_counters table, one row
// per sequence kind ("HWS", "HJB")
type SequenceCounterModel struct {
	Kind      string    `gorm:"column:kind;primaryKey"`
	Value     uint64    `gorm:"column:value;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SequenceCounterModel) TableName() string {
	return "sequence_counters"
}

// MachineSpeedModel represents the machine_speeds table
type MachineSpeedModel struct {
	ID                int        `gorm:"column:id;primaryKey;autoIncrement"`
	MachineCode       string     `gorm:"column:machine_code;not null;index:idx_speed_machine_article"`
	ArticleNr         string     `gorm:"column:article_nr;not null;index:idx_speed_machine_article"`
	Speed             string     `gorm:"column:speed;not null"`           // decimal as text
	EfficiencyRate    string     `gorm:"column:efficiency_rate;not null"` // decimal as text
	SetupMinutes      int        `gorm:"column:setup_minutes;default:0"`
	ChangeoverMinutes int        `gorm:"column:changeover_minutes;default:0"`
	EffectiveFrom     *time.Time `gorm:"column:effective_from"`
	EffectiveTo       *time.Time `gorm:"column:effective_to"`
}

func (MachineSpeedModel) TableName() string {
	return "machine_speeds"
}

// MaintenancePlanModel represents the maintenance_plans table
type MaintenancePlanModel struct {
	ID              int       `gorm:"column:id;primaryKey;autoIncrement"`
	MachineCode     string    `gorm:"column:machine_code;not null;index"`
	StartTime       time.Time `gorm:"column:start_time;not null"`
	EndTime         time.Time `gorm:"column:end_time;not null"`
	MaintenanceType string    `gorm:"column:maintenance_type;not null;default:'routine'"`
	PlanStatus      string    `gorm:"column:plan_status;not null;default:'PLANNED'"`
}

func (MaintenancePlanModel) TableName() string {
	return "maintenance_plans"
}

// ShiftConfigModel represents the shift_configs table
type ShiftConfigModel struct {
	ID        int    `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string `gorm:"column:name;not null"`
	StartTime string `gorm:"column:start_time;not null"` // "HH:MM"
	EndTime   string `gorm:"column:end_time;not null"`   // "HH:MM", "24:00" allowed
	Sequence  int    `gorm:"column:sequence;not null;default:0"`
}

func (ShiftConfigModel) TableName() string {
	return "shift_configs"
}

// MachineRelationModel represents the machine_relations table
type MachineRelationModel struct {
	ID         int    `gorm:"column:id;primaryKey;autoIncrement"`
	FeederCode string `gorm:"column:feeder_code;not null;index"`
	MakerCode  string `gorm:"column:maker_code;not null"`
	Priority   int    `gorm:"column:priority;not null;default:0"`
}

func (MachineRelationModel) TableName() string {
	return "machine_relations"
}
