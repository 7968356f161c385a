package refdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// WildcardMachine matches any machine in the speed table
const WildcardMachine = "*"

// WildcardArticle matches any article in the speed table
const WildcardArticle = "*"

// MachineSpeed is one row of the machine speed table, keyed by
// (machine_code, article_nr). Wildcards provide machine-wide and
// product-wide defaults.
type MachineSpeed struct {
	MachineCode       string
	ArticleNr         string
	Speed             decimal.Decimal // pieces per hour
	EfficiencyRate    decimal.Decimal // ratio 0-1, or percentage 0-100
	SetupMinutes      int
	ChangeoverMinutes int
	EffectiveFrom     *time.Time
	EffectiveTo       *time.Time
}

// NormalizedEfficiency coerces the efficiency rate into [0,1]: values
// above 1 are treated as percentages and divided by 100
func (s MachineSpeed) NormalizedEfficiency() decimal.Decimal {
	if s.EfficiencyRate.GreaterThan(decimal.NewFromInt(1)) {
		return s.EfficiencyRate.Div(decimal.NewFromInt(100))
	}
	return s.EfficiencyRate
}

// EffectiveAt reports whether the row is effective at the given time
func (s MachineSpeed) EffectiveAt(t time.Time) bool {
	if s.EffectiveFrom != nil && t.Before(*s.EffectiveFrom) {
		return false
	}
	if s.EffectiveTo != nil && t.After(*s.EffectiveTo) {
		return false
	}
	return true
}

// MaintenanceType classifies a maintenance window's severity
type MaintenanceType string

const (
	MaintenanceRoutine  MaintenanceType = "routine"
	MaintenanceMajor    MaintenanceType = "major"
	MaintenanceOverhaul MaintenanceType = "overhaul"
)

// IsBlocking reports whether work must be moved entirely past the window
// (major and overhaul windows can never be worked around)
func (t MaintenanceType) IsBlocking() bool {
	return t == MaintenanceMajor || t == MaintenanceOverhaul
}

// MaintenancePlanStatus is the lifecycle status of a maintenance window
type MaintenancePlanStatus string

const (
	MaintenanceStatusPlanned    MaintenancePlanStatus = "PLANNED"
	MaintenanceStatusInProgress MaintenancePlanStatus = "IN_PROGRESS"
	MaintenanceStatusCompleted  MaintenancePlanStatus = "COMPLETED"
	MaintenanceStatusCancelled  MaintenancePlanStatus = "CANCELLED"
)

// Active reports whether the window constrains scheduling
func (s MaintenancePlanStatus) Active() bool {
	return s == MaintenanceStatusPlanned || s == MaintenanceStatusInProgress
}

// MaintenancePlan is one maintenance window on one machine
type MaintenancePlan struct {
	MachineCode     string
	StartTime       time.Time
	EndTime         time.Time
	MaintenanceType MaintenanceType
	PlanStatus      MaintenancePlanStatus
}

// Shift is a named daily shift on a 24h clock. EndTime may be "24:00"
// (meaning 00:00 of the next day) or earlier than StartTime for night
// shifts wrapping past midnight.
type Shift struct {
	Name      string
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM", "24:00" allowed
}

// MachineRelation maps a feeder machine to a maker it can supply.
// Smaller priority means preferred.
type MachineRelation struct {
	FeederCode string
	MakerCode  string
	Priority   int
}
