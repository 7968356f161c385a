package persistence

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/planfab/aps-engine/internal/domain/refdata"
)

// GormReferenceDataRepository loads the reference tables into a per-run
// snapshot using GORM
type GormReferenceDataRepository struct {
	db *gorm.DB
}

// NewGormReferenceDataRepository creates a new GORM reference data repository
func NewGormReferenceDataRepository(db *gorm.DB) *GormReferenceDataRepository {
	return &GormReferenceDataRepository{db: db}
}

// LoadSnapshot reads all four reference tables. Rows with unparsable
// decimal columns are skipped rather than failing the run.
func (r *GormReferenceDataRepository) LoadSnapshot(ctx context.Context) (*refdata.Snapshot, error) {
	speeds, err := r.loadSpeeds(ctx)
	if err != nil {
		return nil, err
	}

	maintenances, err := r.loadMaintenances(ctx)
	if err != nil {
		return nil, err
	}

	shifts, err := r.loadShifts(ctx)
	if err != nil {
		return nil, err
	}

	relations, err := r.loadRelations(ctx)
	if err != nil {
		return nil, err
	}

	return refdata.NewSnapshot(speeds, maintenances, shifts, relations), nil
}

func (r *GormReferenceDataRepository) loadSpeeds(ctx context.Context) ([]refdata.MachineSpeed, error) {
	var models []MachineSpeedModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load machine speeds: %w", err)
	}

	speeds := make([]refdata.MachineSpeed, 0, len(models))
	for _, model := range models {
		speed, err := decimal.NewFromString(model.Speed)
		if err != nil {
			continue // Skip rows with bad decimal data
		}
		efficiency, err := decimal.NewFromString(model.EfficiencyRate)
		if err != nil {
			continue
		}
		speeds = append(speeds, refdata.MachineSpeed{
			MachineCode:       model.MachineCode,
			ArticleNr:         model.ArticleNr,
			Speed:             speed,
			EfficiencyRate:    efficiency,
			SetupMinutes:      model.SetupMinutes,
			ChangeoverMinutes: model.ChangeoverMinutes,
			EffectiveFrom:     model.EffectiveFrom,
			EffectiveTo:       model.EffectiveTo,
		})
	}
	return speeds, nil
}

func (r *GormReferenceDataRepository) loadMaintenances(ctx context.Context) ([]refdata.MaintenancePlan, error) {
	var models []MaintenancePlanModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load maintenance plans: %w", err)
	}

	plans := make([]refdata.MaintenancePlan, 0, len(models))
	for _, model := range models {
		plans = append(plans, refdata.MaintenancePlan{
			MachineCode:     model.MachineCode,
			StartTime:       model.StartTime,
			EndTime:         model.EndTime,
			MaintenanceType: refdata.MaintenanceType(model.MaintenanceType),
			PlanStatus:      refdata.MaintenancePlanStatus(model.PlanStatus),
		})
	}
	return plans, nil
}

func (r *GormReferenceDataRepository) loadShifts(ctx context.Context) ([]refdata.Shift, error) {
	var models []ShiftConfigModel
	if err := r.db.WithContext(ctx).Order("sequence").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load shift configs: %w", err)
	}

	shifts := make([]refdata.Shift, 0, len(models))
	for _, model := range models {
		shifts = append(shifts, refdata.Shift{
			Name:      model.Name,
			StartTime: model.StartTime,
			EndTime:   model.EndTime,
		})
	}
	return shifts, nil
}

func (r *GormReferenceDataRepository) loadRelations(ctx context.Context) ([]refdata.MachineRelation, error) {
	var models []MachineRelationModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load machine relations: %w", err)
	}

	relations := make([]refdata.MachineRelation, 0, len(models))
	for _, model := range models {
		relations = append(relations, refdata.MachineRelation{
			FeederCode: model.FeederCode,
			MakerCode:  model.MakerCode,
			Priority:   model.Priority,
		})
	}
	return relations, nil
}
