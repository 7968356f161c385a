package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/planfab/aps-engine/internal/domain/order"
	"github.com/planfab/aps-engine/internal/domain/shared"
)

// GormScheduleRunRepository persists scheduling runs using GORM
type GormScheduleRunRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormScheduleRunRepository creates a new GORM schedule run repository
func NewGormScheduleRunRepository(db *gorm.DB, clock shared.Clock) *GormScheduleRunRepository {
	return &GormScheduleRunRepository{db: db, clock: clock}
}

// PersistRun writes the run's task row, MES orders and summaries in one
// transaction. A failed write rolls back the whole run so no partial
// schedule is ever visible to the MES exporter.
func (r *GormScheduleRunRepository) PersistRun(ctx context.Context, taskID string, orders []order.MesOrder, summaries []order.ScheduleSummary) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task := ScheduleTaskModel{
			TaskID:       taskID,
			Status:       order.ScheduleStatusCompleted,
			OrderCount:   len(orders),
			SummaryCount: len(summaries),
			CreatedAt:    r.clock.Now(),
		}
		if err := tx.Save(&task).Error; err != nil {
			return fmt.Errorf("failed to save schedule task: %w", err)
		}

		for _, o := range orders {
			model := r.orderToModel(taskID, o)
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("failed to save mes order %s: %w", o.PlanID, err)
			}
		}

		for _, s := range summaries {
			model := r.summaryToModel(taskID, s)
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("failed to save schedule summary %s/%s: %w", s.MakerCode, s.FeederCode, err)
			}
		}

		return nil
	})
}

// FindOrdersByTask retrieves the MES orders written by one run, ordered
// by plan id
func (r *GormScheduleRunRepository) FindOrdersByTask(ctx context.Context, taskID string) ([]order.MesOrder, error) {
	var models []MesOrderModel
	result := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("plan_id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find mes orders: %w", result.Error)
	}

	orders := make([]order.MesOrder, 0, len(models))
	for _, model := range models {
		orders = append(orders, r.modelToOrder(&model))
	}
	return orders, nil
}

// FindSummariesByTask retrieves the schedule summaries written by one run
func (r *GormScheduleRunRepository) FindSummariesByTask(ctx context.Context, taskID string) ([]order.ScheduleSummary, error) {
	var models []ScheduleSummaryModel
	result := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("work_order_nr, maker_code, feeder_code").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find schedule summaries: %w", result.Error)
	}

	summaries := make([]order.ScheduleSummary, 0, len(models))
	for _, model := range models {
		summaries = append(summaries, order.ScheduleSummary{
			WorkOrderNr:    model.WorkOrderNr,
			ArticleNr:      model.ArticleNr,
			FinalQuantity:  model.FinalQuantity,
			QuantityTotal:  model.QuantityTotal,
			MakerCode:      model.MakerCode,
			FeederCode:     model.FeederCode,
			PlannedStart:   model.PlannedStart,
			PlannedEnd:     model.PlannedEnd,
			TaskID:         model.TaskID,
			ScheduleStatus: model.ScheduleStatus,
		})
	}
	return summaries, nil
}

// orderToModel converts a domain MES order to its database model
func (r *GormScheduleRunRepository) orderToModel(taskID string, o order.MesOrder) MesOrderModel {
	model := MesOrderModel{
		PlanID:            o.PlanID,
		TaskID:            taskID,
		Kind:              string(o.Kind),
		ProductionLine:    o.ProductionLine,
		MaterialCode:      o.MaterialCode,
		Quantity:          o.Quantity,
		PlanStartTime:     o.PlanStartTime,
		PlanEndTime:       o.PlanEndTime,
		PlanDate:          o.PlanDate,
		Unit:              o.Unit,
		OrderType:         o.OrderType,
		SourceWorkOrderNr: o.SourceWorkOrderNr,
		PlannedStart:      o.PlannedStart,
		PlannedEnd:        o.PlannedEnd,
	}
	if o.IsBackup {
		model.IsBackup = 1
	}
	if o.InputBatch != nil {
		model.InputPlanID = o.InputBatch.InputPlanID
	}
	return model
}

// modelToOrder converts a database model back to the domain shape
func (r *GormScheduleRunRepository) modelToOrder(model *MesOrderModel) order.MesOrder {
	o := order.MesOrder{
		PlanID:            model.PlanID,
		ProductionLine:    model.ProductionLine,
		MaterialCode:      model.MaterialCode,
		Quantity:          model.Quantity,
		PlanStartTime:     model.PlanStartTime,
		PlanEndTime:       model.PlanEndTime,
		PlanDate:          model.PlanDate,
		Unit:              model.Unit,
		IsBackup:          model.IsBackup != 0,
		OrderType:         model.OrderType,
		Kind:              order.MesKind(model.Kind),
		SourceWorkOrderNr: model.SourceWorkOrderNr,
		PlannedStart:      model.PlannedStart,
		PlannedEnd:        model.PlannedEnd,
	}
	if model.InputPlanID != "" {
		o.InputBatch = &order.InputBatch{InputPlanID: model.InputPlanID}
	}
	return o
}

// summaryToModel converts a domain summary to its database model
func (r *GormScheduleRunRepository) summaryToModel(taskID string, s order.ScheduleSummary) ScheduleSummaryModel {
	return ScheduleSummaryModel{
		TaskID:         taskID,
		WorkOrderNr:    s.WorkOrderNr,
		ArticleNr:      s.ArticleNr,
		FinalQuantity:  s.FinalQuantity,
		QuantityTotal:  s.QuantityTotal,
		MakerCode:      s.MakerCode,
		FeederCode:     s.FeederCode,
		PlannedStart:   s.PlannedStart,
		PlannedEnd:     s.PlannedEnd,
		ScheduleStatus: s.ScheduleStatus,
	}
}
