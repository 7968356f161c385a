package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planfab/aps-engine/internal/adapters/persistence"
	"github.com/planfab/aps-engine/internal/domain/order"
	"github.com/planfab/aps-engine/internal/domain/shared"
	"github.com/planfab/aps-engine/test/helpers"
)

func day(d, h int) time.Time {
	return time.Date(2026, 8, d, h, 0, 0, 0, time.UTC)
}

func sampleOrders() []order.MesOrder {
	return []order.MesOrder{
		{
			PlanID:            "HWS000000001",
			ProductionLine:    "F01",
			MaterialCode:      "利群（硬）",
			Quantity:          300,
			PlanStartTime:     "2026/08/21 08:00:00",
			PlanEndTime:       "2026/08/21 16:00:00",
			PlanDate:          "2026/08/21",
			Unit:              "公斤",
			Kind:              order.MesKindFeeder,
			SourceWorkOrderNr: "M001",
			PlannedStart:      day(21, 8),
			PlannedEnd:        day(21, 16),
		},
		{
			PlanID:            "HJB000000001",
			ProductionLine:    "C11",
			MaterialCode:      "利群（硬）",
			Quantity:          300,
			PlanStartTime:     "2026/08/21 08:00:00",
			PlanEndTime:       "2026/08/21 16:00:00",
			PlanDate:          "2026/08/21",
			Unit:              "箱",
			InputBatch:        &order.InputBatch{InputPlanID: "HWS000000001"},
			Kind:              order.MesKindPacker,
			SourceWorkOrderNr: "M001",
			PlannedStart:      day(21, 8),
			PlannedEnd:        day(21, 16),
		},
	}
}

func TestScheduleRunRepository_PersistAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormScheduleRunRepository(db, shared.NewMockClock(day(21, 12)))
	summaries := []order.ScheduleSummary{{
		WorkOrderNr:    "M001",
		ArticleNr:      "利群（硬）",
		QuantityTotal:  300,
		FinalQuantity:  300,
		MakerCode:      "C11",
		FeederCode:     "F01",
		PlannedStart:   day(21, 8),
		PlannedEnd:     day(21, 16),
		TaskID:         "task-1",
		ScheduleStatus: order.ScheduleStatusCompleted,
	}}

	// Act
	err := repo.PersistRun(context.Background(), "task-1", sampleOrders(), summaries)

	// Assert
	require.NoError(t, err)

	orders, err := repo.FindOrdersByTask(context.Background(), "task-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "HJB000000001", orders[0].PlanID, "sorted by plan id")
	require.NotNil(t, orders[0].InputBatch)
	assert.Equal(t, "HWS000000001", orders[0].InputBatch.InputPlanID)
	assert.Nil(t, orders[1].InputBatch, "HWS order has no input batch")
	assert.Equal(t, order.MesKindFeeder, orders[1].Kind)

	found, err := repo.FindSummariesByTask(context.Background(), "task-1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "C11", found[0].MakerCode)
	assert.Equal(t, order.ScheduleStatusCompleted, found[0].ScheduleStatus)
}

func TestScheduleRunRepository_DuplicatePlanIDRollsBack(t *testing.T) {
	// Arrange - second batch reuses an existing plan id
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormScheduleRunRepository(db, shared.NewMockClock(day(21, 12)))
	require.NoError(t, repo.PersistRun(context.Background(), "task-1", sampleOrders(), nil))

	dupe := sampleOrders()[:1]
	fresh := order.MesOrder{PlanID: "HWS000000099", ProductionLine: "F02", Kind: order.MesKindFeeder}

	// Act
	err := repo.PersistRun(context.Background(), "task-2", []order.MesOrder{fresh, dupe[0]}, nil)

	// Assert - nothing of task-2 is visible
	require.Error(t, err)
	orders, findErr := repo.FindOrdersByTask(context.Background(), "task-2")
	require.NoError(t, findErr)
	assert.Empty(t, orders, "failed run leaves no partial writes")
}

func TestScheduleRunRepository_TasksAreIsolated(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormScheduleRunRepository(db, shared.NewMockClock(day(21, 12)))

	require.NoError(t, repo.PersistRun(context.Background(), "task-1", sampleOrders(), nil))
	other := order.MesOrder{PlanID: "HWS000000050", ProductionLine: "F09", Kind: order.MesKindFeeder}
	require.NoError(t, repo.PersistRun(context.Background(), "task-2", []order.MesOrder{other}, nil))

	orders, err := repo.FindOrdersByTask(context.Background(), "task-2")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "HWS000000050", orders[0].PlanID)
}
