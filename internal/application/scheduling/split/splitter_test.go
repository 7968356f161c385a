package split_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planfab/aps-engine/internal/application/scheduling/split"
	"github.com/planfab/aps-engine/internal/domain/plan"
	"github.com/planfab/aps-engine/internal/domain/refdata"
	"github.com/planfab/aps-engine/internal/domain/shared"
)

func day(d, h int) time.Time {
	return time.Date(2026, 8, d, h, 0, 0, 0, time.Local)
}

func mergedPlan(nr, makers, feeder string, qty int64, start, end time.Time) plan.MergedPlan {
	return plan.MergedPlan{
		WorkOrderNr:   nr,
		ArticleNr:     "利群（硬）",
		ProductCode:   "利群（硬）",
		QuantityTotal: qty,
		FinalQuantity: qty,
		MakerCode:     makers,
		FeederCode:    feeder,
		PlannedStart:  start,
		PlannedEnd:    end,
	}
}

func newSplitter() *split.Splitter {
	return split.NewSplitter(shared.NewMockClock(day(21, 12)))
}

func TestSplitter_MultiMakerPlanSplits(t *testing.T) {
	// Arrange - 200 boxes across three makers
	s := newSplitter()
	plans := []plan.MergedPlan{
		mergedPlan("M001", "C11,C12,C13", "F01", 200, day(21, 8), day(21, 16)),
	}

	// Act
	result := s.Run(plans, nil)

	// Assert
	require.Len(t, result.Packers, 3)
	require.Len(t, result.Feeders, 1)

	var sum int64
	for _, p := range result.Packers {
		sum += p.FinalQuantity
		assert.Equal(t, "M001", p.SourceWorkOrderNr)
		assert.Equal(t, 3, p.TotalMakers)
		assert.Equal(t, result.Feeders[0].WorkOrderNr, p.InputPlanID, "packer links to its feeder order")
	}
	assert.Equal(t, int64(200), sum, "split shares sum back to the plan quantity")
	assert.Equal(t, int64(68), result.Packers[0].FinalQuantity, "remainder goes to the first maker")
	assert.Equal(t, int64(66), result.Packers[1].FinalQuantity)
	assert.Equal(t, 1, result.Packers[0].SplitSequence)
}

func TestSplitter_FeederOrderAggregatesGroup(t *testing.T) {
	s := newSplitter()
	plans := []plan.MergedPlan{
		mergedPlan("M001", "C11", "F01", 100, day(21, 8), day(21, 12)),
		mergedPlan("M002", "C12", "F01", 150, day(21, 13), day(21, 18)),
	}

	result := s.Run(plans, nil)

	require.Len(t, result.Feeders, 1)
	feeder := result.Feeders[0]
	assert.Equal(t, int64(250), feeder.QuantityTotal)
	assert.Equal(t, day(21, 8), feeder.PlannedStart)
	assert.Equal(t, day(21, 18), feeder.PlannedEnd)
	assert.Equal(t, []string{"C11", "C12"}, feeder.AssociatedMakers)
	assert.True(t, feeder.IsFeeder())
	assert.True(t, feeder.TobaccoConsumptionRate.IsPositive())
}

func TestSplitter_FeederTimeConflictShiftsLater(t *testing.T) {
	// Arrange - two plans on the same feeder with overlapping windows
	s := newSplitter()
	plans := []plan.MergedPlan{
		mergedPlan("M001", "C11", "F01", 100, day(21, 8), day(21, 12)),
		mergedPlan("M002", "C12", "F01", 100, day(21, 10), day(21, 14)),
	}

	// Act
	result := s.Run(plans, nil)

	// Assert - the later plan is pushed past the earlier one
	require.Len(t, result.Packers, 2)
	first, second := result.Packers[0], result.Packers[1]
	if first.PlannedStart.After(second.PlannedStart) {
		first, second = second, first
	}
	assert.Equal(t, day(21, 8), first.PlannedStart)
	assert.False(t, first.ScheduleAdjusted)
	assert.Equal(t, day(21, 12), second.PlannedStart, "shifted to the earlier plan's end")
	assert.Equal(t, day(21, 16), second.PlannedEnd, "duration preserved")
	assert.True(t, second.ScheduleAdjusted)
	assert.NotEmpty(t, second.AdjustReason)
}

func TestSplitter_TouchingWindowsDoNotConflict(t *testing.T) {
	s := newSplitter()
	plans := []plan.MergedPlan{
		mergedPlan("M001", "C11", "F01", 100, day(21, 8), day(21, 12)),
		mergedPlan("M002", "C12", "F01", 100, day(21, 12), day(21, 16)),
	}

	result := s.Run(plans, nil)

	for _, p := range result.Packers {
		assert.False(t, p.ScheduleAdjusted, "back-to-back windows need no shift")
	}
}

func TestSplitter_MissingFeederCodeSkipsPlan(t *testing.T) {
	s := newSplitter()
	plans := []plan.MergedPlan{
		mergedPlan("M001", "C11", "", 100, day(21, 8), day(21, 12)),
	}

	result := s.Run(plans, nil)

	assert.Empty(t, result.Packers)
	assert.Empty(t, result.Feeders)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "M001")
}

func TestSplitter_UnrelatedMakerWarns(t *testing.T) {
	// Arrange - relation table knows F01 feeds only C11
	s := newSplitter()
	snapshot := refdata.NewSnapshot(nil, nil, nil, []refdata.MachineRelation{
		{FeederCode: "F01", MakerCode: "C11", Priority: 1},
	})
	plans := []plan.MergedPlan{
		mergedPlan("M001", "C11,C99", "F01", 200, day(21, 8), day(21, 16)),
	}

	// Act
	result := s.Run(plans, snapshot)

	// Assert - the order is still emitted, with a warning attached
	require.Len(t, result.Packers, 2)
	for _, p := range result.Packers {
		if p.MakerCode == "C99" {
			assert.NotEmpty(t, p.Warnings)
		} else {
			assert.Empty(t, p.Warnings)
		}
	}
}

func TestSplitter_MixedProductsOnFeederWarns(t *testing.T) {
	s := newSplitter()
	plans := []plan.MergedPlan{
		mergedPlan("M001", "C11", "F01", 100, day(21, 8), day(21, 12)),
		func() plan.MergedPlan {
			p := mergedPlan("M002", "C12", "F01", 100, day(21, 13), day(21, 16))
			p.ArticleNr = "利群（软）"
			return p
		}(),
	}

	result := s.Run(plans, nil)

	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "F01")
}
