package merge_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planfab/aps-engine/internal/application/scheduling/merge"
	"github.com/planfab/aps-engine/internal/domain/plan"
	"github.com/planfab/aps-engine/internal/domain/shared"
)

func newPlan(nr string, start, end time.Time, article, maker, feeder string, qty int64) plan.PreprocessedPlan {
	return plan.PreprocessedPlan{
		WorkOrderNr:   nr,
		ArticleNr:     article,
		ProductCode:   article,
		QuantityTotal: qty,
		FinalQuantity: qty,
		MakerCode:     maker,
		FeederCode:    feeder,
		PlannedStart:  start,
		PlannedEnd:    end,
	}
}

func day(d, h int) time.Time {
	return time.Date(2026, 8, d, h, 0, 0, 0, time.Local)
}

func newMerger() *merge.Merger {
	clock := shared.NewMockClock(day(21, 12))
	return merge.NewMerger([]string{"利群（新版印尼）"}, clock)
}

func TestMerger_CompatiblePlansFuse(t *testing.T) {
	// Arrange - same month, article, maker, feeder
	m := newMerger()
	plans := []plan.PreprocessedPlan{
		newPlan("WO-1", day(1, 8), day(1, 16), "利群（硬）", "C11", "F01", 100),
		newPlan("WO-2", day(11, 8), day(11, 16), "利群（硬）", "C11", "F01", 150),
		newPlan("WO-3", day(21, 8), day(21, 16), "利群（硬）", "C11", "F01", 50),
	}

	// Act
	merged := m.Run(plans)

	// Assert
	require.Len(t, merged, 1)
	fused := merged[0]
	assert.True(t, fused.IsMerged)
	assert.Equal(t, 3, fused.MergedCount)
	assert.Equal(t, int64(300), fused.QuantityTotal, "quantities sum")
	assert.Equal(t, day(1, 8), fused.PlannedStart, "earliest start")
	assert.Equal(t, day(21, 16), fused.PlannedEnd, "latest end")
	assert.ElementsMatch(t, []string{"WO-1", "WO-2", "WO-3"}, fused.MergedFrom)
	assert.Equal(t, "M202608210001", fused.WorkOrderNr, "merged nr from clock date and sequence")
}

func TestMerger_DifferentArticleDoesNotMerge(t *testing.T) {
	m := newMerger()
	plans := []plan.PreprocessedPlan{
		newPlan("WO-1", day(1, 8), day(1, 16), "利群（硬）", "C11", "F01", 100),
		newPlan("WO-2", day(2, 8), day(2, 16), "利群（软）", "C11", "F01", 100),
	}

	merged := m.Run(plans)

	assert.Len(t, merged, 2)
	for _, mp := range merged {
		assert.False(t, mp.IsMerged)
		assert.Equal(t, 1, mp.MergedCount)
	}
}

func TestMerger_DifferentMachinesDoNotMerge(t *testing.T) {
	m := newMerger()
	plans := []plan.PreprocessedPlan{
		newPlan("WO-1", day(1, 8), day(1, 16), "利群（硬）", "C11", "F01", 100),
		newPlan("WO-2", day(2, 8), day(2, 16), "利群（硬）", "C12", "F01", 100),
		newPlan("WO-3", day(3, 8), day(3, 16), "利群（硬）", "C11", "F02", 100),
	}

	merged := m.Run(plans)

	assert.Len(t, merged, 3)
}

func TestMerger_MonthBoundaryDoesNotMerge(t *testing.T) {
	m := newMerger()
	plans := []plan.PreprocessedPlan{
		newPlan("WO-1", day(31, 8), day(31, 16), "利群（硬）", "C11", "F01", 100),
		{
			WorkOrderNr: "WO-2", ArticleNr: "利群（硬）", MakerCode: "C11", FeederCode: "F01",
			QuantityTotal: 100, FinalQuantity: 100,
			PlannedStart: time.Date(2026, 9, 1, 8, 0, 0, 0, time.Local),
			PlannedEnd:   time.Date(2026, 9, 1, 16, 0, 0, 0, time.Local),
		},
	}

	merged := m.Run(plans)

	assert.Len(t, merged, 2, "plans in different months stay separate")
}

func TestMerger_SpecialBrandNeverMerges(t *testing.T) {
	m := newMerger()
	plans := []plan.PreprocessedPlan{
		newPlan("WO-1", day(1, 8), day(1, 16), "利群（新版印尼）", "C11", "F01", 100),
		newPlan("WO-2", day(2, 8), day(2, 16), "利群（新版印尼）", "C11", "F01", 100),
	}

	merged := m.Run(plans)

	assert.Len(t, merged, 2)
	assert.Equal(t, "WO-1", merged[0].WorkOrderNr, "singleton keeps its own work order nr")
}

func TestMerger_PassthroughSingleton(t *testing.T) {
	m := newMerger()
	plans := []plan.PreprocessedPlan{
		newPlan("WO-1", day(1, 8), day(1, 16), "利群（硬）", "C11", "F01", 100),
	}

	merged := m.Run(plans)

	require.Len(t, merged, 1)
	assert.Equal(t, "WO-1", merged[0].WorkOrderNr)
	assert.False(t, merged[0].IsMerged)
}

func TestMerger_EmptyInput(t *testing.T) {
	assert.Empty(t, newMerger().Run(nil))
}
