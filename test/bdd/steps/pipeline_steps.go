package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/planfab/aps-engine/internal/application/scheduling"
	"github.com/planfab/aps-engine/internal/domain/order"
	"github.com/planfab/aps-engine/internal/domain/plan"
	"github.com/planfab/aps-engine/internal/domain/refdata"
	"github.com/planfab/aps-engine/internal/domain/shared"
	"github.com/planfab/aps-engine/test/helpers"
)

// pipelineContext drives one full scheduling run per scenario: plan rows
// and reference data accumulate through Given steps, the When step runs
// the orchestrator, and Then steps assert on the generated MES orders.
type pipelineContext struct {
	rows         []plan.PlanRow
	speeds       []refdata.MachineSpeed
	maintenances []refdata.MaintenancePlan
	sequence     refdata.SequencePort
	result       *scheduling.PipelineResult
}

func (ctx *pipelineContext) reset() {
	ctx.rows = nil
	ctx.speeds = nil
	ctx.maintenances = nil
	ctx.sequence = refdata.NewInMemorySequence()
	ctx.result = nil
}

func parsePlantTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse time %q: %w", s, err)
	}
	return t, nil
}

// Given steps

func (ctx *pipelineContext) theDecadePlanContainsTheRows(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("expected a header row and at least one data row")
	}
	columns := make(map[string]int, len(table.Rows[0].Cells))
	for i, cell := range table.Rows[0].Cells {
		columns[cell.Value] = i
	}

	for _, row := range table.Rows[1:] {
		cell := func(name string) string { return row.Cells[columns[name]].Value }

		start, err := parsePlantTime(cell("start"))
		if err != nil {
			return err
		}
		end, err := parsePlantTime(cell("end"))
		if err != nil {
			return err
		}
		var quantity int64
		if _, err := fmt.Sscanf(cell("quantity"), "%d", &quantity); err != nil {
			return fmt.Errorf("failed to parse quantity %q: %w", cell("quantity"), err)
		}

		ctx.rows = append(ctx.rows, helpers.NewPlanRow(
			helpers.WithWorkOrderNr(cell("work_order")),
			helpers.WithArticle(cell("article")),
			helpers.WithMakers(cell("makers")),
			helpers.WithFeeder(cell("feeder")),
			helpers.WithQuantities(quantity, quantity),
			helpers.WithWindow(start, end),
		))
	}
	return nil
}

func (ctx *pipelineContext) makerRunsArticleAtSpeed(maker, article string, speed int) error {
	ctx.speeds = append(ctx.speeds, refdata.MachineSpeed{
		MachineCode:    maker,
		ArticleNr:      article,
		Speed:          decimal.NewFromInt(int64(speed)),
		EfficiencyRate: decimal.NewFromInt(1),
	})
	return nil
}

func (ctx *pipelineContext) makerHasPlannedMaintenance(maker, maintenanceType, from, to string) error {
	start, err := parsePlantTime(from)
	if err != nil {
		return err
	}
	end, err := parsePlantTime(to)
	if err != nil {
		return err
	}
	ctx.maintenances = append(ctx.maintenances, refdata.MaintenancePlan{
		MachineCode:     maker,
		StartTime:       start,
		EndTime:         end,
		MaintenanceType: refdata.MaintenanceType(maintenanceType),
		PlanStatus:      refdata.MaintenanceStatusPlanned,
	})
	return nil
}

func (ctx *pipelineContext) theSequenceServiceIsUnavailable() error {
	ctx.sequence = helpers.FailingSequence{}
	return nil
}

// When step

func (ctx *pipelineContext) theSchedulingPipelineRuns() error {
	refData := helpers.NewStaticReferenceData(ctx.speeds, ctx.maintenances, nil, nil)
	clock := shared.NewMockClock(time.Date(2026, 8, 21, 12, 0, 0, 0, time.Local))
	orchestrator := scheduling.NewOrchestrator(scheduling.DefaultConfig(), refData, ctx.sequence, nil, clock)

	result, err := orchestrator.Run(context.Background(), ctx.rows, "bdd-task")
	if err != nil {
		return err
	}
	ctx.result = result
	return nil
}

// Then steps

func (ctx *pipelineContext) theRunSucceeds() error {
	if ctx.result == nil {
		return fmt.Errorf("pipeline has not run")
	}
	if !ctx.result.Success {
		return fmt.Errorf("run failed: %s", ctx.result.Error)
	}
	return nil
}

func (ctx *pipelineContext) ordersCarryDistinctSourceWorkOrders(expected int) error {
	sources := make(map[string]struct{})
	for _, mo := range ctx.result.MesOrders {
		sources[mo.SourceWorkOrderNr] = struct{}{}
	}
	if len(sources) != expected {
		return fmt.Errorf("expected %d distinct source work orders, got %d", expected, len(sources))
	}
	return nil
}

func (ctx *pipelineContext) packerQuantitiesTotal(expected int64) error {
	var sum int64
	for _, mo := range ctx.result.MesOrders {
		if mo.IsPackerOrder() {
			sum += mo.Quantity
		}
	}
	if sum != expected {
		return fmt.Errorf("expected packer total %d, got %d", expected, sum)
	}
	return nil
}

func (ctx *pipelineContext) feederAndPackerOrdersGenerated(feeders, packers int) error {
	var gotFeeders, gotPackers int
	for _, mo := range ctx.result.MesOrders {
		if mo.IsFeederOrder() {
			gotFeeders++
		} else {
			gotPackers++
		}
	}
	if gotFeeders != feeders || gotPackers != packers {
		return fmt.Errorf("expected %d feeder / %d packer orders, got %d / %d",
			feeders, packers, gotFeeders, gotPackers)
	}
	return nil
}

func (ctx *pipelineContext) makerReceivesQuantity(maker string, expected int64) error {
	for _, mo := range ctx.result.MesOrders {
		if mo.IsPackerOrder() && mo.ProductionLine == maker {
			if mo.Quantity != expected {
				return fmt.Errorf("maker %s: expected quantity %d, got %d", maker, expected, mo.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("no packer order for maker %s", maker)
}

func (ctx *pipelineContext) feederOrdersDoNotOverlap() error {
	var feeders []order.MesOrder
	for _, mo := range ctx.result.MesOrders {
		if mo.IsFeederOrder() {
			feeders = append(feeders, mo)
		}
	}
	for i := range feeders {
		for j := i + 1; j < len(feeders); j++ {
			a, b := feeders[i], feeders[j]
			if a.ProductionLine != b.ProductionLine {
				continue
			}
			if a.PlannedStart.Before(b.PlannedEnd) && b.PlannedStart.Before(a.PlannedEnd) {
				return fmt.Errorf("feeder orders %s and %s overlap", a.PlanID, b.PlanID)
			}
		}
	}
	return nil
}

func (ctx *pipelineContext) everyPackerOrderStartsAt(at string) error {
	expected, err := parsePlantTime(at)
	if err != nil {
		return err
	}
	for _, mo := range ctx.result.MesOrders {
		if mo.IsPackerOrder() && !mo.PlannedStart.Equal(expected) {
			return fmt.Errorf("packer %s starts at %s, expected %s", mo.PlanID, mo.PlannedStart, expected)
		}
	}
	return nil
}

func (ctx *pipelineContext) everyPackerOrderEndsAt(at string) error {
	expected, err := parsePlantTime(at)
	if err != nil {
		return err
	}
	for _, mo := range ctx.result.MesOrders {
		if mo.IsPackerOrder() && !mo.PlannedEnd.Equal(expected) {
			return fmt.Errorf("packer %s ends at %s, expected %s", mo.PlanID, mo.PlannedEnd, expected)
		}
	}
	return nil
}

func (ctx *pipelineContext) everyPackerOrderReferencesAFeederOrder() error {
	feederIDs := make(map[string]struct{})
	for _, mo := range ctx.result.MesOrders {
		if mo.IsFeederOrder() {
			feederIDs[mo.PlanID] = struct{}{}
		}
	}
	for _, mo := range ctx.result.MesOrders {
		if !mo.IsPackerOrder() {
			continue
		}
		if mo.InputBatch == nil {
			return fmt.Errorf("packer %s has no input batch", mo.PlanID)
		}
		if _, ok := feederIDs[mo.InputBatch.InputPlanID]; !ok {
			return fmt.Errorf("packer %s references unknown feeder plan %s", mo.PlanID, mo.InputBatch.InputPlanID)
		}
	}
	return nil
}

func (ctx *pipelineContext) everyGeneratedOrderIsMarkedAsFallback() error {
	if len(ctx.result.MesOrders) == 0 {
		return fmt.Errorf("no orders were generated")
	}
	for _, mo := range ctx.result.MesOrders {
		if mo.OrderType != order.OrderTypeFallback {
			return fmt.Errorf("order %s is not flagged as fallback", mo.PlanID)
		}
	}
	return nil
}

// InitializeSchedulingPipelineScenario registers the pipeline step
// definitions
func InitializeSchedulingPipelineScenario(sc *godog.ScenarioContext) {
	ctx := &pipelineContext{}

	sc.Before(func(c context.Context, sn *godog.Scenario) (context.Context, error) {
		ctx.reset()
		return c, nil
	})

	sc.Step(`^the decade plan contains the rows:$`, ctx.theDecadePlanContainsTheRows)
	sc.Step(`^maker "([^"]*)" runs article "([^"]*)" at (\d+) pieces per hour$`, ctx.makerRunsArticleAtSpeed)
	sc.Step(`^maker "([^"]*)" has planned maintenance of type "([^"]*)" from "([^"]*)" to "([^"]*)"$`, ctx.makerHasPlannedMaintenance)
	sc.Step(`^the sequence service is unavailable$`, ctx.theSequenceServiceIsUnavailable)

	sc.Step(`^the scheduling pipeline runs$`, ctx.theSchedulingPipelineRuns)

	sc.Step(`^the run succeeds$`, ctx.theRunSucceeds)
	sc.Step(`^the orders carry (\d+) distinct source work orders?$`, ctx.ordersCarryDistinctSourceWorkOrders)
	sc.Step(`^the packer quantities total (\d+)$`, ctx.packerQuantitiesTotal)
	sc.Step(`^(\d+) feeder orders? and (\d+) packer orders? are generated$`, ctx.feederAndPackerOrdersGenerated)
	sc.Step(`^maker "([^"]*)" receives quantity (\d+)$`, ctx.makerReceivesQuantity)
	sc.Step(`^the feeder orders do not overlap in time$`, ctx.feederOrdersDoNotOverlap)
	sc.Step(`^every packer order starts at "([^"]*)"$`, ctx.everyPackerOrderStartsAt)
	sc.Step(`^every packer order ends at "([^"]*)"$`, ctx.everyPackerOrderEndsAt)
	sc.Step(`^every packer order references a feeder order as its input batch$`, ctx.everyPackerOrderReferencesAFeederOrder)
	sc.Step(`^every generated order is marked as fallback$`, ctx.everyGeneratedOrderIsMarkedAsFallback)
}
